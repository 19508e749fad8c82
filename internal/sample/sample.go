// Package sample builds a demonstration workflow tree.
package sample

import (
	"math/rand"
	"time"

	"github.com/example/wfviz/internal/domain"
)

var (
	models = []string{"model A", "model B", "model C", "model D", "model E"}
	steps  = []string{"step 1", "step 2", "step 3", "step 4", "step 5"}
)

// Workflow builds a "main" workflow under workdir with five model workflows
// of five tasks each. Statuses are drawn from r. The third model gets an
// extra unstarted task after paths are fixed, so its path is only correct
// once FixPaths runs again.
func Workflow(workdir string, r *rand.Rand) *domain.Node {
	root := domain.NewWorkflow("main", domain.StatusRunning)
	root.Path = domain.RootPath(workdir, root.Name)

	for i, model := range models {
		wf := domain.NewWorkflow(model, randomStatus(r))
		for _, step := range steps {
			wf.Add(domain.NewTask(step, randomStatus(r)))
		}
		wf.Parallel = i%2 == 1
		wf.Scheduler = &domain.SchedulerRequest{
			Kind:               "slurm",
			Partition:          "compute",
			NodeCount:          1 + r.Intn(4),
			ProcsPerNode:       32,
			WallclockRequested: time.Duration(1+r.Intn(12)) * time.Hour,
		}
		root.Add(wf)
	}
	domain.FixPaths(root)

	root.Children[2].Add(domain.NewTask("new step", domain.StatusUnstarted))
	domain.FixPaths(root)
	return root
}

func randomStatus(r *rand.Rand) domain.Status {
	return domain.Statuses[r.Intn(len(domain.Statuses))]
}
