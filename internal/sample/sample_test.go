package sample

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wfviz/internal/domain"
)

func TestWorkflowShape(t *testing.T) {
	root := Workflow("/tmp/run", rand.New(rand.NewSource(1)))

	assert.Equal(t, "main", root.Name)
	assert.Equal(t, "/tmp/run/main", root.Path)
	require.Len(t, root.Children, 5)
	assert.Len(t, root.Children[2].Children, 6)
	assert.Equal(t, 1+5+5*5+1, root.Count())

	extra := root.Children[2].Children[5]
	assert.Equal(t, "new step", extra.Name)
	assert.Equal(t, "/tmp/run/main/model_c/new_step", extra.Path)
	assert.Equal(t, domain.StatusUnstarted, extra.Status)

	for _, model := range root.Children {
		require.NotNil(t, model.Scheduler)
		assert.Equal(t, 32, model.Scheduler.ProcsPerNode)
	}
}

func TestWorkflowDeterministicForSeed(t *testing.T) {
	a := Workflow("/w", rand.New(rand.NewSource(42)))
	b := Workflow("/w", rand.New(rand.NewSource(42)))

	var sa, sb []domain.Status
	a.Walk(func(n *domain.Node, _ int) bool { sa = append(sa, n.Status); return true })
	b.Walk(func(n *domain.Node, _ int) bool { sb = append(sb, n.Status); return true })
	assert.Equal(t, sa, sb)
}
