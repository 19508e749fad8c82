package cli

import (
	"bytes"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/sample"
	"github.com/example/wfviz/internal/service"
	"github.com/example/wfviz/internal/storage"
	"github.com/example/wfviz/pkg/id"
)

func newDemoCmd(a *app) *cobra.Command {
	var (
		dir  string
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write a sample workflow to every source",
		Long: `Build a sample "main" workflow with five models of five steps each and
random statuses, and store it as orchestrator.db, status.json and status.pkl
in --dir. The ids of the root and its direct children are printed so they
can be passed to --uuid.

EXAMPLES:
  wfviz demo --dir /tmp/demo
  cd /tmp/demo && wfviz tree --source json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			root := sample.Workflow(abs, rand.New(rand.NewSource(seed)))

			var buf bytes.Buffer
			for _, kind := range storage.Kinds {
				fname := filepath.Join(abs, kind.DefaultFile())
				if err := writeDemo(cmd, kind, fname, root); err != nil {
					return err
				}
				fmt.Fprintf(&buf, "Wrote %s\n", fname)
			}

			root.Walk(func(n *domain.Node, depth int) bool {
				fmt.Fprintf(&buf, "%s  %s\n", id.Hex(n.ID), n.Path)
				return depth == 0
			})
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the sources to")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for statuses (default time based)")
	return cmd
}

func writeDemo(cmd *cobra.Command, kind storage.Kind, fname string, root *domain.Node) error {
	b, err := service.CreateBackend(cmd.Context(), kind, fname)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Put(cmd.Context(), root); err != nil {
		return fmt.Errorf("failed to write %s: %w", fname, err)
	}
	log.GetLogger().Debugf("Wrote demo workflow to %s", fname)
	return nil
}
