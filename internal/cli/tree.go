package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/example/wfviz/internal/render"
)

func newTreeCmd(a *app) *cobra.Command {
	var f locateFlags

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Render a workflow as a tree",
		Long: `Render a workflow and everything below it as an indented tree, coloured
by status. Parallel workflows are shown in italics.

Without --uuid or --path the whole stored tree is shown. With the json and
pkl sources only the root and its direct children can be selected.

EXAMPLES:
  wfviz tree
  wfviz tree --source pkl --fname run/status.pkl
  wfviz tree --remote localhost:50051 --path /scratch/run/main/model_a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := a.resolve(cmd.Context(), &f)
			if err != nil {
				return err
			}
			palette, err := a.palette()
			if err != nil {
				return err
			}

			// Render fully before writing so that errors leave no partial output.
			var buf bytes.Buffer
			if err := render.NewTreeRenderer(palette, a.cfg.Color).Render(&buf, node); err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
	f.register(cmd)
	return cmd
}
