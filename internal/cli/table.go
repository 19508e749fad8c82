package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/example/wfviz/internal/render"
)

func newTableCmd(a *app) *cobra.Command {
	var f locateFlags

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render a workflow as a table",
		Long: `Render a workflow and everything below it as a table with one row per
step, in tree order.

Available columns: name, kind, status, path, uuid, createdAt (ctime),
modifiedAt (mtime), schedulerRequest (scheduler).

EXAMPLES:
  wfviz table
  wfviz table --columns name,status,scheduler
  wfviz table --source json --uuid 0f8e5c1d2b3a4e6f9a8b7c6d5e4f3a2b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := a.palette()
			if err != nil {
				return err
			}
			r, err := render.NewTableRenderer(a.cfg.Columns, palette, a.cfg.Color)
			if err != nil {
				return err
			}
			node, err := a.resolve(cmd.Context(), &f)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := r.Render(&buf, node); err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringSlice("columns", nil, "comma separated columns to show")
	return cmd
}
