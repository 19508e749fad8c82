package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/example/wfviz/internal/render"
)

func newLegendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Show what the colours and formats mean",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := a.palette()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := render.RenderLegend(&buf, palette, a.cfg.Color); err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
}
