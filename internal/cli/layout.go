package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/export"
)

const (
	formatJSON   = "json"
	formatReport = "report"
)

type layoutOpts struct {
	output string
	format string
	top    int
	view   viewOpts
}

func newLayoutCmd(global *globalOpts) *cobra.Command {
	opts := layoutOpts{format: formatJSON, top: 20}

	cmd := &cobra.Command{
		Use:   "layout [dir]",
		Short: "Lay out a directory and print the tile tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatJSON && opts.format != formatReport {
				return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatJSON, formatReport)
			}
			c, err := global.newController(cmd, args)
			if err != nil {
				return err
			}
			if err := opts.view.apply(c); err != nil {
				return err
			}
			return runLayout(cmd, c, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json or report")
	cmd.Flags().IntVar(&opts.top, "top", opts.top, "number of tiles in the report")
	opts.view.register(cmd)
	return cmd
}

func runLayout(cmd *cobra.Command, c *core.Controller, opts *layoutOpts) error {
	w, closeOut, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}

	c.Read(func(v *core.View) {
		if opts.format == formatReport {
			err = export.WriteReport(w, v.Tree(), v.Treemap(), opts.top)
			return
		}
		err = export.WriteJSON(w, v.Tree(), v.Treemap(), v.Root(), v.Selected())
	})
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}
