package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/export"
)

const (
	formatPNG = "png"
	formatSVG = "svg"
)

type renderOpts struct {
	output string
	format string
	view   viewOpts
}

func newRenderCmd(global *globalOpts) *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Render a directory as a shaded treemap image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := imageFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format

			c, err := global.newController(cmd, args)
			if err != nil {
				return err
			}
			if err := opts.view.apply(c); err != nil {
				return err
			}
			return runRender(cmd, c, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "treemap.png", "output file, - for stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "image format: png or svg (default from the output extension)")
	opts.view.register(cmd)
	return cmd
}

// imageFormat picks the explicit format or derives it from the output name
func imageFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" {
			format = formatPNG
		}
	}
	switch format {
	case formatPNG, formatSVG:
		return format, nil
	}
	return "", fmt.Errorf("unknown image format %q (want %s or %s)", format, formatPNG, formatSVG)
}

func runRender(cmd *cobra.Command, c *core.Controller, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	var err error
	var width, height int
	suppressed := false
	c.Read(func(v *core.View) {
		if v.Treemap() == nil {
			suppressed = true
			width, height = v.Size()
			return
		}

		w, closeOut, oerr := openOutput(cmd, opts.output)
		if oerr != nil {
			err = oerr
			return
		}
		if opts.format == formatSVG {
			err = export.WriteSVG(w, v.Tree(), v.Treemap(), v.Config())
		} else {
			err = export.WritePNG(w, export.Render(v.Treemap(), v.Config(), v.SelectedTile()))
		}
		if cerr := closeOut(); err == nil {
			err = cerr
		}
	})
	if suppressed {
		return fmt.Errorf("view %dx%d is smaller than %dx%d, nothing to render",
			width, height, core.UpdateMinSize, core.UpdateMinSize)
	}
	if err != nil {
		return err
	}
	logger.Info("Rendered treemap", "output", opts.output, "format", opts.format)
	return nil
}
