package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/export"
	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/treemap"
)

func newClassifyCmd(global *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "classify file...",
		Short: "Print the color category of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			colors := cfg.Colors()
			out := cmd.OutOrStdout()

			for _, path := range args {
				cat, err := classifyPath(path, global.sniff)
				if err != nil {
					return err
				}
				c := cat.Color(colors)
				swatch := lipgloss.NewStyle().Background(lipgloss.Color(export.Hex(c))).Render("  ")
				fmt.Fprintf(out, "%s %-10s %s %s\n", swatch, cat, export.Hex(c), path)
			}
			return nil
		},
	}
}

// classifyPath stats path and classifies it like a scanned node
func classifyPath(path string, sniff bool) (treemap.Category, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return treemap.CategoryGeneric, err
	}
	n := model.Node{Name: filepath.Base(path), Mode: info.Mode(), Size: info.Size()}
	if info.IsDir() {
		n.Kind = model.KindDir
	}
	if sniff && info.Mode().IsRegular() {
		if mt, err := mimetype.DetectFile(path); err == nil {
			n.MIME = mt.String()
		}
	}
	return treemap.ClassifyNode(&n), nil
}
