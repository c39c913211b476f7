package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/model"
)

// viewOpts picks what part of the tree a command shows
type viewOpts struct {
	zoom string // path below the scanned directory to use as root
	sel  string // path to select
}

func (v *viewOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.zoom, "zoom", "", "show this directory instead of the scanned root")
	cmd.Flags().StringVar(&v.sel, "select", "", "select (highlight) this path")
}

// newController scans the directory argument and lays it out
func (o *globalOpts) newController(cmd *cobra.Command, args []string) (*core.Controller, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	tree, err := o.loadTree(cmd.Context(), dirArg(args))
	if err != nil {
		return nil, err
	}
	return core.NewController(tree, cfg, o.width, o.height), nil
}

// locate maps a filesystem path to its node
func locate(tree *model.Tree, path string) (model.NodeID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.NoNode, err
	}
	id := core.LocatePath(tree, abs)
	if id == model.NoNode {
		return model.NoNode, fmt.Errorf("%s is not in the scanned tree", path)
	}
	return id, nil
}

// apply zooms and selects as requested
func (v *viewOpts) apply(c *core.Controller) error {
	var err error
	c.Update(func(view *core.View) {
		if v.zoom != "" {
			var id model.NodeID
			if id, err = locate(view.Tree(), v.zoom); err != nil {
				return
			}
			view.Rebuild(id)
		}
		if v.sel != "" {
			var id model.NodeID
			if id, err = locate(view.Tree(), v.sel); err != nil {
				return
			}
			view.SelectNode(id)
		}
	})
	return err
}
