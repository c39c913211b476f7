package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/export"
	"github.com/lumipallolabs/treemapview/internal/stats"
	"github.com/lumipallolabs/treemapview/internal/watcher"
)

func newWatchCmd(global *globalOpts) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Follow deletions below a directory and keep its treemap current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.newController(cmd, args)
			if err != nil {
				return err
			}
			st := global.openStats(loggerFromContext(cmd.Context()))
			defer st.Close()
			return runWatch(cmd, c, st, top)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of tiles in the report printed on exit")
	return cmd
}

func runWatch(cmd *cobra.Command, c *core.Controller, st *stats.Manager, top int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := loggerFromContext(ctx)

	root := trackFreed(c, st)
	c.Subscribe(func(e core.Event) {
		switch e := e.(type) {
		case core.DeletionDetectedEvent:
			logger.Info("Deleted", "path", e.Path, "size", export.FormatSize(e.Size), "freed", export.FormatSize(e.TotalFreed))
		case core.TreemapChangedEvent:
			logger.Debug("Treemap rebuilt", "root", e.Root, "suppressed", e.Suppressed)
		}
	})

	w, err := watcher.Watch(root)
	if err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("Watching for deletions, interrupt to stop", "root", root)
	if err := c.Watch(ctx, w.Events()); err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info("Stopped", "freed", export.FormatSize(c.Freed()), "lifetime", export.FormatSize(st.FreedLifetime()))
	var rerr error
	c.Read(func(v *core.View) {
		rerr = export.WriteReport(cmd.OutOrStdout(), v.Tree(), v.Treemap(), top)
	})
	return rerr
}

// trackFreed adds every deletion seen by c to the stats of the tree root,
// which it returns
func trackFreed(c *core.Controller, st *stats.Manager) string {
	var root string
	c.Read(func(v *core.View) {
		root = v.Tree().Node(v.Tree().Root()).Name
	})
	c.Subscribe(func(e core.Event) {
		if e, ok := e.(core.DeletionDetectedEvent); ok {
			st.AddFreed(root, e.Size)
		}
	})
	return root
}
