package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/scanner"
	"github.com/lumipallolabs/treemapview/internal/server"
	"github.com/lumipallolabs/treemapview/internal/stats"
	"github.com/lumipallolabs/treemapview/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

type serveOpts struct {
	addr   string
	watch  bool
	rescan time.Duration
	view   viewOpts
}

func newServeCmd(global *globalOpts) *cobra.Command {
	opts := serveOpts{addr: "127.0.0.1:8080", watch: true}

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the treemap of a directory over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.newController(cmd, args)
			if err != nil {
				return err
			}
			if err := opts.view.apply(c); err != nil {
				return err
			}
			st := global.openStats(loggerFromContext(cmd.Context()))
			defer st.Close()
			return runServe(cmd.Context(), c, st, global, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.watch, "watch", opts.watch, "drop deleted files from the treemap as they disappear")
	cmd.Flags().DurationVar(&opts.rescan, "rescan", 0, "rescan the directory at this interval (0 disables)")
	opts.view.register(cmd)
	return cmd
}

func runServe(ctx context.Context, c *core.Controller, st *stats.Manager, global *globalOpts, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           server.New(c, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "addr", opts.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	root := trackFreed(c, st)
	if opts.watch {
		w, err := watcher.Watch(root)
		if err != nil {
			logger.Warn("Not watching for deletions", "err", err)
		} else {
			defer w.Stop()
			g.Go(func() error {
				return ignoreCanceled(c.Watch(ctx, w.Events()))
			})
		}
	}

	if opts.rescan > 0 {
		g.Go(func() error {
			return ignoreCanceled(rescanEvery(ctx, c, global.scanOptions(), opts.rescan))
		})
	}

	return g.Wait()
}

// rescanEvery rescans with a fresh walker every interval until ctx is
// done. A failed rescan keeps the old tree.
func rescanEvery(ctx context.Context, c *core.Controller, scanOpts scanner.Options, interval time.Duration) error {
	logger := loggerFromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			prog := newProgress(logger)
			if err := c.Rescan(ctx, scanner.NewWalker(scanOpts)); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("Rescan failed", "err", err)
				continue
			}
			prog.done("Rescanned")
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
