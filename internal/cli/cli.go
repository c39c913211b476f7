// Package cli implements the treemapview command-line interface.
//
// Every command scans (or loads from cache) a directory, lays it out as a
// treemap and hands the result to one of the exporters or to the HTTP
// server. Logging goes to stderr through charmbracelet/log; --verbose
// lowers the level to debug.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/logging"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the treemapview CLI and returns an error if any command fails
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var verbose bool
	opts := defaultGlobalOpts()

	root := &cobra.Command{
		Use:          "treemapview",
		Short:        "Lay out directory trees as cushion treemaps",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), logging.New(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("treemapview %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	opts.register(root)

	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newClassifyCmd(opts))

	return root
}

// openOutput opens path for writing. "" and "-" mean the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
