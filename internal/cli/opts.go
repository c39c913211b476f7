package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/treemapview/internal/cache"
	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/export"
	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/scanner"
	"github.com/lumipallolabs/treemapview/internal/stats"
)

// globalOpts holds the flags shared by every command
type globalOpts struct {
	configPath string   // TOML config file
	sets       []string // name=value overrides applied after the file
	width      int      // view width in pixels
	height     int      // view height in pixels
	cacheDir   string   // where scans are cached
	statsPath  string   // persistent counters file
	useCache   bool     // load the latest cached scan instead of walking
	workers    int      // parallel directory readers
	sniff      bool     // detect content types of files without a known extension
	dotEntries bool     // group the files of mixed directories
	apparent   bool     // count file lengths instead of allocated blocks
}

func defaultGlobalOpts() *globalOpts {
	return &globalOpts{
		configPath: config.DefaultPath(),
		width:      1024,
		height:     768,
		cacheDir:   cache.DefaultDir(),
		statsPath:  stats.DefaultPath(),
		workers:    runtime.NumCPU(),
		dotEntries: true,
	}
}

func (o *globalOpts) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", o.configPath, "config file")
	f.StringArrayVar(&o.sets, "set", nil, "override a config option (name=value, repeatable)")
	f.IntVar(&o.width, "width", o.width, "view width in pixels")
	f.IntVar(&o.height, "height", o.height, "view height in pixels")
	f.StringVar(&o.cacheDir, "cache-dir", o.cacheDir, "scan cache directory")
	f.StringVar(&o.statsPath, "stats-file", o.statsPath, "file keeping freed bytes and scan history")
	f.BoolVar(&o.useCache, "cache", false, "use the latest cached scan when there is one")
	f.IntVar(&o.workers, "workers", o.workers, "parallel directory readers")
	f.BoolVar(&o.sniff, "sniff", false, "detect content types of files by their contents")
	f.BoolVar(&o.dotEntries, "dot-entries", o.dotEntries, "group the files of mixed directories")
	f.BoolVar(&o.apparent, "apparent-size", false, "count file lengths instead of allocated blocks")
}

// loadConfig reads the config file and applies --set overrides. Only an
// explicitly named file has to exist.
func (o *globalOpts) loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(o.configPath, !explicit)
	if err != nil {
		return config.Config{}, err
	}
	overrides, err := config.ParseAssignments(o.sets)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (o *globalOpts) scanOptions() scanner.Options {
	return scanner.Options{
		Workers:      o.workers,
		SniffMIME:    o.sniff,
		DotEntries:   o.dotEntries,
		ApparentSize: o.apparent,
	}
}

// loadTree returns the tree for dir, from the cache when allowed and
// otherwise by scanning it. Fresh scans are written back to the cache.
func (o *globalOpts) loadTree(ctx context.Context, dir string) (*model.Tree, error) {
	logger := loggerFromContext(ctx)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	c := cache.New(o.cacheDir)

	if o.useCache {
		tree, err := c.LoadLatest(abs)
		switch {
		case err == nil:
			ts, _ := c.Timestamp(abs)
			logger.Info("Loaded cached scan", "root", abs, "from", ts.Format("2006-01-02 15:04"))
			return tree, nil
		case errors.Is(err, cache.ErrNoCache):
			logger.Debug("No cached scan", "root", abs)
		default:
			logger.Warn("Ignoring unreadable cache", "err", err)
		}
	}

	prog := newProgress(logger)
	w := scanner.NewWalker(o.scanOptions())
	go func() {
		for p := range w.Progress() {
			logger.Debug("Scanning", "files", p.FilesScanned, "dirs", p.DirsScanned, "size", export.FormatSize(p.BytesFound))
		}
	}()
	tree, err := w.Scan(ctx, abs)
	if err != nil {
		return nil, err
	}
	size := tree.Node(tree.Root()).Size
	prog.done(fmt.Sprintf("Scanned %s, %s", abs, export.FormatSize(size)))

	st := o.openStats(logger)
	st.RecordScan(abs, size, time.Now())
	if err := st.Close(); err != nil {
		logger.Warn("Could not save stats", "err", err)
	}

	if path, err := c.Save(tree); err != nil {
		logger.Warn("Could not cache scan", "err", err)
	} else {
		logger.Debug("Cached scan", "file", path)
	}
	return tree, nil
}

// openStats loads the stats file. An unreadable file is logged and
// replaced with fresh counters.
func (o *globalOpts) openStats(logger *log.Logger) *stats.Manager {
	m := stats.NewManager(o.statsPath)
	if err := m.Load(); err != nil {
		logger.Warn("Ignoring unreadable stats", "file", o.statsPath, "err", err)
	}
	return m
}

// dirArg returns the directory argument, defaulting to the working
// directory
func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
