package main

import (
	"os"
	"runtime/pprof"

	"github.com/charmbracelet/log"

	"github.com/lumipallolabs/treemapview/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Enable CPU profiling if CPUPROFILE env var is set
	if cpuProfile := os.Getenv("CPUPROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile", "err", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile", "err", err)
		}
		defer pprof.StopCPUProfile()
		log.Info("CPU profiling enabled", "file", cpuProfile)
	}

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
