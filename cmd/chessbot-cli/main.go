package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessbot/internal/console"
	"github.com/hailam/chessbot/internal/engine"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	workers    = flag.Int("workers", 1, "root actions searched in parallel")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	eng := engine.NewEngine()
	eng.SetWorkers(*workers)

	console.New(eng, os.Stdout).Run(os.Stdin)
}
