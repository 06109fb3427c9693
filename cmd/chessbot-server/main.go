package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hailam/chessbot/internal/api"
	"github.com/hailam/chessbot/internal/cache"
	"github.com/hailam/chessbot/internal/engine"
	"github.com/hailam/chessbot/internal/storage"
)

func main() {
	// Flags (env fallbacks).
	addr := flag.String("addr", getenv("CHESSBOT_ADDR", ":8080"), "listen address")
	dataDir := flag.String("data-dir", getenv(storage.DataDirEnv, ""), "database directory (default: platform data dir)")
	maxLevel := flag.Int("max-level", getenvInt("CHESSBOT_MAX_LEVEL", api.DefaultConfig().MaxLevel), "highest accepted intelligence level (0 = unlimited)")
	workers := flag.Int("workers", getenvInt("CHESSBOT_WORKERS", runtime.NumCPU()), "root actions searched in parallel")
	pruning := flag.Bool("pruning", getenvBool("CHESSBOT_PRUNING", true), "alpha-beta pruning")
	timeout := flag.Duration("timeout", getenvDuration("CHESSBOT_TIMEOUT", 0), "per-decision time limit (0 = none)")
	cacheMB := flag.Int("cache-mb", getenvInt("CHESSBOT_CACHE_MB", 16), "decision cache size in MB (0 = disabled)")
	strict := flag.Bool("strict", getenvBool("CHESSBOT_STRICT", false), "reject malformed boards")
	noStorage := flag.Bool("no-storage", getenvBool("CHESSBOT_NO_STORAGE", false), "do not record decisions")
	cpuprofile := flag.String("cpuprofile", os.Getenv("CPUPROFILE"), "write cpu profile to file")
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	eng := engine.NewEngine()
	eng.SetPruning(*pruning)
	eng.SetWorkers(*workers)
	eng.SetTimeout(*timeout)

	if *cacheMB > 0 {
		c, err := cache.New(*cacheMB)
		if err != nil {
			log.Fatalf("cache init: %v", err)
		}
		defer c.Close()
		eng.SetCache(c)
	}

	var store *storage.Storage
	if !*noStorage {
		var err error
		if *dataDir != "" {
			store, err = storage.Open(*dataDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			log.Fatalf("storage init: %v", err)
		}
		defer store.Close()
	}

	srv := api.NewServer(eng, store, api.Config{
		MaxLevel: *maxLevel,
		Strict:   *strict,
	})

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Listen(*addr)
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("[server] workers=%d pruning=%v max-level=%d cache=%dMB storage=%v",
		*workers, *pruning, *maxLevel, *cacheMB, store != nil)

	select {
	case <-sigCtx.Done():
		log.Printf("[server] shutdown signal received: %v", sigCtx.Err())
	case err := <-serverErrCh:
		if err != nil {
			log.Printf("[server] server error: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		log.Printf("[server] graceful shutdown failed: %v", err)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Fatalf("%s: %v", key, err)
		}
		return n
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			log.Fatalf("%s: %v", key, err)
		}
		return d
	}
	return def
}
