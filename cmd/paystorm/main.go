package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"paystorm/internal/concern"
	"paystorm/internal/config"
	"paystorm/internal/coordinator"
	"paystorm/internal/core"
	"paystorm/internal/journal"
	"paystorm/internal/progress"
	"paystorm/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

func main() {
	defaults := config.Default()

	configPath := flag.String("config", "", "path to YAML config file (optional)")
	uri := flag.String("uri", defaults.URI, "MongoDB endpoint URI")
	workers := flag.Int("workers", defaults.Workers, "number of concurrent injection workers")
	total := flag.Int("total", defaults.TotalRecords, "total number of records across all workers")
	writeConcern := flag.String("write-concern", defaults.WriteConcern,
		"write concern: "+strings.Join(concern.WriteNames(), ", "))
	readConcern := flag.String("read-concern", defaults.ReadConcern,
		"read concern: "+strings.Join(concern.ReadNames(), ", "))
	sample := flag.Float64("sample", defaults.SampleRate, "fraction of operations to time (0..1)")
	logPath := flag.String("log", defaults.LogPath, "result log file (one JSON entry per line, appended)")
	mode := flag.String("mode", string(defaults.Mode), "workload mode: load (write then read back), query (read-only)")
	database := flag.String("db", defaults.Database, "database name")
	collection := flag.String("collection", defaults.Collection, "collection name")
	timeout := flag.Duration("timeout", defaults.OpTimeout, "per-operation timeout")
	seed := flag.Int64("seed", defaults.Seed, "base seed for record generation")
	rate := flag.Int("rate", defaults.Rate, "max operations/sec per worker (0 = unlimited)")
	quiet := flag.Bool("quiet", false, "suppress progress output during the run")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
		cfg = loaded
	}

	// Flags the user actually set override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "uri":
			cfg.URI = *uri
		case "workers":
			cfg.Workers = *workers
		case "total":
			cfg.TotalRecords = *total
		case "write-concern":
			cfg.WriteConcern = *writeConcern
		case "read-concern":
			cfg.ReadConcern = *readConcern
		case "sample":
			cfg.SampleRate = *sample
		case "log":
			cfg.LogPath = *logPath
		case "mode":
			cfg.Mode = config.Mode(*mode)
		case "db":
			cfg.Database = *database
		case "collection":
			cfg.Collection = *collection
		case "timeout":
			cfg.OpTimeout = *timeout
		case "seed":
			cfg.Seed = *seed
		case "rate":
			cfg.Rate = *rate
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	// Reject unknown concern names before any worker starts.
	wc, err := concern.ResolveWrite(cfg.WriteConcern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	rc, err := concern.ResolveRead(cfg.ReadConcern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	jrn, err := journal.Open(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	ctx, cancel := context.WithCancel(context.Background())

	st, err := store.Connect(ctx, store.Config{
		URI:          cfg.URI,
		Database:     cfg.Database,
		Collection:   cfg.Collection,
		WriteConcern: wc,
		ReadConcern:  rc,
		OpTimeout:    cfg.OpTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if !*quiet {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		}
		cancel()
	}()

	counters := &core.Counters{}
	prog := progress.NewProgress(counters, *quiet)
	prog.Printf("paystorm starting: %d workers, %d records, mode %s, WC %s, RC %s",
		cfg.Workers, cfg.TotalRecords, cfg.Mode, cfg.WriteConcern, cfg.ReadConcern)
	prog.Start()

	summary, runErr := coordinator.Launch(ctx, cfg, st, jrn, counters)
	cancel()

	prog.Stop()

	if err := jrn.Close(); err != nil && runErr == nil {
		runErr = err
	}
	disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := st.Close(disconnectCtx); err != nil {
		logrus.Warnf("disconnect: %v", err)
	}
	disconnectCancel()

	printSummary(summary)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func printSummary(s coordinator.RunSummary) {
	fmt.Println()
	fmt.Printf("Workers:          %d\n", s.Workers)
	fmt.Printf("Records written:  %d\n", s.Written)
	fmt.Printf("Records read:     %d\n", s.Read)
	fmt.Printf("Failures:         %d\n", s.Failures)
	if s.Cancelled > 0 {
		fmt.Printf("Cancelled:        %d\n", s.Cancelled)
	}
	fmt.Printf("Elapsed:          %v\n", s.Elapsed.Round(time.Millisecond))
}
