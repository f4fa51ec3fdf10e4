package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/async"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/core"
	"github.com/Open-AIP/OpenAIP/internal/export"
	"github.com/Open-AIP/OpenAIP/internal/ingest"
	repo "github.com/Open-AIP/OpenAIP/internal/repository"
	"github.com/Open-AIP/OpenAIP/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type result struct {
	job async.Job
	out core.Outcome
	err error
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file (defaults to $AIP_CONFIG)")
		outDir     = flag.String("out", "", "directory for artifact JSON files (defaults to export.out_dir)")
		xlsxPath   = flag.String("xlsx", "", "write a review workbook to this path")
		persist    = flag.Bool("persist", false, "store artifacts in the database at DB_URL")
		workers    = flag.Int("workers", 0, "concurrent documents (defaults to worker.workers)")
		scope      = flag.String("scope", "", "force pipeline scope: barangay or city")
	)
	flag.Usage = func() {
		printError("usage: aipmeta [flags] <file-or-dir>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Worker.Workers = *workers
	}
	if *scope != "" {
		cfg.Resolver.Scope = *scope
	}
	if *outDir != "" {
		cfg.Export.OutDir = *outDir
	}
	if err := cfg.Validate(*persist); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store core.ArtifactStore
	if *persist {
		db, err := server.ConnectDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = repo.NewStore(db, logger)
	}

	paths, err := collectPaths(ctx, flag.Args(), logger)
	if err != nil {
		logger.Error("failed to collect inputs", "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Warn("no pdf or txt files found", "inputs", flag.Args())
		return
	}

	proc := core.NewProcessorFromConfig(cfg, store, cfg.Export.OutDir, logger)

	var (
		mu      sync.Mutex
		results []result
	)
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.Timeout()),
		async.WithResultFunc(func(job async.Job, out core.Outcome, err error) {
			mu.Lock()
			results = append(results, result{job: job, out: out, err: err})
			mu.Unlock()
		}),
	)
	for _, p := range paths {
		if err := queue.Enqueue(ctx, async.NewJob(p)); err != nil {
			logger.Error("enqueue failed", "path", p, "error", err)
			break
		}
	}
	queue.Shutdown(context.Background())

	sort.Slice(results, func(i, j int) bool { return results[i].job.Path < results[j].job.Path })

	failed := 0
	var arts []artifact.Artifact
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("FAIL\t%s\t%s\n", r.job.Path, r.err)
			continue
		}
		arts = append(arts, r.out.Artifact)
		md := r.out.Artifact.Document
		fmt.Printf("OK\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.job.Path, r.out.Artifact.AIPID, md.LGU.Name, md.FiscalYear,
			r.out.Artifact.Quality.Score, r.out.OutputPath)
	}

	if *xlsxPath != "" && len(arts) > 0 {
		data, err := export.NewService(nil, logger).WorkbookXLSX(ctx, arts)
		if err != nil {
			logger.Error("failed to build workbook", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, data, 0o644); err != nil {
			logger.Error("failed to write workbook", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", *xlsxPath, "documents", len(arts))
	}

	logger.Info("aipmeta.done", "processed", len(results), "failed", failed)
	if failed > 0 || len(results) < len(paths) {
		os.Exit(1)
	}
}

// collectPaths expands directories into their unique pdf/txt files. Plain
// file arguments are passed through so unsupported types still report an error.
func collectPaths(ctx context.Context, args []string, logger *slog.Logger) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		results, stats, err := ingest.ScanDirectory(ctx, arg, nil, true)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if r.Err != "" {
				logger.Warn("skipping unreadable file", "path", r.Path, "error", r.Err)
			}
		}
		logger.Info("directory scanned",
			"dir", filepath.Clean(arg),
			"matched", stats.Matched,
			"duplicates", stats.Deduplicated,
			"failed", stats.Failed,
		)
		out = append(out, ingest.Unique(results)...)
	}
	return out, nil
}
