package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Open-AIP/OpenAIP/internal/async"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/core"
	"github.com/Open-AIP/OpenAIP/internal/export"
	"github.com/Open-AIP/OpenAIP/internal/ingest"
	repo "github.com/Open-AIP/OpenAIP/internal/repository"
	svc "github.com/Open-AIP/OpenAIP/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file (defaults to $AIP_CONFIG)")
		inbox      = flag.String("inbox", "", "directory rescanned on -schedule (defaults to worker.inbox_dir)")
		schedule   = flag.String("schedule", "", "cron expression for inbox scans (defaults to worker.schedule)")
		watch      = flag.Bool("watch", false, "also react to file system events in the inbox")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *inbox != "" {
		cfg.Worker.InboxDir = *inbox
	}
	if *schedule != "" {
		cfg.Worker.Schedule = *schedule
	}
	if err := cfg.Validate(false); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store    core.ArtifactStore
		docs     repo.DocumentRepository
		exporter svc.WorkbookExporter
	)
	if cfg.Database.DSN != "" {
		db, err := svc.ConnectDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := svc.PingDB(ctx, db, logger, 5*time.Second); err != nil {
			os.Exit(1)
		}
		st := repo.NewStore(db, logger)
		store, docs = st, st.Documents()
		exporter = export.NewService(docs, logger)
	} else {
		logger.Warn("DB_URL not set, artifacts are not persisted")
	}

	processor := core.NewProcessorFromConfig(cfg, store, cfg.Export.OutDir, logger)

	var scheduler *ingest.InboxScheduler
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.Timeout()),
		async.WithResultFunc(func(job async.Job, out core.Outcome, err error) {
			// failed files are picked up again on the next scan
			if err != nil && scheduler != nil && out.ContentHash != "" {
				scheduler.Forget(out.ContentHash)
			}
		}),
	)
	submit := func(ctx context.Context, path string) error {
		return queue.Enqueue(ctx, async.NewJob(path))
	}

	if cfg.Worker.InboxDir != "" {
		scheduler = ingest.NewInboxScheduler(cfg.Worker.InboxDir, nil, submit, logger)
		if _, err := scheduler.RunNow(ctx); err != nil {
			logger.Error("initial inbox scan failed", "inbox", cfg.Worker.InboxDir, "error", err)
		}
		if cfg.Worker.Schedule != "" {
			if err := scheduler.Start(cfg.Worker.Schedule); err != nil {
				logger.Error("failed to start inbox scheduler", "error", err)
				os.Exit(1)
			}
			defer scheduler.Stop()
		}
		if *watch {
			startWatch(ctx, cfg.Worker.InboxDir, submit, logger)
		}
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	service := svc.NewMetadataService(processor, docs, exporter, logger)
	grpcServer, healthServer := svc.NewGRPCServer(service, logger)

	logger.Info("aipmetad listening", "addr", cfg.Server.GRPCAddr, "persist", store != nil)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.Timeout())
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

// startWatch forwards fsnotify events from the inbox into the queue.
func startWatch(ctx context.Context, root string, submit ingest.SubmitFunc, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{root},
		Debounce: 500 * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to watch inbox", "inbox", root, "error", err)
		return
	}
	go func() {
		for {
			select {
			case p, ok := <-events:
				if !ok {
					return
				}
				if err := submit(ctx, p); err != nil {
					logger.Warn("watch.submit_failed", "path", p, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watch.error", "error", err)
			}
		}
	}()
}
