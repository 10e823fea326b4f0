package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/config"
	"github.com/mamadbah2/herdfeed/internal/domain/reference"
	"github.com/mamadbah2/herdfeed/internal/export"
	"github.com/mamadbah2/herdfeed/internal/metrics"
	"github.com/mamadbah2/herdfeed/internal/repository/mongodb"
	"github.com/mamadbah2/herdfeed/internal/repository/sheets"
	"github.com/mamadbah2/herdfeed/internal/scheduler"
	"github.com/mamadbah2/herdfeed/internal/server/handlers"
	"github.com/mamadbah2/herdfeed/internal/server/router"
	advisorysvc "github.com/mamadbah2/herdfeed/internal/service/advisory"
	feedingsvc "github.com/mamadbah2/herdfeed/internal/service/feeding"
	reportingsvc "github.com/mamadbah2/herdfeed/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/herdfeed/internal/service/whatsapp"
	"github.com/mamadbah2/herdfeed/internal/state"
	"github.com/mamadbah2/herdfeed/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/herdfeed/pkg/clients/whatsapp"
	"github.com/mamadbah2/herdfeed/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ref, err := reference.Load(cfg.Reference.File)
	if err != nil {
		baseLogger.Fatal("failed to load reference tables", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	loadCtx, cancelLoad := context.WithTimeout(ctx, 15*time.Second)
	herd, loaded := feedingsvc.LoadInitialState(loadCtx, mongoRepo, cfg.MongoDB.StateKey, time.Now().UTC(), baseLogger.Named("state"))
	if !loaded {
		if err := mongoRepo.SaveState(loadCtx, cfg.MongoDB.StateKey, herd); err != nil {
			baseLogger.Error("failed to persist seed state", zap.Error(err))
		}
	}
	cancelLoad()
	store := state.NewStore(herd)

	m := metrics.New()

	var aiClient anthropic.Client
	if cfg.AI.Enabled() {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, advisory falls back to static text")
	}
	advisory := advisorysvc.NewService(aiClient, cfg.AI.Debounce, cfg.AI.Timeout, baseLogger.Named("svc.advisory"))
	defer advisory.Close()

	deps := feedingsvc.Dependencies{
		Saver:    mongoRepo,
		StateKey: cfg.MongoDB.StateKey,
		Advisory: advisory,
		Metrics:  m,
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, baseLogger.Named("svc.whatsapp"))
		notifier = messagingSvc
		deps.Notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp not configured, alerts and weekly reports disabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		deps.Ledger = sheetsRepo
	}

	sink, err := export.Open(ctx, cfg.Export)
	if err != nil {
		baseLogger.Fatal("failed to open export sink", zap.Error(err))
	}

	herdSvc := feedingsvc.NewService(store, ref, deps, baseLogger.Named("svc.feeding"))
	defer herdSvc.Wait()
	reportingSvc := reportingsvc.NewService(store, ref, baseLogger.Named("svc.reporting"))

	snapshot := store.Snapshot()
	m.SetStatusCounts(reportingsvc.CountStatuses(snapshot.Animals))
	advisory.Trigger(snapshot.Snapshot())

	engine := router.New(router.Handlers{
		Herd:    handlers.NewHerdHandler(herdSvc, baseLogger.Named("handlers.herd")),
		Reports: handlers.NewReportHandler(reportingSvc, advisory, ref, baseLogger.Named("handlers.reports")),
		Metrics: m.Handler(),
	}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, sink, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
