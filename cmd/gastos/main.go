package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/backend"
	"gastos/internal/budget"
	"gastos/internal/cli"
	"gastos/internal/export"
	"gastos/internal/filter"
	apphttp "gastos/internal/http"
	"gastos/internal/ledger"
	"gastos/internal/notify"
	"gastos/internal/report"
	"gastos/internal/services"
	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// Snapshot store
	factory := backend.NewFactory(logger)
	result, err := factory.Create(cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// AMQP client for budget alerts (optional)
	var notifyClient *notify.Client
	if cfg.AMQPEnabled() {
		notifyClient, err = notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without alerts", "error", err)
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	// Google Sheets export mirror (optional)
	var mirror sheets.RowAppender
	if cfg.SheetsEnabled() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Warn("Failed to initialize Google Sheets client, continuing without mirror", "error", err)
		} else {
			mirror = sheetsClient
			logger.Info("Initialized Google Sheets export mirror", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	}

	// Engines and services
	store := result.Store
	repo := ledger.NewRepository(store)
	budgets := budget.NewEngine(store)
	reports := report.NewEngine(store, budgets)
	filters := filter.NewEngine(store)
	exporter := export.NewEngine(store)
	exports := services.NewExportService(store, exporter, mirror)

	var alerts *services.AlertService
	if notifyClient != nil {
		alerts = services.NewAlertService(budgets, notifyClient)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Repo:    repo,
		Reports: reports,
		Budgets: budgets,
		Filters: filters,
		Exports: exports,
		Alerts:  alerts,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	cleanup := func() {
		if notifyClient != nil {
			if err := notifyClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cleanup()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gastos server", "port", cfg.Port, "backend", cfg.DataBackend,
			"amqp_enabled", notifyClient != nil, "sheets_mirror", mirror != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
