package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gastos/internal/cli"
	"gastos/internal/notify"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the alerts worker")
		os.Exit(1)
	}

	client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting alerts worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeBudgetAlerts(ctx, func(msg *notify.BudgetAlertMessage) error {
		level := logger.Warn
		if msg.Status == "danger" {
			level = logger.Error
		}
		level("Budget alert",
			"category_id", msg.CategoryID,
			"name", msg.Name,
			"budget_cents", msg.BudgetCents,
			"spent_cents", msg.SpentCents,
			"percentage", msg.Percentage,
			"status", msg.Status,
			"at", msg.At)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Alerts worker stopped gracefully")
}
