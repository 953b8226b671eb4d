// Package services orchestrates the engines with the optional outbound
// integrations (RabbitMQ alerts, Google Sheets export mirror). Both
// integrations are best effort: their failures are logged, never
// surfaced to the originating request.
package services

import (
	"context"
	"log/slog"

	"gastos/internal/budget"
	"gastos/internal/notify"
)

// AlertPublisher is the slice of the notify client the service needs.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *notify.BudgetAlertMessage) error
}

// AlertService recomputes budget alerts after ledger mutations and
// publishes the warning/danger entries. A nil publisher disables
// publishing without disabling the recomputation path.
type AlertService struct {
	budgets   *budget.Engine
	publisher AlertPublisher
}

func NewAlertService(budgets *budget.Engine, publisher AlertPublisher) *AlertService {
	return &AlertService{budgets: budgets, publisher: publisher}
}

// PublishAlerts computes the current alert set and publishes each
// entry. Publish failures are logged per alert and do not stop the
// remaining ones.
func (s *AlertService) PublishAlerts(ctx context.Context) {
	alerts := s.budgets.BudgetAlerts(ctx)
	if len(alerts) == 0 {
		return
	}
	if s.publisher == nil {
		slog.DebugContext(ctx, "Alert publisher not configured, skipping", "alerts", len(alerts))
		return
	}

	for _, a := range alerts {
		msg := notify.NewBudgetAlertMessage(a.ID, a.Name, a.Budget.Cents, a.Spent.Cents, a.Percentage, a.Status)
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"category_id", a.ID, "name", a.Name, "error", err)
		}
	}
}
