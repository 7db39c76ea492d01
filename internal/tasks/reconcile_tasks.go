package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"eventmarket_app/internal/models"
	"eventmarket_app/internal/services"
)

// stalePendingAge is how long a payment may sit in PENDING before the
// sweep asks the processor what actually happened to it
const stalePendingAge = time.Hour

// ReconcileSweepTaskDef resolves payments stuck in PENDING. Webhooks are
// at-least-once, not guaranteed: if delivery failed past the processor's
// retry budget, the local payment never leaves PENDING. The sweep polls the
// processor's status endpoint and pushes the authoritative outcome through
// the same reconciliation path a webhook would have taken, so all the
// idempotency and monotonicity rules still apply.
type ReconcileSweepTaskDef struct {
	Processor  *services.ProcessorClient
	Reconciler *services.ReconcileService
}

// TaskID returns the unique identifier for this task
func (t *ReconcileSweepTaskDef) TaskID() string {
	return "reconcile_sweep"
}

// HandleExecution scans for stale PENDING payments and reconciles each one
// against the processor's status
func (t *ReconcileSweepTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	if t.Processor == nil || t.Reconciler == nil {
		return nil, fmt.Errorf("sweep task is not wired to a processor client and reconciler")
	}

	cutoff := time.Now().Add(-stalePendingAge)

	var stale []models.Payment
	if err := db.Where("status = ? AND created_at <= ?", models.PaymentStatusPending, cutoff).
		Limit(100).Find(&stale).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}

	resolved := 0
	stillPending := 0
	var failures []string

	for _, payment := range stale {
		if ctx.Err() != nil {
			break
		}

		status, err := t.Processor.RetrievePaymentIntent(payment.PaymentIntentRef)
		if err != nil {
			log.Printf("[sweep] failed to check %s: %v", payment.PaymentIntentRef, err)
			failures = append(failures, payment.PaymentIntentRef)
			continue
		}

		var kind services.EventKind
		switch status.Status {
		case "succeeded":
			kind = services.EventPaymentSucceeded
		case "failed":
			kind = services.EventPaymentFailed
		case "canceled":
			kind = services.EventPaymentCanceled
		default:
			stillPending++
			continue
		}

		ev := synthesizeEvent(kind, &payment, status)
		result, err := t.Reconciler.Route(ctx, ev)
		if err != nil {
			log.Printf("[sweep] failed to reconcile %s: %v", payment.PaymentIntentRef, err)
			failures = append(failures, payment.PaymentIntentRef)
			continue
		}
		log.Printf("[sweep] reconciled %s: %s", payment.PaymentIntentRef, result)
		resolved++
	}

	result := map[string]interface{}{
		"scanned":       len(stale),
		"resolved":      resolved,
		"still_pending": stillPending,
	}
	if len(failures) > 0 {
		result["failures"] = failures
	}
	return result, nil
}

// synthesizeEvent builds a processor event from a status poll. The sweep
// prefix keeps the event id unique per run, so the event log records each
// poll-driven transition like any delivered webhook.
func synthesizeEvent(kind services.EventKind, payment *models.Payment, status *services.PaymentIntentStatus) *services.ProcessorEvent {
	ev := &services.ProcessorEvent{
		ID:        fmt.Sprintf("sweep_%s_%d", payment.PaymentIntentRef, time.Now().Unix()),
		Kind:      kind,
		CreatedAt: time.Now().Unix(),
		PaymentIntent: &services.PaymentIntentData{
			PaymentIntentRef: payment.PaymentIntentRef,
			Amount:           status.Amount,
			Currency:         status.Currency,
			ErrorMessage:     status.ErrorMessage,
		},
	}
	raw, err := json.Marshal(map[string]interface{}{
		"id":         ev.ID,
		"kind":       string(kind),
		"created_at": ev.CreatedAt,
		"data":       ev.PaymentIntent,
	})
	if err == nil {
		ev.Raw = raw
	}
	return ev
}

// ReconcileSweepTask is the singleton instance of ReconcileSweepTaskDef.
// The worker wires its collaborators at startup.
var ReconcileSweepTask = &ReconcileSweepTaskDef{}
