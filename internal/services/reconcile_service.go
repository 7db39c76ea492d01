package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventmarket_app/internal/models"
)

// RouteResult describes what the reconciler did with an event
type RouteResult string

const (
	// RouteApplied means the event changed entity state
	RouteApplied RouteResult = "applied"
	// RouteDuplicate means the event (or its transition) was already applied
	RouteDuplicate RouteResult = "duplicate"
	// RouteIgnored means the event referenced nothing this system tracks
	RouteIgnored RouteResult = "ignored"
	// RouteUnhandled means the event kind is outside the recognized set
	RouteUnhandled RouteResult = "unhandled"
)

const (
	trackingPaymentConfirmed = "PAYMENT_CONFIRMED"
	trackingPaymentFailed    = "PAYMENT_FAILED"

	correlationLockTTL     = 30 * time.Second
	correlationLockRetries = 4
)

// correlationLocker is the slice of RedisCache the reconciler depends on
type correlationLocker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration, retries int) (bool, error)
	ReleaseLock(ctx context.Context, name string) error
}

// ReconcileService brings Payment, Booking and Order state into agreement
// with the processor's authoritative outcome. Handlers for the same
// correlation id are serialized through a Redis lock; the entity writes for
// one event are applied in a single transaction, with notification emission
// strictly after commit.
type ReconcileService struct {
	db       *gorm.DB
	locker   correlationLocker // nil disables the cross-process lock (single node)
	notifier *NotifierService
}

func NewReconcileService(db *gorm.DB, cache *RedisCache, notifier *NotifierService) *ReconcileService {
	s := &ReconcileService{db: db, notifier: notifier}
	if cache != nil {
		s.locker = cache
	}
	return s
}

// Route dispatches one authenticated event to its handler. Unknown kinds
// are acknowledged, never errored, so the processor does not retry them.
// A returned error means the transition could not be committed and the
// caller should answer non-2xx to trigger redelivery.
func (s *ReconcileService) Route(ctx context.Context, ev *ProcessorEvent) (RouteResult, error) {
	switch ev.Kind {
	case EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, ev)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ctx, ev)
	case EventPaymentCanceled:
		return s.handlePaymentCanceled(ctx, ev)
	case EventDisputeCreated:
		return s.handleDisputeCreated(ctx, ev)
	case EventInvoicePaid:
		// Reserved for subscription support; nothing to reconcile yet
		log.Printf("[reconcile] invoice paid: %s (event %s)", ev.Invoice.InvoiceRef, ev.ID)
		return s.recordOnly(ctx, ev)
	default:
		log.Printf("[reconcile] unhandled event kind %q (event %s)", ev.Kind, ev.ID)
		return RouteUnhandled, nil
	}
}

// transitionOutcome captures what a payment transition actually did, so the
// post-commit phase can gate its side effects on real state change
type transitionOutcome struct {
	duplicate bool
	changed   bool
	booking   *models.Booking
	payment   *models.Payment
}

func (s *ReconcileService) handlePaymentSucceeded(ctx context.Context, ev *ProcessorEvent) (RouteResult, error) {
	out, err := s.applyPaymentTransition(ctx, ev,
		models.PaymentStatusPaid,
		models.BookingStatusConfirmed, models.BookingPaymentPaid,
		models.OrderStatusConfirmed,
		trackingPaymentConfirmed,
		fmt.Sprintf("Payment of %s confirmed by processor", FormatMinorAmount(ev.PaymentIntent.Amount, ev.PaymentIntent.Currency)),
	)
	if err != nil {
		return "", err
	}
	if out.changed && out.booking != nil {
		s.notifier.NotifyPaymentSuccess(out.booking.UserID, ev.PaymentIntent.PaymentIntentRef, ev.PaymentIntent.Amount, ev.PaymentIntent.Currency)
	}
	return out.result(), nil
}

func (s *ReconcileService) handlePaymentFailed(ctx context.Context, ev *ProcessorEvent) (RouteResult, error) {
	out, err := s.applyPaymentTransition(ctx, ev,
		models.PaymentStatusFailed,
		models.BookingStatusCancelled, models.BookingPaymentFailed,
		models.OrderStatusCancelled,
		trackingPaymentFailed,
		fmt.Sprintf("Payment failed: %s", ev.PaymentIntent.ErrorMessage),
	)
	if err != nil {
		return "", err
	}
	if out.changed && out.booking != nil {
		s.notifier.NotifyPaymentFailure(out.booking.UserID, ev.PaymentIntent.PaymentIntentRef, ev.PaymentIntent.Amount, ev.PaymentIntent.Currency, ev.PaymentIntent.ErrorMessage)
	}
	return out.result(), nil
}

// handlePaymentCanceled applies the same terminal state as a failure but
// emits no tracking entry and no notification. The asymmetry with
// handlePaymentFailed is intentional and matches the product behavior.
func (s *ReconcileService) handlePaymentCanceled(ctx context.Context, ev *ProcessorEvent) (RouteResult, error) {
	out, err := s.applyPaymentTransition(ctx, ev,
		models.PaymentStatusFailed,
		models.BookingStatusCancelled, models.BookingPaymentFailed,
		models.OrderStatusCancelled,
		"", // no tracking entry
		"",
	)
	if err != nil {
		return "", err
	}
	return out.result(), nil
}

// handleDisputeCreated opens a HIGH priority issue for the operations team.
// No payment, booking or order state is touched.
func (s *ReconcileService) handleDisputeCreated(ctx context.Context, ev *ProcessorEvent) (RouteResult, error) {
	duplicate := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := s.recordEvent(tx, ev)
		if err != nil {
			return err
		}
		if seen {
			duplicate = true
			return nil
		}

		d := ev.Dispute
		issue := models.Issue{
			Title: fmt.Sprintf("Payment dispute opened for charge %s", d.ChargeRef),
			Description: fmt.Sprintf(
				"The processor reported a dispute on charge %s. Reason: %s. Disputed amount: %s.",
				d.ChargeRef, d.Reason, FormatMinorAmount(d.Amount, d.Currency),
			),
			Status:   models.IssueStatusOpen,
			Priority: models.IssuePriorityHigh,
		}
		return tx.Create(&issue).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to record dispute %s: %w", ev.ID, err)
	}
	if duplicate {
		return RouteDuplicate, nil
	}
	return RouteApplied, nil
}

// recordOnly logs the event for audit without touching any entity
func (s *ReconcileService) recordOnly(ctx context.Context, ev *ProcessorEvent) (RouteResult, error) {
	duplicate := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := s.recordEvent(tx, ev)
		duplicate = seen
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to record event %s: %w", ev.ID, err)
	}
	if duplicate {
		return RouteDuplicate, nil
	}
	return RouteApplied, nil
}

// applyPaymentTransition runs the uniform handler algorithm: payment lookup
// and status write, joint booking status write, order set update, tracking
// append. Everything happens in one transaction; the caller emits
// notifications only after commit and only when state actually changed.
func (s *ReconcileService) applyPaymentTransition(
	ctx context.Context,
	ev *ProcessorEvent,
	toPayment models.PaymentStatus,
	toBooking models.BookingStatus,
	toBookingPayment models.BookingPaymentStatus,
	toOrder models.OrderStatus,
	trackingStatus string,
	trackingDescription string,
) (*transitionOutcome, error) {
	ref := ev.PaymentIntent.PaymentIntentRef

	if s.locker != nil {
		ok, err := s.locker.AcquireLock(ctx, "reconcile:"+ref, correlationLockTTL, correlationLockRetries)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire correlation lock for %s: %w", ref, err)
		}
		if !ok {
			// Another handler holds the id; let the processor redeliver
			return nil, fmt.Errorf("correlation id %s is locked by another handler", ref)
		}
		defer func() {
			if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), "reconcile:"+ref); err != nil {
				log.Printf("[reconcile] failed to release lock for %s: %v", ref, err)
			}
		}()
	}

	out := &transitionOutcome{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("payment_intent_ref = ?", ref).First(&payment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// The event may belong to a product line this system does
				// not track. Consume it without performing any write.
				log.Printf("[reconcile] no payment for correlation id %s (event %s)", ref, ev.ID)
				return nil
			}
			return err
		}
		out.payment = &payment

		seen, err := s.recordEvent(tx, ev)
		if err != nil {
			return err
		}
		if seen {
			out.duplicate = true
			return nil
		}

		// Terminal statuses are never overwritten: a canceled arriving after
		// a succeeded must not flip a PAID payment to FAILED, and a retried
		// succeeded under a fresh event id must not duplicate side effects.
		if payment.Status.IsTerminal() {
			log.Printf("[reconcile] payment %s already %s, ignoring %s (event %s)", ref, payment.Status, ev.Kind, ev.ID)
			return nil
		}

		updates := map[string]interface{}{"status": toPayment}
		if ev.PaymentIntent.ErrorMessage != "" {
			updates["provider_detail"] = ev.PaymentIntent.ErrorMessage
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		out.changed = true

		var booking models.Booking
		if err := tx.Where("payment_intent_ref = ?", ref).First(&booking).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// A payment can exist without a booking (product orders
				// without a service booking). Stop after the payment write.
				return nil
			}
			return err
		}

		// Status and payment status move together in one write so the
		// booking is never observable in a mixed state
		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"status":         toBooking,
			"payment_status": toBookingPayment,
		}).Error; err != nil {
			return err
		}
		booking.Status = toBooking
		booking.PaymentStatus = toBookingPayment
		out.booking = &booking

		// One order aggregates the bookings for a (user, event) pair, so
		// this is a set update, not a single-row update
		if err := tx.Model(&models.Order{}).
			Where("event_id = ? AND user_id = ?", booking.EventID, booking.UserID).
			Update("status", toOrder).Error; err != nil {
			return err
		}

		if trackingStatus != "" {
			var order models.Order
			err := tx.Where("event_id = ? AND user_id = ?", booking.EventID, booking.UserID).
				Order("id asc").First(&order).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil
				}
				return err
			}
			tracking := models.OrderTracking{
				OrderID:     order.ID,
				Status:      trackingStatus,
				Description: trackingDescription,
			}
			if err := tx.Create(&tracking).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile %s for %s: %w", ev.Kind, ref, err)
	}

	return out, nil
}

// recordEvent appends the event to the processed-event log inside the
// caller's transaction. Returns true when this event id was applied before.
// The row commits (or rolls back) together with the entity writes, so a
// failed transaction leaves the event eligible for redelivery.
func (s *ReconcileService) recordEvent(tx *gorm.DB, ev *ProcessorEvent) (bool, error) {
	var count int64
	if err := tx.Model(&models.ProcessorEventLog{}).Where("event_id = ?", ev.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		log.Printf("[reconcile] event %s already processed, skipping", ev.ID)
		return true, nil
	}

	entry := models.ProcessorEventLog{
		EventID: ev.ID,
		Kind:    string(ev.Kind),
		Payload: datatypes.JSON(ev.Raw),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return false, err
	}
	return false, nil
}

func (o *transitionOutcome) result() RouteResult {
	switch {
	case o.duplicate:
		return RouteDuplicate
	case o.payment == nil:
		return RouteIgnored
	case !o.changed:
		return RouteDuplicate
	default:
		return RouteApplied
	}
}
