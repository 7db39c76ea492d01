package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventmarket_app/internal/models"
)

// NotifierService creates user-facing notification rows and queues their
// delivery. It is purely additive and best-effort: every method swallows
// and logs its own errors, so a failed notification can never undo a
// payment state transition that already committed.
type NotifierService struct {
	db *gorm.DB
}

func NewNotifierService(db *gorm.DB) *NotifierService {
	return &NotifierService{db: db}
}

// NotifyPaymentSuccess records a success notification for the user
func (n *NotifierService) NotifyPaymentSuccess(userID uint, ref string, amount int64, currency string) {
	msg := fmt.Sprintf("Your payment of %s was received. Your booking is confirmed.", FormatMinorAmount(amount, currency))
	n.create(userID, models.NotificationTypePaymentSuccess, "Payment received", msg, ref, amount, currency)
}

// NotifyPaymentFailure records a failure notification, including the
// processor's error detail when it supplied one
func (n *NotifierService) NotifyPaymentFailure(userID uint, ref string, amount int64, currency, reason string) {
	msg := fmt.Sprintf("Your payment of %s could not be processed.", FormatMinorAmount(amount, currency))
	if reason != "" {
		msg = fmt.Sprintf("%s Reason: %s", msg, reason)
	}
	n.create(userID, models.NotificationTypePaymentFailure, "Payment failed", msg, ref, amount, currency)
}

func (n *NotifierService) create(userID uint, notifType models.NotificationType, title, message, ref string, amount int64, currency string) {
	data, err := json.Marshal(map[string]interface{}{
		"payment_intent": ref,
		"amount":         amount,
		"currency":       currency,
	})
	if err != nil {
		log.Printf("[notifier] failed to marshal notification data: %v", err)
		data = nil
	}

	notif := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    datatypes.JSON(data),
	}
	if err := n.db.Create(&notif).Error; err != nil {
		log.Printf("[notifier] failed to create notification for user %d: %v", userID, err)
		return
	}

	n.enqueueDelivery(&notif)
}

// enqueueDelivery schedules a one-time send_notification task so the worker
// delivers the notification over the user's preferred channel
func (n *NotifierService) enqueueDelivery(notif *models.Notification) {
	task := models.ScheduledTask{
		TaskName: "send_notification",
		Arguments: map[string]interface{}{
			"notification_id": notif.ID,
			"user_id":         notif.UserID,
		},
		Due:        time.Now(),
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
	}
	if err := n.db.Create(&task).Error; err != nil {
		log.Printf("[notifier] failed to enqueue delivery for notification %d: %v", notif.ID, err)
	}
}

// FormatMinorAmount renders an amount carried in the minor currency unit
// (cents) for display. Division by 100 happens here and nowhere else.
func FormatMinorAmount(amount int64, currency string) string {
	major := float64(amount) / 100
	if strings.EqualFold(currency, "USD") || currency == "" {
		return fmt.Sprintf("$%.2f", major)
	}
	return fmt.Sprintf("%.2f %s", major, strings.ToUpper(currency))
}
