package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"eventmarket_app/internal/models"
	"eventmarket_app/internal/services"
)

// SendNotificationTaskDef delivers an already-created Notification row over
// the user's preferred channel. Delivery is decoupled from the
// reconciliation transaction: the reconciler commits entity state and the
// notifier enqueues this task, so a delivery failure can only ever cost a
// message, never a state transition.
type SendNotificationTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SendNotificationTaskDef) TaskID() string {
	return "send_notification"
}

// HandleExecution looks up the notification and the user's channel
// preference and delivers accordingly. Failures reschedule up to the
// task's attempt budget.
func (t *SendNotificationTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	notifIDFloat, ok := task.Arguments["notification_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("notification_id not provided or invalid")
	}
	notifID := uint(notifIDFloat)

	var notif models.Notification
	if err := db.First(&notif, notifID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notification %d: %w", notifID, err)
	}

	var user models.User
	if err := db.First(&user, notif.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", notif.UserID, err)
	}

	var pref models.UserNotifPreference
	if err := db.Where("user_id = ?", user.ID).First(&pref).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// No preference means in-app only; the row already exists
			log.Printf("Skipping delivery for %s: no preference found", user.Email)
			return map[string]interface{}{"status": "skipped"}, nil
		}
		return nil, fmt.Errorf("failed to fetch preference: %w", err)
	}

	switch pref.Channel {
	case models.NotificationChannelNone:
		log.Printf("Notification delivery disabled for %s", user.Email)
		return map[string]interface{}{"status": "skipped"}, nil
	case models.NotificationChannelEmail:
		emailService := services.NewEmailService()
		if err := emailService.SendEmail([]string{user.Email}, notif.Title, notif.Message); err != nil {
			t.reschedule(db, task)
			return nil, fmt.Errorf("failed to send email to %s: %w", user.Email, err)
		}
	default:
		log.Printf("Unsupported notification channel %s for %s", pref.Channel, user.Email)
		return map[string]interface{}{"status": "skipped"}, nil
	}

	return map[string]interface{}{"status": "success", "channel": string(pref.Channel)}, nil
}

// reschedule queues another attempt in 5 minutes while the attempt budget
// lasts
func (t *SendNotificationTaskDef) reschedule(db *gorm.DB, task models.ScheduledTask) {
	attempt, _ := task.Arguments["attempt_count"].(float64)
	if int(attempt)+1 >= task.MaxAttempt {
		log.Printf("Max attempts (%d) reached for notification task %d", task.MaxAttempt, task.ID)
		return
	}

	newArgs := make(map[string]interface{}, len(task.Arguments))
	for k, v := range task.Arguments {
		newArgs[k] = v
	}
	newArgs["attempt_count"] = attempt + 1

	retry, err := BuildScheduledTask(t.TaskID(), newArgs, time.Now().Add(5*time.Minute), nil, models.ScheduledTaskTypeOneTime, task.MaxAttempt)
	if err != nil {
		log.Printf("Failed to build retry task: %v", err)
		return
	}
	if err := db.Create(retry).Error; err != nil {
		log.Printf("Failed to create retry task: %v", err)
	}
}

// SendNotificationTask is the singleton instance of SendNotificationTaskDef
var SendNotificationTask = &SendNotificationTaskDef{}
