package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType classifies a user-facing notification
type NotificationType string

const (
	NotificationTypePaymentSuccess NotificationType = "payment_success"
	NotificationTypePaymentFailure NotificationType = "payment_failure"
)

// Notification is a user-facing message created by the reconciliation
// engine. Creation is best-effort; a missed notification never invalidates
// the state transition that produced it.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID  uint             `gorm:"index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(50)" json:"type"`
	Title   string           `gorm:"type:varchar(255)" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Data    datatypes.JSON   `gorm:"type:jsonb" json:"data"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
}
