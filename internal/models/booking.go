package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus represents the state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// BookingPaymentStatus represents the payment side of a booking
type BookingPaymentStatus string

const (
	BookingPaymentUnpaid BookingPaymentStatus = "UNPAID"
	BookingPaymentPaid   BookingPaymentStatus = "PAID"
	BookingPaymentFailed BookingPaymentStatus = "FAILED"
)

// Booking represents a user's reservation for a marketplace event.
// Status and PaymentStatus always change together within one handler
// invocation, so a booking is never observed as CONFIRMED with a FAILED
// payment.
type Booking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID    string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID  uint   `gorm:"index" json:"user_id"`
	EventID uint   `gorm:"index" json:"event_id"`

	// PaymentIntentRef is nil for free/no-payment flows; those bookings are
	// untouched by the reconciliation engine.
	PaymentIntentRef *string `gorm:"type:varchar(100);index" json:"payment_intent_ref,omitempty"`

	Status        BookingStatus        `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	PaymentStatus BookingPaymentStatus `gorm:"type:varchar(20);default:'UNPAID'" json:"payment_status"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// BeforeCreate assigns the public booking reference. API responses and
// processor metadata carry this instead of the numeric id.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == "" {
		b.UUID = uuid.New().String()
	}
	return nil
}
