package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// IsTerminal reports whether the status can no longer change.
// PAID and FAILED are final; the reconciliation engine never moves a
// payment back to PENDING.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Payment records one checkout attempt with the payment processor.
// Created in PENDING during checkout; only the reconciliation engine
// moves it to PAID or FAILED.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// PaymentIntentRef is the processor-side identifier correlating this
	// record with processor events. Immutable once created.
	PaymentIntentRef string `gorm:"type:varchar(100);uniqueIndex" json:"payment_intent_ref"`

	// Amount is in the minor currency unit (cents). Never store divided values.
	Amount   int64         `json:"amount"`
	Currency string        `gorm:"type:varchar(10);default:'USD'" json:"currency"`
	Status   PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// ProviderDetail carries the processor's last error or status detail
	ProviderDetail string `gorm:"type:text" json:"provider_detail"`
}
