package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProcessorEventLog records every processor event the engine has applied.
// The unique EventID doubles as the replay guard: inserting a second row
// for the same processor event id fails, and the reconciler treats that as
// "already processed". Rows also serve as an audit trail of raw payloads.
type ProcessorEventLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	EventID string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"event_id"`
	Kind    string         `gorm:"type:varchar(100)" json:"kind"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`
}
