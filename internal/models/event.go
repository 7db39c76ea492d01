package models

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a marketplace listing (an event or service that can be
// booked). Listing management lives outside this service; bookings and
// orders reference events by ID.
type Event struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title        string    `gorm:"type:varchar(255)" json:"title"`
	Venue        string    `gorm:"type:varchar(255)" json:"venue"`
	StartsAt     time.Time `json:"starts_at"`
	PricePerSeat int64     `json:"price_per_seat"` // minor currency unit
	Currency     string    `gorm:"type:varchar(10);default:'USD'" json:"currency"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Bookings []Booking `gorm:"foreignKey:EventID" json:"bookings,omitempty"`
	Orders   []Order   `gorm:"foreignKey:EventID" json:"orders,omitempty"`
}
