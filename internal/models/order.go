package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order aggregates the bookings a user holds for one event. There is no
// foreign key to Payment; correlation runs through the matched booking's
// (EventID, UserID) pair, so one event can move several orders at once.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID  uint        `gorm:"index:idx_orders_user_event,priority:1" json:"user_id"`
	EventID uint        `gorm:"index:idx_orders_user_event,priority:2" json:"event_id"`
	Status  OrderStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// Relationships
	User     User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event    Event           `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Tracking []OrderTracking `gorm:"foreignKey:OrderID" json:"tracking,omitempty"`
}

// OrderTracking is an append-only audit entry for an order status change.
// Rows are created, never mutated or deleted.
type OrderTracking struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID     uint   `gorm:"index" json:"order_id"`
	Status      string `gorm:"type:varchar(50)" json:"status"`
	Description string `gorm:"type:text" json:"description"`
}
