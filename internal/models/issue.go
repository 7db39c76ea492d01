package models

import (
	"time"

	"gorm.io/gorm"
)

// IssueStatus represents the state of an operational issue ticket
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "OPEN"
	IssueStatusResolved IssueStatus = "RESOLVED"
)

// IssuePriority represents the urgency of an issue
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "LOW"
	IssuePriorityMedium IssuePriority = "MEDIUM"
	IssuePriorityHigh   IssuePriority = "HIGH"
)

// Issue is an operational ticket, created for payment disputes. It stands
// alone; the related charge is traceable through the description text only.
type Issue struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title       string        `gorm:"type:varchar(255)" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      IssueStatus   `gorm:"type:varchar(20);default:'OPEN'" json:"status"`
	Priority    IssuePriority `gorm:"type:varchar(20);default:'MEDIUM'" json:"priority"`
}
