package models

import "gorm.io/gorm"

// Notification severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityUrgent  = "urgent"
)

// Notification is a personal alert row owned by exactly one user.
type Notification struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null"`
	Title    string `json:"title" gorm:"not null"`
	Message  string `json:"message" gorm:"type:text"`
	Severity string `json:"severity" gorm:"type:varchar(20);default:'info'"`
	Read     bool   `json:"read" gorm:"default:false"`
}
