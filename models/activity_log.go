package models

import (
	"log/slog"

	"uniconnect/config"

	"gorm.io/gorm"
)

// ActivityLogEntry is an append-only audit row. The portal never updates or
// deletes these; admins read and export them.
type ActivityLogEntry struct {
	gorm.Model
	Actor    string `json:"actor" gorm:"not null"`
	Action   string `json:"action" gorm:"not null"`
	Target   string `json:"target"`
	Severity string `json:"severity" gorm:"type:varchar(20);default:'info'"`
}

// LogActivity appends an audit entry. Auditing is best-effort: a write
// failure is logged and swallowed so it can never fail the action it records.
func LogActivity(actor, action, target, severity string) {
	entry := ActivityLogEntry{Actor: actor, Action: action, Target: target, Severity: severity}
	if err := config.DB.Create(&entry).Error; err != nil {
		slog.Warn("Failed to write activity log entry", "action", action, "error", err)
	}
}
