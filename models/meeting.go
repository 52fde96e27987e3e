package models

import "gorm.io/gorm"

// MeetingLink points at a live class session on an external platform.
type MeetingLink struct {
	gorm.Model
	Title     string `json:"title" gorm:"not null"`
	Platform  string `json:"platform" gorm:"type:varchar(30)"` // e.g. "meet", "zoom", "teams"
	URL       string `json:"url" gorm:"not null"`
	TimeLabel string `json:"timeLabel" gorm:"type:varchar(50)"` // human label, e.g. "Lundi 10h"
	ClassName string `json:"className" gorm:"type:varchar(50);index;default:'all'"`
	OwnerID   uint   `json:"owner_id"`
}
