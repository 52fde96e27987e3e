package models

import "gorm.io/gorm"

// AssistantSettings is the remotely configured gate for the campus assistant.
// A single row (ID 1) holds the flag; admins flip it from the console.
type AssistantSettings struct {
	gorm.Model
	Enabled   bool   `json:"enabled" gorm:"default:false"`
	Verbosity string `json:"verbosity" gorm:"type:varchar(20);default:'normal'"` // short, normal, detailed
	Tone      string `json:"tone" gorm:"type:varchar(30);default:'friendly'"`
}
