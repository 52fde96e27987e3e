package models

import "gorm.io/gorm"

// Favorite marks one announcement as saved by one user. The unique pair index
// makes the toggle race-safe: a duplicate insert fails instead of doubling.
type Favorite struct {
	gorm.Model
	UserID         uint `json:"user_id" gorm:"uniqueIndex:idx_user_announcement,priority:1;not null"`
	AnnouncementID uint `json:"announcement_id" gorm:"uniqueIndex:idx_user_announcement,priority:2;not null"`
}
