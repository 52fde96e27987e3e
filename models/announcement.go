package models

import "gorm.io/gorm"

// Priority tiers for announcements.
const (
	PriorityNormal    = "normal"
	PriorityImportant = "important"
	PriorityUrgent    = "urgent"
)

// AnnouncementLink is one labeled external link attached to an announcement.
// Position preserves the author's ordering across round-trips.
type AnnouncementLink struct {
	gorm.Model
	AnnouncementID uint   `json:"announcement_id"`
	Label          string `json:"label"`
	URL            string `json:"url"`
	Position       int    `json:"position"`
}

// Announcement is a post on the school news feed, targeted at one class or at
// the whole school via ClassAll.
type Announcement struct {
	gorm.Model
	Title      string             `json:"title" gorm:"not null"`
	Content    string             `json:"content" gorm:"type:text"`
	AuthorID   uint               `json:"author_id"`
	AuthorName string             `json:"authorName"`
	ClassName  string             `json:"className" gorm:"type:varchar(50);index;default:'all'"`
	Priority   string             `json:"priority" gorm:"type:varchar(20);default:'normal'"`
	ShareCount int                `json:"shareCount" gorm:"default:0"`
	Links      []AnnouncementLink `json:"links,omitempty" gorm:"foreignKey:AnnouncementID;constraint:OnDelete:CASCADE;"`
}
