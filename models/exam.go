package models

import (
	"time"

	"gorm.io/gorm"
)

// Exam is a scheduled examination for one class (or school-wide).
type Exam struct {
	gorm.Model
	Subject   string    `json:"subject" gorm:"not null"`
	Date      time.Time `json:"date" gorm:"index;not null"`
	Duration  string    `json:"duration" gorm:"type:varchar(20)"` // e.g. "2h00"
	Room      string    `json:"room" gorm:"type:varchar(50)"`
	Notes     string    `json:"notes" gorm:"type:text"`
	ClassName string    `json:"className" gorm:"type:varchar(50);index;default:'all'"`
	AuthorID  uint      `json:"author_id"`
}

// Upcoming reports whether the exam is still ahead of the given clock.
func (e Exam) Upcoming(now time.Time) bool {
	return e.Date.After(now)
}
