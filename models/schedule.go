package models

import "gorm.io/gorm"

// ScheduleSlot is one cell of a class week grid. Weekday runs Monday=0 to
// Saturday=5. A class timetable is the set of slots sharing a ClassName and
// is always saved as a whole-set replace, never per-slot.
type ScheduleSlot struct {
	gorm.Model
	ClassName string `json:"className" gorm:"type:varchar(50);index;not null"`
	Weekday   int    `json:"weekday" gorm:"not null"`
	StartTime string `json:"startTime" gorm:"type:varchar(10)"` // "08:00"
	EndTime   string `json:"endTime" gorm:"type:varchar(10)"`
	Subject   string `json:"subject" gorm:"not null"`
	Teacher   string `json:"teacher"`
	Room      string `json:"room" gorm:"type:varchar(50)"`
	Color     string `json:"color" gorm:"type:varchar(20)"`
}
