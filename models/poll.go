package models

import "gorm.io/gorm"

// Poll is a class or school-wide vote with a fixed option list.
type Poll struct {
	gorm.Model
	Question  string       `json:"question" gorm:"not null"`
	ClassName string       `json:"className" gorm:"type:varchar(50);index;default:'all'"`
	Active    bool         `json:"active" gorm:"default:true"`
	AuthorID  uint         `json:"author_id"`
	Options   []PollOption `json:"options" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE;"`
}

// PollOption keeps the author's option order via Position.
type PollOption struct {
	gorm.Model
	PollID   uint       `json:"poll_id"`
	Label    string     `json:"label"`
	Position int        `json:"position"`
	Votes    []PollVote `json:"votes,omitempty" gorm:"foreignKey:PollOptionID;constraint:OnDelete:CASCADE;"`
}

// PollVote records one user's choice. The (poll_id, user_id) unique index is
// what guarantees at most one vote per viewer per poll; switching options is
// a delete+insert inside one transaction, never a second row.
type PollVote struct {
	gorm.Model
	PollID       uint `json:"poll_id" gorm:"uniqueIndex:idx_one_vote_per_user,priority:1;not null"`
	PollOptionID uint `json:"poll_option_id" gorm:"not null"`
	UserID       uint `json:"user_id" gorm:"uniqueIndex:idx_one_vote_per_user,priority:2;not null"`
}
