package models

import "gorm.io/gorm"

// ClassGroup is the reference list backing every class selector in the portal
// (announcement targets, exam targets, schedule owner, user enrollment).
type ClassGroup struct {
	gorm.Model
	Name  string `json:"name" gorm:"unique;not null"`
	Email string `json:"email"`
	Color string `json:"color" gorm:"type:varchar(20)"`
}

// ClassGroupResponse carries the derived member count alongside the row.
type ClassGroupResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Color       string `json:"color"`
	MemberCount int64  `json:"memberCount"`
}
