package models

import (
	"gorm.io/gorm"
)

// Role tiers. A "delegate" is the elevated class representative allowed to
// post and edit content scoped to their own class.
const (
	RoleStudent  = "student"
	RoleDelegate = "delegate"
	RoleAdmin    = "admin"
)

// ClassAll is the sentinel class name meaning "visible to the whole school".
const ClassAll = "all"

// User represents an enrolled portal account.
type User struct {
	gorm.Model
	FullName     string `json:"fullName" gorm:"not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role" gorm:"type:varchar(20);default:'student'"`
	ClassName    string `json:"className" gorm:"type:varchar(50)"`
	School       string `json:"school" gorm:"type:varchar(100)"`
	ThemeColor   string `json:"themeColor" gorm:"type:varchar(20);default:'dark'"`
	PhotoURL     string `json:"photoUrl"`
	Active       bool   `json:"active" gorm:"default:true"`
}

// Identity is the authenticated snapshot handed to handlers by the auth
// middleware. It is rebuilt from the verified token on every request so
// mutations never act as a stale user.
type Identity struct {
	UserID    uint   `json:"user_id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ClassName string `json:"className"`
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// CanPost reports whether the identity may create class-scoped content.
func (id Identity) CanPost() bool {
	return id.Role == RoleAdmin || id.Role == RoleDelegate
}

// CanEditClass reports whether the identity may edit an item targeted at the
// given class: admins always, delegates only within their own class.
func (id Identity) CanEditClass(className string) bool {
	if id.Role == RoleAdmin {
		return true
	}
	return id.Role == RoleDelegate && id.ClassName == className
}

// CanDelete is deliberately admin-only for shared content; delegates retract
// mistakes by editing, admins arbitrate removals.
func (id Identity) CanDelete() bool { return id.Role == RoleAdmin }

// VisibleClasses is a GORM scope restricting class-targeted rows to what the
// identity may see: everything for admins, otherwise the viewer's own class
// plus school-wide items.
func (id Identity) VisibleClasses(db *gorm.DB) *gorm.DB {
	if id.Role == RoleAdmin {
		return db
	}
	return db.Where("class_name IN ?", []string{id.ClassName, ClassAll})
}
