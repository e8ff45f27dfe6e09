package models

import "gorm.io/gorm"

// Roles a user can hold. Admins may manage the meal catalog.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account holder. Password stores the bcrypt hash and is never
// serialised.
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Address  string `gorm:"size:500" json:"address"`
	Phone    string `gorm:"size:30" json:"phone"`
	Role     string `gorm:"size:50;default:user" json:"role"`
}

// IsAdmin reports whether the user may manage the catalog.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
