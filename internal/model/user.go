package model

import (
	"time"
)

// Role is a user's role within their tenant.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanEdit reports whether the role may mutate records.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

// IsAdmin reports whether the role may mutate databases and fields.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User represents the user model stored in the database.
// The first user of a tenant is created as admin on signup.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	Username  string    `json:"username" gorm:"type:varchar(100)"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password  string    `json:"-" gorm:"type:varchar(255)"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'viewer'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
