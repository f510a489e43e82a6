package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDeveloper      = "developer"
	RoleDesigner       = "designer"
	RoleMarketing      = "marketing"
)

// User represents an operator or assignable team member.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Email     string         `gorm:"size:255" json:"email"`
	Name      string         `gorm:"size:200" json:"name"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	Role      string         `gorm:"size:50;default:developer" json:"role"` // admin, project_manager, developer, designer, marketing
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// IsTeamMember reports whether the user can be assigned to projects.
func (u *User) IsTeamMember() bool {
	return u.Role != RoleAdmin && u.Role != RoleProjectManager
}
