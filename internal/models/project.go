package models

import (
	"time"

	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"gorm.io/gorm"
)

// Project represents a unit of client work tracked on the board.
type Project struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	Purpose string          `gorm:"size:500;not null" json:"purpose"` // free-text type/purpose of the work
	Status  workflow.Status `gorm:"size:50;not null;default:JUST_STARTED" json:"status"`

	Cost     *float64 `json:"cost"`
	Currency string   `gorm:"size:10" json:"currency"`

	ClientID *uint   `gorm:"index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// AssignedUserID is the legacy single-assignee field, superseded by
	// the assignments table but still read for older projects.
	AssignedUserID *uint `gorm:"index" json:"assigned_user_id"`
	AssignedUser   *User `gorm:"foreignKey:AssignedUserID" json:"assigned_user,omitempty"`

	Assignments []Assignment `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`

	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
