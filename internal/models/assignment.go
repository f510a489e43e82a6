package models

import "time"

// Assignment priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Assignment statuses
const (
	AssignmentActive    = "ACTIVE"
	AssignmentPaused    = "PAUSED"
	AssignmentCompleted = "COMPLETED"
	AssignmentCancelled = "CANCELLED"
)

// ValidPriority reports whether p is a defined assignment priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidAssignmentStatus reports whether s is a defined assignment status.
func ValidAssignmentStatus(s string) bool {
	switch s {
	case AssignmentActive, AssignmentPaused, AssignmentCompleted, AssignmentCancelled:
		return true
	}
	return false
}

// Assignment is one row per (project, user) pairing with its own
// sub-state, independent of the project's workflow stage. At most one
// row may exist per pair.
type Assignment struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProjectID uint     `gorm:"uniqueIndex:idx_assignment_project_user;not null" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint     `gorm:"uniqueIndex:idx_assignment_project_user;not null" json:"user_id"`
	User      *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Role            string `gorm:"size:100" json:"role"` // free-text role label on this project
	WorkDescription string `gorm:"type:text" json:"work_description"`
	Priority        string `gorm:"size:20;default:MEDIUM" json:"priority"` // LOW, MEDIUM, HIGH, URGENT
	Status          string `gorm:"size:20;default:ACTIVE" json:"status"`   // ACTIVE, PAUSED, COMPLETED, CANCELLED

	HoursEstimated *float64 `json:"hours_estimated"`
	HoursWorked    *float64 `json:"hours_worked"`
	ProgressNotes  string   `gorm:"type:text" json:"progress_notes"`

	// Revision guards against lost updates: writes must present the
	// revision they read and the store rejects stale ones.
	Revision uint `gorm:"default:1" json:"revision"`

	AssignedBy  uint       `json:"assigned_by"`
	AssignedAt  time.Time  `json:"assigned_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Assignment) TableName() string { return "assignments" }
