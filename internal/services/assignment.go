package services

import (
	"errors"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"gorm.io/gorm"
)

// Assignment ledger errors
var (
	ErrDuplicateAssignment = response.NewConflict("user is already assigned to this project")
	ErrAssignmentNotFound  = response.NewNotFound("assignment not found")
	ErrStaleWrite          = response.NewConflict("assignment was modified by someone else, please reload and retry")
)

// AssignmentService owns the many-to-many ledger between users and
// projects. Each row carries its own sub-state, independent of the
// project's workflow stage.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

type CreateAssignmentRequest struct {
	UserID          uint     `json:"user_id" binding:"required"`
	Role            string   `json:"role"`
	WorkDescription string   `json:"work_description"`
	Priority        string   `json:"priority"`
	HoursEstimated  *float64 `json:"hours_estimated"`
}

type UpdateAssignmentRequest struct {
	Role            *string  `json:"role"`
	WorkDescription *string  `json:"work_description"`
	Priority        *string  `json:"priority"`
	Status          *string  `json:"status"`
	HoursEstimated  *float64 `json:"hours_estimated"`
	HoursWorked     *float64 `json:"hours_worked"`
	ProgressNotes   *string  `json:"progress_notes"`
	// Revision is the row revision the caller read. Updates carrying a
	// stale revision are rejected so concurrent edits cannot silently
	// overwrite each other.
	Revision uint `json:"revision" binding:"required"`
}

// Create inserts a new ledger row for (projectID, userID). A second
// active row for the same pair is a conflict, never a silent update.
func (s *AssignmentService) Create(projectID uint, req *CreateAssignmentRequest, assignedBy uint) (*models.Assignment, error) {
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(req.Priority) {
		return nil, response.NewBadRequest("invalid priority: " + req.Priority)
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	var existing models.Assignment
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, req.UserID).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateAssignment
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	assignment := models.Assignment{
		ProjectID:       projectID,
		UserID:          req.UserID,
		Role:            req.Role,
		WorkDescription: req.WorkDescription,
		Priority:        req.Priority,
		Status:          models.AssignmentActive,
		HoursEstimated:  req.HoursEstimated,
		Revision:        1,
		AssignedBy:      assignedBy,
		AssignedAt:      time.Now(),
	}

	if err := s.db.Create(&assignment).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").First(&assignment, assignment.ID)
	return &assignment, nil
}

// Update merges the provided fields into the existing (projectID,
// userID) row. Setting status to COMPLETED stamps completed_at.
func (s *AssignmentService) Update(projectID, userID uint, req *UpdateAssignmentRequest) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if req.Revision != assignment.Revision {
		return nil, ErrStaleWrite
	}

	updates := make(map[string]interface{})

	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.WorkDescription != nil {
		updates["work_description"] = *req.WorkDescription
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			return nil, response.NewBadRequest("invalid priority: " + *req.Priority)
		}
		updates["priority"] = *req.Priority
	}
	if req.Status != nil {
		if !models.ValidAssignmentStatus(*req.Status) {
			return nil, response.NewBadRequest("invalid assignment status: " + *req.Status)
		}
		updates["status"] = *req.Status
		if *req.Status == models.AssignmentCompleted && assignment.CompletedAt == nil {
			now := time.Now()
			updates["completed_at"] = &now
		}
	}
	if req.HoursEstimated != nil {
		updates["hours_estimated"] = req.HoursEstimated
	}
	if req.HoursWorked != nil {
		updates["hours_worked"] = req.HoursWorked
	}
	if req.ProgressNotes != nil {
		updates["progress_notes"] = *req.ProgressNotes
	}

	updates["revision"] = assignment.Revision + 1

	// The revision check in the WHERE clause closes the window between
	// the read above and this write.
	result := s.db.Model(&models.Assignment{}).
		Where("id = ? AND revision = ?", assignment.ID, assignment.Revision).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrStaleWrite
	}

	s.db.Preload("User").First(&assignment, assignment.ID)
	return &assignment, nil
}

// Remove deletes the (projectID, userID) row. Removal is not
// idempotent: removing an absent row fails rather than succeeding
// silently.
func (s *AssignmentService) Remove(projectID, userID uint) error {
	result := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// ListByProject returns every ledger row for the project, any status,
// joined with the assignee's public profile.
func (s *AssignmentService) ListByProject(projectID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByUser returns every ledger row where the user is the assignee,
// joined with the project.
func (s *AssignmentService) ListByUser(userID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := s.db.Where("user_id = ?", userID).
		Preload("Project").
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
