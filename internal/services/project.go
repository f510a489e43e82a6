package services

import (
	"errors"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"github.com/brightpath/opsconsole/backend/pkg/logger"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = response.NewNotFound("project not found")
	// ErrNoOpTransition marks a drop onto the project's current column.
	// It is filtered client-side, but the store rejects it too.
	ErrNoOpTransition = response.NewBadRequest("project is already in that status")
)

type ProjectService struct {
	db       *gorm.DB
	resolver *VisibilityResolver
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{
		db:       db,
		resolver: NewVisibilityResolver(db),
	}
}

type CreateProjectRequest struct {
	Purpose        string   `json:"purpose" binding:"required"`
	Cost           *float64 `json:"cost"`
	Currency       string   `json:"currency"`
	ClientID       *uint    `json:"client_id"`
	AssignedUserID *uint    `json:"assigned_user_id"`
}

type UpdateProjectRequest struct {
	Purpose        string   `json:"purpose"`
	Cost           *float64 `json:"cost"`
	Currency       string   `json:"currency"`
	ClientID       *uint    `json:"client_id"`
	AssignedUserID *uint    `json:"assigned_user_id"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BoardColumn is one workflow stage with its display attributes, used
// to render the board header independent of project data.
type BoardColumn struct {
	Status   workflow.Status `json:"status"`
	Label    string          `json:"label"`
	Progress int             `json:"progress"`
	Color    string          `json:"color"`
}

// Columns returns the board columns in workflow order.
func (s *ProjectService) Columns() []BoardColumn {
	stages := workflow.All()
	cols := make([]BoardColumn, 0, len(stages))
	for _, st := range stages {
		cols = append(cols, BoardColumn{
			Status:   st,
			Label:    st.Label(),
			Progress: st.Progress(),
			Color:    st.Color(),
		})
	}
	return cols
}

// List returns the projects visible to the operator.
func (s *ProjectService) List(op Operator) ([]models.Project, error) {
	return s.resolver.Resolve(op).VisibleProjects()
}

// GetByID returns a project if it is visible to the operator.
func (s *ProjectService) GetByID(op Operator, id uint) (*models.Project, error) {
	visible, err := s.resolver.Resolve(op).VisibleProjects()
	if err != nil {
		return nil, err
	}
	for i := range visible {
		if visible[i].ID == id {
			var project models.Project
			if err := s.db.Preload("Client").Preload("AssignedUser").
				Preload("Assignments").Preload("Assignments.User").
				First(&project, id).Error; err != nil {
				return nil, err
			}
			return &project, nil
		}
	}
	return nil, ErrProjectNotFound
}

// Create inserts a new project in the initial workflow stage.
func (s *ProjectService) Create(req *CreateProjectRequest, createdBy uint) (*models.Project, error) {
	project := models.Project{
		Purpose:        req.Purpose,
		Status:         workflow.Initial(),
		Cost:           req.Cost,
		Currency:       req.Currency,
		ClientID:       req.ClientID,
		AssignedUserID: req.AssignedUserID,
		CreatedBy:      createdBy,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// Update merges non-zero fields into the project. The project must be
// inside the operator's visibility scope; anything else reads as not
// found, so a manager cannot edit projects of clients never delegated
// to them.
func (s *ProjectService) Update(op Operator, id uint, req *UpdateProjectRequest) (*models.Project, error) {
	if _, err := s.GetByID(op, id); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Purpose != "" {
		updates["purpose"] = req.Purpose
	}
	if req.Cost != nil {
		updates["cost"] = req.Cost
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}
	if req.ClientID != nil {
		updates["client_id"] = req.ClientID
	}
	if req.AssignedUserID != nil {
		updates["assigned_user_id"] = req.AssignedUserID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &project, nil
}

// ChangeStatus moves a project to a new workflow stage. The operator
// must be allowed to move projects and the project must be visible to
// them; the transition must be legal (anything but a no-op).
func (s *ProjectService) ChangeStatus(op Operator, id uint, req *ChangeStatusRequest) (*models.Project, error) {
	target, err := workflow.Parse(req.Status)
	if err != nil {
		return nil, response.NewBadRequest(err.Error())
	}

	capability := s.resolver.Resolve(op)
	if !capability.CanMoveProjects() {
		return nil, response.NewForbidden("operator may not move projects")
	}

	project, err := s.GetByID(op, id)
	if err != nil {
		return nil, err
	}

	if project.Status == target {
		return nil, ErrNoOpTransition
	}
	if !workflow.CanTransition(project.Status, target) {
		return nil, response.NewBadRequest("illegal status transition")
	}

	previous := project.Status
	if err := s.db.Model(&models.Project{}).Where("id = ?", id).
		Update("status", target).Error; err != nil {
		return nil, err
	}
	project.Status = target

	logger.Info().
		Uint("project_id", id).
		Str("from", string(previous)).
		Str("to", string(target)).
		Uint("operator", op.ID).
		Msg("project status changed")

	GetSSEHub().Publish(BoardEvent{
		Type:      EventProjectStatusChanged,
		ProjectID: id,
		Status:    string(target),
		ActorID:   op.ID,
	})

	return project, nil
}

// Delete soft-deletes a project. Admin only, enforced at the route.
func (s *ProjectService) Delete(id uint) error {
	result := s.db.Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
