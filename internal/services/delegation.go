package services

import (
	"errors"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"gorm.io/gorm"
)

// Delegation directory errors
var (
	ErrAlreadyDelegated = response.NewConflict("team member already has a manager, unlink first")
	ErrNotDelegated     = response.NewNotFound("team member has no manager")
)

// DelegationService owns the admin-controlled manager -> member graph
// that scopes what each project manager can see and assign.
type DelegationService struct {
	db *gorm.DB
}

func NewDelegationService(db *gorm.DB) *DelegationService {
	return &DelegationService{db: db}
}

type LinkRequest struct {
	ManagerID uint   `json:"manager_id" binding:"required"`
	MemberID  uint   `json:"member_id" binding:"required"`
	Notes     string `json:"notes"`
}

// Link places a team member into a manager's pool. A member has at most
// one active manager; linking a member who already has a different
// manager is a conflict. Re-linking the same pair is a no-op success.
func (s *DelegationService) Link(req *LinkRequest, assignedBy uint) (*models.DelegationLink, error) {
	var manager models.User
	if err := s.db.First(&manager, req.ManagerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("manager not found")
		}
		return nil, err
	}
	if manager.Role != models.RoleProjectManager {
		return nil, response.NewBadRequest("target manager is not a project manager")
	}

	var member models.User
	if err := s.db.First(&member, req.MemberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("team member not found")
		}
		return nil, err
	}
	if !member.IsTeamMember() {
		return nil, response.NewBadRequest("user cannot be placed in a managed pool")
	}

	var existing models.DelegationLink
	err := s.db.Where("member_id = ?", req.MemberID).First(&existing).Error
	if err == nil {
		if existing.ManagerID == req.ManagerID {
			// Same pair, nothing to do.
			s.db.Preload("Member").Preload("Manager").First(&existing, existing.ID)
			return &existing, nil
		}
		return nil, ErrAlreadyDelegated
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	link := models.DelegationLink{
		ManagerID:  req.ManagerID,
		MemberID:   req.MemberID,
		Notes:      req.Notes,
		AssignedBy: assignedBy,
		AssignedAt: time.Now(),
	}
	if err := s.db.Create(&link).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Member").Preload("Manager").First(&link, link.ID)
	return &link, nil
}

// Unlink removes the member's current link.
func (s *DelegationService) Unlink(memberID uint) error {
	result := s.db.Where("member_id = ?", memberID).Delete(&models.DelegationLink{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotDelegated
	}
	return nil
}

// MembersOf returns every member currently linked to the manager,
// joined with their profile.
func (s *DelegationService) MembersOf(managerID uint) ([]models.User, error) {
	var links []models.DelegationLink
	if err := s.db.Where("manager_id = ?", managerID).
		Preload("Member").
		Find(&links).Error; err != nil {
		return nil, err
	}

	members := make([]models.User, 0, len(links))
	for _, link := range links {
		if link.Member != nil {
			members = append(members, *link.Member)
		}
	}
	return members, nil
}

// ManagerOf returns the member's current manager, or ErrNotDelegated.
func (s *DelegationService) ManagerOf(memberID uint) (*models.User, error) {
	var link models.DelegationLink
	if err := s.db.Where("member_id = ?", memberID).Preload("Manager").First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotDelegated
		}
		return nil, err
	}
	return link.Manager, nil
}

// Links returns the full delegation graph for the admin console.
func (s *DelegationService) Links() ([]models.DelegationLink, error) {
	var links []models.DelegationLink
	if err := s.db.Preload("Member").Preload("Manager").
		Order("assigned_at ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
