package services

import (
	"errors"
	"net/http"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/utils"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = response.NewNotFound("user not found")
	ErrUsernameTaken     = response.NewConflict("username already exists")
	ErrLastAdmin         = &response.AppError{HTTPStatus: http.StatusConflict, Message: "cannot remove the last administrator"}
	ErrInvalidRole       = response.NewBadRequest("invalid role")
	ErrLDAPUserImmutable = response.NewBadRequest("password is managed by the directory server")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

func validRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleProjectManager, models.RoleDeveloper,
		models.RoleDesigner, models.RoleMarketing:
		return true
	}
	return false
}

func (s *UserService) Create(req *CreateUserRequest) (*models.User, error) {
	if req.Role == "" {
		req.Role = models.RoleDeveloper
	}
	if !validRole(req.Role) {
		return nil, ErrInvalidRole
	}

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Password: hash,
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		AuthType: "local",
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(id uint, req *UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		if user.Role == models.RoleAdmin && *req.Role != models.RoleAdmin {
			if err := s.ensureNotLastAdmin(user.ID); err != nil {
				return nil, err
			}
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		if !*req.IsActive && user.Role == models.RoleAdmin {
			if err := s.ensureNotLastAdmin(user.ID); err != nil {
				return nil, err
			}
		}
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if user.AuthType != "local" {
			return nil, ErrLDAPUserImmutable
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (s *UserService) Delete(id uint) error {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Role == models.RoleAdmin {
		if err := s.ensureNotLastAdmin(user.ID); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ? OR manager_id = ?", id, id).
			Delete(&models.DelegationLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("manager_id = ?", id).
			Delete(&models.ClientDelegation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).
			Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// GetByID returns one user, provided the operator's capability can see
// them. A user outside the operator's scope reads as not found.
func (s *UserService) GetByID(cap Capability, id uint) (*models.User, error) {
	visible, err := cap.VisibleUsers()
	if err != nil {
		return nil, err
	}
	for i := range visible {
		if visible[i].ID == id {
			return &visible[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// List returns the users the operator is allowed to see.
func (s *UserService) List(cap Capability) ([]models.User, error) {
	return cap.VisibleUsers()
}

func (s *UserService) ensureNotLastAdmin(excludeID uint) error {
	var count int64
	s.db.Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id <> ?", models.RoleAdmin, true, excludeID).
		Count(&count)
	if count == 0 {
		return ErrLastAdmin
	}
	return nil
}
