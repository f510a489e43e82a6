package services

import (
	"errors"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/pkg/response"
	"gorm.io/gorm"
)

var ErrClientNotFound = response.NewNotFound("client not found")

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

type CreateClientRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	Notes       string `json:"notes"`
}

type UpdateClientRequest struct {
	CompanyName *string `json:"company_name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Country     *string `json:"country"`
	Notes       *string `json:"notes"`
}

func (s *ClientService) Create(req *CreateClientRequest, createdBy uint) (*models.Client, error) {
	client := models.Client{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Country:     req.Country,
		Notes:       req.Notes,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) Update(cap Capability, id uint, req *UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetByID(cap, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(client).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return client, nil
}

func (s *ClientService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Projects keep their rows but lose the client link
		if err := tx.Model(&models.Project{}).
			Where("client_id = ?", id).
			Update("client_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).
			Delete(&models.ClientDelegation{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Client{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrClientNotFound
		}
		return nil
	})
}

func (s *ClientService) GetByID(cap Capability, id uint) (*models.Client, error) {
	clients, err := cap.VisibleClients()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, ErrClientNotFound
}

func (s *ClientService) List(cap Capability) ([]models.Client, error) {
	return cap.VisibleClients()
}

// DelegateClient grants a project manager responsibility for a client.
func (s *ClientService) DelegateClient(managerID, clientID, assignedBy uint) error {
	var manager models.User
	if err := s.db.First(&manager, managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if manager.Role != models.RoleProjectManager {
		return response.NewBadRequest("delegate must have the project_manager role")
	}

	var count int64
	s.db.Model(&models.Client{}).Where("id = ?", clientID).Count(&count)
	if count == 0 {
		return ErrClientNotFound
	}

	var existing models.ClientDelegation
	err := s.db.Where("manager_id = ? AND client_id = ?", managerID, clientID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	link := models.ClientDelegation{
		ManagerID:  managerID,
		ClientID:   clientID,
		AssignedBy: assignedBy,
		AssignedAt: time.Now(),
	}
	return s.db.Create(&link).Error
}

func (s *ClientService) RevokeClientDelegation(managerID, clientID uint) error {
	result := s.db.Where("manager_id = ? AND client_id = ?", managerID, clientID).
		Delete(&models.ClientDelegation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("client delegation not found")
	}
	return nil
}
