package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a customer company the agency does work for.
type Client struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyName string         `gorm:"size:200;not null" json:"company_name"`
	ContactName string         `gorm:"size:200" json:"contact_name"`
	Email       string         `gorm:"size:255" json:"email"`
	Phone       string         `gorm:"size:50" json:"phone"`
	Country     string         `gorm:"size:100" json:"country"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string { return "clients" }
