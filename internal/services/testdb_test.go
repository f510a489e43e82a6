package services

import (
	"testing"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.Assignment{},
		&models.DelegationLink{},
		&models.ClientDelegation{},
		&models.RefreshToken{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: "x",
		Name:     username,
		Role:     role,
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, purpose string, createdBy uint) *models.Project {
	t.Helper()
	project := &models.Project{
		Purpose:   purpose,
		Status:    workflow.Initial(),
		CreatedBy: createdBy,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project %s: %v", purpose, err)
	}
	return project
}
