package services

import (
	"testing"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"gorm.io/gorm"
)

func seedClient(t *testing.T, db *gorm.DB, company string) *models.Client {
	t.Helper()
	client := &models.Client{CompanyName: company}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("seed client %s: %v", company, err)
	}
	return client
}

func TestClientService_RedelegateAfterRevoke(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm1 := seedUser(t, db, "pm1", models.RoleProjectManager)
	pm2 := seedUser(t, db, "pm2", models.RoleProjectManager)
	client := seedClient(t, db, "Northwind Traders")

	if err := svc.DelegateClient(pm1.ID, client.ID, admin.ID); err != nil {
		t.Fatalf("DelegateClient: %v", err)
	}
	// Delegating the same pair again is a no-op success
	if err := svc.DelegateClient(pm1.ID, client.ID, admin.ID); err != nil {
		t.Errorf("repeat DelegateClient = %v, expected success", err)
	}

	if err := svc.RevokeClientDelegation(pm1.ID, client.ID); err != nil {
		t.Fatalf("RevokeClientDelegation: %v", err)
	}

	// Revocation removes the row outright, so both the old and a new
	// manager can be delegated afterwards.
	if err := svc.DelegateClient(pm2.ID, client.ID, admin.ID); err != nil {
		t.Errorf("delegate to another manager = %v, expected success", err)
	}
	if err := svc.DelegateClient(pm1.ID, client.ID, admin.ID); err != nil {
		t.Errorf("re-delegate original manager = %v, expected success", err)
	}

	var count int64
	db.Model(&models.ClientDelegation{}).Where("client_id = ?", client.ID).Count(&count)
	if count != 2 {
		t.Errorf("got %d delegation rows, expected 2", count)
	}
}
