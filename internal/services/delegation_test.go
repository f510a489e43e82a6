package services

import (
	"errors"
	"testing"

	"github.com/brightpath/opsconsole/backend/internal/models"
)

func TestDelegationService_Link(t *testing.T) {
	db := newTestDB(t)
	svc := NewDelegationService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm := seedUser(t, db, "pm1", models.RoleProjectManager)
	dev := seedUser(t, db, "dev1", models.RoleDeveloper)

	link, err := svc.Link(&LinkRequest{ManagerID: pm.ID, MemberID: dev.ID}, admin.ID)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if link.ManagerID != pm.ID || link.MemberID != dev.ID {
		t.Errorf("link = (%d, %d), expected (%d, %d)",
			link.ManagerID, link.MemberID, pm.ID, dev.ID)
	}
	if link.AssignedBy != admin.ID {
		t.Errorf("AssignedBy = %d, expected %d", link.AssignedBy, admin.ID)
	}
}

func TestDelegationService_Link_OneManagerPerMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewDelegationService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm1 := seedUser(t, db, "pm1", models.RoleProjectManager)
	pm2 := seedUser(t, db, "pm2", models.RoleProjectManager)
	dev := seedUser(t, db, "dev1", models.RoleDeveloper)

	if _, err := svc.Link(&LinkRequest{ManagerID: pm1.ID, MemberID: dev.ID}, admin.ID); err != nil {
		t.Fatalf("first Link: %v", err)
	}

	// Re-linking the same pair succeeds without a second row
	if _, err := svc.Link(&LinkRequest{ManagerID: pm1.ID, MemberID: dev.ID}, admin.ID); err != nil {
		t.Errorf("same-pair Link = %v, expected no-op success", err)
	}
	var count int64
	db.Model(&models.DelegationLink{}).Where("member_id = ?", dev.ID).Count(&count)
	if count != 1 {
		t.Errorf("link rows = %d, expected 1", count)
	}

	// A different manager must unlink first
	_, err := svc.Link(&LinkRequest{ManagerID: pm2.ID, MemberID: dev.ID}, admin.ID)
	if !errors.Is(err, ErrAlreadyDelegated) {
		t.Errorf("conflicting Link = %v, expected ErrAlreadyDelegated", err)
	}
}

func TestDelegationService_Link_RoleChecks(t *testing.T) {
	db := newTestDB(t)
	svc := NewDelegationService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm := seedUser(t, db, "pm1", models.RoleProjectManager)
	dev := seedUser(t, db, "dev1", models.RoleDeveloper)

	// Contributors cannot hold a pool
	if _, err := svc.Link(&LinkRequest{ManagerID: dev.ID, MemberID: dev.ID}, admin.ID); err == nil {
		t.Error("expected error when manager is not a project manager")
	}

	// Admins and other managers cannot be placed inside a pool
	if _, err := svc.Link(&LinkRequest{ManagerID: pm.ID, MemberID: admin.ID}, admin.ID); err == nil {
		t.Error("expected error when member is an admin")
	}
	pm2 := seedUser(t, db, "pm2", models.RoleProjectManager)
	if _, err := svc.Link(&LinkRequest{ManagerID: pm.ID, MemberID: pm2.ID}, admin.ID); err == nil {
		t.Error("expected error when member is a project manager")
	}
}

func TestDelegationService_UnlinkThenRelink(t *testing.T) {
	db := newTestDB(t)
	svc := NewDelegationService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm1 := seedUser(t, db, "pm1", models.RoleProjectManager)
	pm2 := seedUser(t, db, "pm2", models.RoleProjectManager)
	dev := seedUser(t, db, "dev1", models.RoleDeveloper)

	if _, err := svc.Link(&LinkRequest{ManagerID: pm1.ID, MemberID: dev.ID}, admin.ID); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := svc.Unlink(dev.ID); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if err := svc.Unlink(dev.ID); !errors.Is(err, ErrNotDelegated) {
		t.Errorf("second Unlink = %v, expected ErrNotDelegated", err)
	}

	// After unlinking, the member can join another pool
	if _, err := svc.Link(&LinkRequest{ManagerID: pm2.ID, MemberID: dev.ID}, admin.ID); err != nil {
		t.Errorf("relink = %v, expected success", err)
	}
}

func TestDelegationService_MembersOf(t *testing.T) {
	db := newTestDB(t)
	svc := NewDelegationService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm := seedUser(t, db, "pm1", models.RoleProjectManager)
	dev := seedUser(t, db, "dev1", models.RoleDeveloper)
	des := seedUser(t, db, "des1", models.RoleDesigner)
	outsider := seedUser(t, db, "dev2", models.RoleDeveloper)

	for _, m := range []*models.User{dev, des} {
		if _, err := svc.Link(&LinkRequest{ManagerID: pm.ID, MemberID: m.ID}, admin.ID); err != nil {
			t.Fatalf("Link %s: %v", m.Username, err)
		}
	}

	members, err := svc.MembersOf(pm.ID)
	if err != nil {
		t.Fatalf("MembersOf: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, expected 2", len(members))
	}
	for _, m := range members {
		if m.ID == outsider.ID {
			t.Error("MembersOf should not include unlinked users")
		}
	}
}

func TestDelegationService_ManagerOf(t *testing.T) {
	db := newTestDB(t)
	svc := NewDelegationService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)
	pm := seedUser(t, db, "pm1", models.RoleProjectManager)
	dev := seedUser(t, db, "dev1", models.RoleDeveloper)

	if _, err := svc.ManagerOf(dev.ID); !errors.Is(err, ErrNotDelegated) {
		t.Error("ManagerOf before linking should return ErrNotDelegated")
	}

	if _, err := svc.Link(&LinkRequest{ManagerID: pm.ID, MemberID: dev.ID}, admin.ID); err != nil {
		t.Fatalf("Link: %v", err)
	}

	manager, err := svc.ManagerOf(dev.ID)
	if err != nil {
		t.Fatalf("ManagerOf: %v", err)
	}
	if manager == nil || manager.ID != pm.ID {
		t.Errorf("ManagerOf = %v, expected manager %d", manager, pm.ID)
	}
}
