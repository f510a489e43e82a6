package services

import (
	"errors"
	"testing"

	"github.com/brightpath/opsconsole/backend/internal/config"
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/utils"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	return NewAuthService(newTestDB(t),
		&config.LDAPConfig{Enabled: false},
		&config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24})
}

func seedLocalUser(t *testing.T, svc *AuthService, username, password, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Password: hash,
		Name:     username,
		Role:     role,
		AuthType: "local",
		IsActive: true,
	}
	if err := svc.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	svc := newTestAuthService(t)
	seedLocalUser(t, svc, "alice", "secret123", models.RoleDeveloper)

	result, err := svc.Login(&LoginRequest{Username: "alice", Password: "secret123"}, "127.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("access token should not be empty")
	}
	if result.RefreshToken == "" {
		t.Error("refresh token should not be empty")
	}
	if result.User.LastLogin == nil {
		t.Error("LastLogin should be stamped")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("claims.Username = %q, expected alice", claims.Username)
	}
	if claims.Role != models.RoleDeveloper {
		t.Errorf("claims.Role = %q, expected developer", claims.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newTestAuthService(t)
	seedLocalUser(t, svc, "alice", "secret123", models.RoleDeveloper)

	if _, err := svc.Login(&LoginRequest{Username: "alice", Password: "wrong"}, "", ""); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := svc.Login(&LoginRequest{Username: "nobody", Password: "x"}, "", ""); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestAuthService_Login_DisabledUser(t *testing.T) {
	svc := newTestAuthService(t)
	user := seedLocalUser(t, svc, "alice", "secret123", models.RoleDeveloper)
	svc.db.Model(user).Update("is_active", false)

	if _, err := svc.Login(&LoginRequest{Username: "alice", Password: "secret123"}, "", ""); err == nil {
		t.Error("expected error for disabled user")
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc := newTestAuthService(t)
	seedLocalUser(t, svc, "alice", "secret123", models.RoleDeveloper)

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "secret123"}, "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh should rotate the token")
	}

	// The old token is revoked and cannot be replayed
	if _, err := svc.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("expected error when replaying a rotated refresh token")
	}

	// The new token works
	if _, err := svc.Refresh(refreshed.RefreshToken, "", ""); err != nil {
		t.Errorf("Refresh with rotated token: %v", err)
	}
}

func TestAuthService_RevokeRefreshToken(t *testing.T) {
	svc := newTestAuthService(t)
	seedLocalUser(t, svc, "alice", "secret123", models.RoleDeveloper)

	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "secret123"}, "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.RevokeRefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken: %v", err)
	}
	if _, err := svc.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("expected error after revocation")
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc := newTestAuthService(t)
	user := seedLocalUser(t, svc, "alice", "secret123", models.RoleDeveloper)

	if err := svc.ChangePassword(user.ID, "wrong", "newpass123"); err == nil {
		t.Error("expected error for wrong current password")
	}

	if err := svc.ChangePassword(user.ID, "secret123", "newpass123"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Username: "alice", Password: "newpass123"}, "", ""); err != nil {
		t.Errorf("Login with new password: %v", err)
	}
}

func TestAuthService_CreateAdminIfNotExists(t *testing.T) {
	svc := newTestAuthService(t)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists: %v", err)
	}
	// Idempotent
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second CreateAdminIfNotExists: %v", err)
	}

	var count int64
	svc.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("admin count = %d, expected 1", count)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	token, hash, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("generateRefreshToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, expected 64 hex chars", len(token))
	}
	if hash != hashRefreshToken(token) {
		t.Error("returned hash should match hashRefreshToken(token)")
	}

	token2, _, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("generateRefreshToken: %v", err)
	}
	if token == token2 {
		t.Error("tokens should be unique")
	}
}

func TestUserService_LastAdminGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	admin := seedUser(t, db, "admin", models.RoleAdmin)

	if err := svc.Delete(admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("deleting last admin = %v, expected ErrLastAdmin", err)
	}

	demoted := models.RoleDeveloper
	if _, err := svc.Update(admin.ID, &UpdateUserRequest{Role: &demoted}); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("demoting last admin = %v, expected ErrLastAdmin", err)
	}

	seedUser(t, db, "admin2", models.RoleAdmin)
	if err := svc.Delete(admin.ID); err != nil {
		t.Errorf("deleting admin with another present = %v, expected success", err)
	}
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.Create(&CreateUserRequest{Username: "alice", Password: "secret123"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(&CreateUserRequest{Username: "alice", Password: "other456"}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate Create = %v, expected ErrUsernameTaken", err)
	}
}
