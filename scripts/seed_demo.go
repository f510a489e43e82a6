package main

import (
	"fmt"
	"os"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/config"
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a demo dataset for local development: a manager with a small
// delegated team, a couple of clients, and projects spread across the
// board. Run with: go run scripts/seed_demo.go [--wipe]
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(); err != nil {
		fmt.Printf("Failed to migrate: %v\n", err)
		os.Exit(1)
	}
	db := models.GetDB()

	if len(os.Args) > 1 && os.Args[1] == "--wipe" {
		fmt.Println(">>> Wiping demo tables...")
		for _, m := range []interface{}{
			&models.Assignment{}, &models.DelegationLink{}, &models.ClientDelegation{},
			&models.Project{}, &models.Client{},
		} {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
				fmt.Printf("Failed to wipe %T: %v\n", m, err)
				os.Exit(1)
			}
		}
	}

	users := map[string]string{
		"pm.dana":      models.RoleProjectManager,
		"dev.marco":    models.RoleDeveloper,
		"dev.yuki":     models.RoleDeveloper,
		"design.leila": models.RoleDesigner,
		"mkt.tom":      models.RoleMarketing,
	}
	ids := make(map[string]uint, len(users))
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	for username, role := range users {
		u := models.User{Username: username, Password: string(hash), Role: role, IsActive: true}
		if err := db.Where("username = ?", username).FirstOrCreate(&u).Error; err != nil {
			fmt.Printf("Failed to seed user %s: %v\n", username, err)
			os.Exit(1)
		}
		ids[username] = u.ID
		fmt.Printf("user %-14s id=%d role=%s\n", username, u.ID, role)
	}

	for _, member := range []string{"dev.marco", "dev.yuki", "design.leila"} {
		link := models.DelegationLink{
			ManagerID: ids["pm.dana"], MemberID: ids[member], AssignedAt: time.Now(),
		}
		if err := db.Where("member_id = ?", ids[member]).FirstOrCreate(&link).Error; err != nil {
			fmt.Printf("Failed to delegate %s: %v\n", member, err)
			os.Exit(1)
		}
	}

	client := models.Client{CompanyName: "Northwind Traders", ContactName: "E. Fuller", Country: "NL"}
	if err := db.Where("company_name = ?", client.CompanyName).FirstOrCreate(&client).Error; err != nil {
		fmt.Printf("Failed to seed client: %v\n", err)
		os.Exit(1)
	}
	db.Where("manager_id = ? AND client_id = ?", ids["pm.dana"], client.ID).
		FirstOrCreate(&models.ClientDelegation{ManagerID: ids["pm.dana"], ClientID: client.ID, AssignedAt: time.Now()})

	stages := []workflow.Status{
		workflow.JustStarted, workflow.ThirtyPercent,
		workflow.FiftyPercent, workflow.AlmostCompleted,
	}
	for i, st := range stages {
		p := models.Project{
			Purpose:  fmt.Sprintf("Demo project %d (%s)", i+1, st.Label()),
			Status:   st,
			ClientID: &client.ID,
		}
		if err := db.Where("purpose = ?", p.Purpose).FirstOrCreate(&p).Error; err != nil {
			fmt.Printf("Failed to seed project: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("project %-34q id=%d stage=%s\n", p.Purpose, p.ID, st)
	}

	fmt.Println("\n>>> Done. Log in as pm.dana / demo1234 (or the seeded admin).")
}
