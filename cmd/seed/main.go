package main

import (
	"fmt"
	"strings"

	"bukukas/internal/config"
	"bukukas/internal/database"
	"bukukas/internal/logger"
	"bukukas/internal/models"
	"bukukas/internal/services"
	"bukukas/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
	logger.Sync()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	if cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set")
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	users := services.NewUserService(db, storage.NewLocalStore(cfg.UploadDir), cfg.MaxUploadBytes)
	groups := services.NewGroupService(db)

	admin, err := seed(users, groups, services.UserInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("seed completed", "admin_id", admin.ID, "admin_email", admin.Email)
	return nil
}

// seed creates the administrator and the Simpaskor group unless they
// already exist. Running it twice changes nothing.
func seed(users services.UserServicer, groups services.GroupServicer, admin services.UserInput) (*models.User, error) {
	role := models.RoleAdmin
	existing, err := users.ListUsers(&role)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}

	var user *models.User
	for i := range existing {
		if strings.EqualFold(existing[i].Email, admin.Email) {
			user = &existing[i]
			break
		}
	}
	if user == nil {
		if user, err = users.CreateUser(admin, nil); err != nil {
			return nil, fmt.Errorf("creating admin %s: %w", admin.Email, err)
		}
		logger.Get().Infow("created admin", "email", user.Email)
	}

	if _, err := groups.EnsureSimpaskorGroup(user.ID); err != nil {
		return nil, fmt.Errorf("ensuring %s group: %w", models.SimpaskorGroupName, err)
	}
	return user, nil
}
