package main

import (
	"github.com/brightpath/opsconsole/backend/internal/config"
	"github.com/brightpath/opsconsole/backend/internal/handlers"
	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/internal/services"
	"github.com/brightpath/opsconsole/backend/internal/utils"
	"github.com/brightpath/opsconsole/backend/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	cfg         *config.Config
	queue       services.NotificationQueue
	scheduler   *services.Scheduler
	authHandler *handlers.AuthHandler
}

// bootstrap initializes the database, seed data, queue, and schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitSystemLogger(models.GetDB())

	// Notification queue: asynq over Redis when enabled, log-only otherwise
	queue := services.InitNotificationQueue(cfg)

	scheduler := services.NewScheduler(models.GetDB(), queue)
	scheduler.Start()

	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:         cfg,
		queue:       queue,
		scheduler:   scheduler,
		authHandler: authHandler,
	}
}

// shutdown stops the schedulers and closes the queue.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	if s.queue != nil {
		s.queue.Close()
	}
	logger.Info().Msg("schedulers stopped")
}
