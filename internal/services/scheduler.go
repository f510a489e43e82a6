package services

import (
	"fmt"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/models"
	"github.com/brightpath/opsconsole/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler runs the nightly maintenance jobs: system-log retention
// cleanup and the stale-assignment sweep.
type Scheduler struct {
	db    *gorm.DB
	cron  *cron.Cron
	queue NotificationQueue
}

func NewScheduler(db *gorm.DB, queue NotificationQueue) *Scheduler {
	return &Scheduler{
		db:    db,
		cron:  cron.New(),
		queue: queue,
	}
}

// Start registers the jobs and starts the cron loop. Cleanup also runs
// once immediately so a long-stopped instance catches up on startup.
func (s *Scheduler) Start() {
	logService := NewSystemLogService(s.db)
	logService.runCleanup()

	if _, err := s.cron.AddFunc("15 3 * * *", logService.runCleanup); err != nil {
		logger.Error().Err(err).Msg("[Scheduler] failed to register log cleanup job")
	}
	if _, err := s.cron.AddFunc("45 3 * * *", s.sweepStaleAssignments); err != nil {
		logger.Error().Err(err).Msg("[Scheduler] failed to register stale assignment sweep")
	}

	s.cron.Start()
	logger.Info().Msg("[Scheduler] maintenance jobs scheduled")
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// sweepStaleAssignments flags active assignments with no update for
// longer than the configured threshold and notifies the operator who
// created them.
func (s *Scheduler) sweepStaleAssignments() {
	days := NewSystemConfigService(s.db).GetInt("stale_assignment_days", 45)
	if days <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	var stale []models.Assignment
	err := s.db.Where("status = ? AND updated_at < ?", models.AssignmentActive, cutoff).
		Preload("User").
		Find(&stale).Error
	if err != nil {
		logger.Error().Err(err).Msg("[Scheduler] stale assignment sweep failed")
		return
	}

	if len(stale) == 0 {
		return
	}

	logger.Warnf("[Scheduler] %d assignments inactive for more than %d days", len(stale), days)

	for _, a := range stale {
		name := ""
		if a.User != nil {
			name = a.User.Name
		}
		s.queue.Enqueue(&NotificationTask{
			Kind:      NotifyStaleAssignment,
			ProjectID: a.ProjectID,
			UserID:    a.UserID,
			TargetID:  a.AssignedBy,
			Message:   fmt.Sprintf("assignment for %s has had no activity for %d days", name, days),
		})
	}
}
