package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/service"
)

const jobTimeout = 2 * time.Minute

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	tasks    service.TaskService
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(tasks service.TaskService, userRepo repository.UserRepository) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		tasks:    tasks,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler. overdueSpec is the cron
// expression for the overdue task check.
func (s *Scheduler) Start(overdueSpec string) error {
	if _, err := s.cron.AddFunc(overdueSpec, func() {
		log.Println("[Cron] Running overdue task check...")
		s.CheckOverdueTasks()
	}); err != nil {
		return fmt.Errorf("invalid overdue check spec %q: %w", overdueSpec, err)
	}

	// Purge expired refresh tokens - Run every hour
	if _, err := s.cron.AddFunc("@hourly", func() {
		log.Println("[Cron] Running refresh token cleanup...")
		s.PurgeExpiredRefreshTokens()
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[Cron] Scheduler stopped")
}

// CheckOverdueTasks publishes overdue events to the boards of late tasks.
func (s *Scheduler) CheckOverdueTasks() int {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	count, err := s.tasks.NotifyOverdue(ctx, s.now())
	if err != nil {
		log.Printf("[Cron] Error checking overdue tasks: %v", err)
		return 0
	}
	log.Printf("[Cron] Overdue check complete: %d tasks", count)
	return count
}

func (s *Scheduler) PurgeExpiredRefreshTokens() int {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.userRepo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		log.Printf("[Cron] Error purging refresh tokens: %v", err)
		return 0
	}
	if removed > 0 {
		log.Printf("[Cron] Removed %d expired refresh tokens", removed)
	}
	return removed
}
