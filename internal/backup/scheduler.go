// SPDX-License-Identifier: MIT
package backup

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"gorm.io/gorm"
)

// Scheduler runs snapshot-then-prune on a cron schedule.
type Scheduler struct {
	Manager *BackupManager
	DB      *gorm.DB
	Spec    string

	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.Mutex
	runs int
}

// NewScheduler creates a scheduler. spec accepts five or six fields
// (seconds optional) and descriptors such as @daily or @every 1h.
func NewScheduler(manager *BackupManager, db *gorm.DB, spec string) *Scheduler {
	return &Scheduler{
		Manager: manager,
		DB:      db,
		Spec:    spec,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		log: logging.For("backup"),
	}
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Spec, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("Scheduled backup failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.Spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.Spec).Msg("Backup scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow takes one snapshot and prunes old ones.
func (s *Scheduler) RunNow(ctx context.Context) (string, error) {
	path, err := s.Manager.CreateBackup(ctx, s.DB)
	if err != nil {
		return "", fmt.Errorf("backup creation failed: %w", err)
	}
	if _, err := s.Manager.Prune(); err != nil {
		return path, err
	}

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	return path, nil
}

// Runs reports how many backups completed.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
