package jobs

import (
	"context"
	"fmt"
	"time"

	"stay-nest/internal/data/repository"
	"stay-nest/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultCleanupSpec = "@every 1h"
	jobTimeout         = time.Minute
)

// Scheduler runs periodic housekeeping against the database.
type Scheduler struct {
	cron *cron.Cron
	repo *repository.Repository
	log  *zap.Logger
}

func NewScheduler(repo *repository.Repository, config utils.JobsConfig, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{log}))),
		repo: repo,
		log:  log.With(zap.String("component", "jobs")),
	}

	spec := config.SessionCleanupSpec
	if spec == "" {
		spec = defaultCleanupSpec
	}

	if _, err := s.cron.AddFunc(spec, s.runCleanup); err != nil {
		return nil, fmt.Errorf("schedule session cleanup %q: %w", spec, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info("Job scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for running jobs to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Job scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Job scheduler stop timed out")
	}
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := CleanupAuth(ctx, s.repo, s.log); err != nil {
		s.log.Error("Auth cleanup failed", zap.Error(err))
	}
}

// CleanupAuth deletes expired or revoked sessions and expired or used reset
// codes.
func CleanupAuth(ctx context.Context, repo *repository.Repository, log *zap.Logger) error {
	sessions, err := repo.Session.CleanExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("clean sessions: %w", err)
	}

	otps, err := repo.OTP.CleanExpired(ctx)
	if err != nil {
		return fmt.Errorf("clean otps: %w", err)
	}

	log.Info("Auth cleanup finished",
		zap.Int64("sessions_removed", sessions),
		zap.Int64("otps_removed", otps),
	)
	return nil
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
