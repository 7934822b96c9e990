package web

import (
	"context"
	"fmt"
	"time"

	"persona-agent/config"
	"persona-agent/session"

	"go.uber.org/zap"
)

// CleanupService removes sessions that have been idle too long.
type CleanupService struct {
	store  session.Store
	logger *zap.Logger
}

// NewCleanupService creates a new cleanup service instance
func NewCleanupService(store session.Store, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		store:  store,
		logger: logger,
	}
}

// CleanupStaleSessions deletes sessions inactive for longer than maxAge and
// returns how many were removed.
func (cs *CleanupService) CleanupStaleSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoffTime := time.Now().Add(-maxAge)

	cs.logger.Debug("Starting stale session cleanup",
		zap.Time("cutoff_time", cutoffTime),
		zap.Duration("max_age", maxAge))

	removed, err := cs.store.PurgeStale(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale sessions: %w", err)
	}

	if removed > 0 {
		cs.logger.Info("Stale session cleanup completed", zap.Int("sessions_deleted", removed))
	}
	return removed, nil
}

// StartSessionCleanup runs CleanupStaleSessions every CleanupInterval until
// ctx is cancelled.
func StartSessionCleanup(ctx context.Context, cfg *config.Config, cs *CleanupService, logger *zap.Logger) {
	if !cfg.CleanupEnabled || cfg.CleanupInterval <= 0 {
		logger.Info("Session cleanup disabled")
		return
	}

	logger.Info("Session cleanup scheduled",
		zap.Duration("interval", cfg.CleanupInterval),
		zap.Duration("retention", cfg.SessionRetentionAge))

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := cs.CleanupStaleSessions(ctx, cfg.SessionRetentionAge); err != nil {
				logger.Error("Session cleanup failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
