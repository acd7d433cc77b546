package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const rosterCacheKey = "roster:usns"

type rosterStudentRepository interface {
	ListUSNs(ctx context.Context) ([]string, error)
}

// RosterService serves the admin-facing student roster. The roster is a pure
// read projection, so it may be cached; signups invalidate the entry. The
// dashboard aggregate is deliberately not routed through here.
type RosterService struct {
	repo   rosterStudentRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(repo rosterStudentRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ListUSNs returns every registered enrollment number. The boolean reports
// whether the response came from cache.
func (s *RosterService) ListUSNs(ctx context.Context) ([]string, bool, error) {
	var cached []string
	if hit, err := s.cache.Get(ctx, rosterCacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	usns, err := s.repo.ListUSNs(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, rosterCacheKey, usns, s.ttl); err != nil {
		s.logger.Warn("failed to cache roster", zap.Error(err))
	}
	return usns, false, nil
}

// InvalidateRoster drops the cached roster after a signup.
func (s *RosterService) InvalidateRoster(ctx context.Context) error {
	return s.cache.Invalidate(ctx, rosterCacheKey)
}
