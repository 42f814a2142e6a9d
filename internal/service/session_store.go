package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pdf-quiz/internal/cache"
	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/logger"

	"go.uber.org/zap"
)

// SessionStore keeps one domain.Practice per session id.
type SessionStore interface {
	// Load returns the stored practice, or a fresh one at the upload step when
	// the session is unknown or expired.
	Load(ctx context.Context, sessionID string) (*domain.Practice, error)
	Save(ctx context.Context, sessionID string, practice *domain.Practice) error
	Delete(ctx context.Context, sessionID string) error
}

// cacheSessionStore implements SessionStore on top of a domain.Cache.
type cacheSessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewSessionStore creates a SessionStore backed by cache. Entries expire ttl
// after their last save.
func NewSessionStore(c domain.Cache, ttl time.Duration) SessionStore {
	return &cacheSessionStore{cache: c, ttl: ttl}
}

func (s *cacheSessionStore) generateKey(sessionID string) string {
	return cache.GenerateCacheKey("session", "practice", sessionID)
}

func (s *cacheSessionStore) Load(ctx context.Context, sessionID string) (*domain.Practice, error) {
	key := s.generateKey(sessionID)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Debug("Session cache miss, starting fresh", zap.String("key", key))
			return domain.NewPractice(), nil
		}
		logger.Get().Error("Failed to load session", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to load session for key %s", key), err)
	}
	if data == "" {
		return domain.NewPractice(), nil
	}

	var practice domain.Practice
	if err := json.Unmarshal([]byte(data), &practice); err != nil {
		// A corrupt entry is not worth failing the request over.
		logger.Get().Warn("Discarding unreadable session", zap.Error(err), zap.String("key", key))
		return domain.NewPractice(), nil
	}
	if practice.Step == "" {
		practice.Step = domain.StepUpload
	}
	return &practice, nil
}

func (s *cacheSessionStore) Save(ctx context.Context, sessionID string, practice *domain.Practice) error {
	if practice == nil {
		return domain.NewInvalidInputError("cannot store nil practice")
	}
	key := s.generateKey(sessionID)
	data, err := json.Marshal(practice)
	if err != nil {
		return domain.NewInternalError("failed to marshal session", err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Error("Failed to save session", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to save session for key %s", key), err)
	}
	return nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, sessionID string) error {
	key := s.generateKey(sessionID)
	if err := s.cache.Delete(ctx, key); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to delete session for key %s", key), err)
	}
	return nil
}
