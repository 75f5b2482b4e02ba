package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/repository"
	apperrors "github.com/campus-hub/support-service/pkg/util/errorutil"
)

// StaffEntry is the directory view of a staff account, as shown in the
// assignment picker. Never carries credentials.
type StaffEntry struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Role     domain.UserRole `json:"role"`
}

// DirectoryService lists staff accounts, caching the result in Redis. Cache
// failures fall through to the store.
type DirectoryService struct {
	users  repository.UserRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectoryService constructs the service. cache may be nil.
func NewDirectoryService(users repository.UserRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{users: users, cache: cache, ttl: ttl, logger: logger}
}

// ListStaff returns staff accounts, optionally filtered by role.
func (s *DirectoryService) ListStaff(ctx context.Context, role *domain.UserRole) ([]StaffEntry, error) {
	key := "directory:staff:all"
	if role != nil {
		key = "directory:staff:" + string(*role)
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			var entries []StaffEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("staff directory cache read failed", zap.Error(err))
		}
	}

	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	entries := make([]StaffEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, StaffEntry{ID: user.ID, Username: user.Username, Role: user.Role})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("staff directory cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}
