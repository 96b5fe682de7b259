package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directsales-backend/pkg/errors"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// StatusStore persists the subscription status on the consultant row.
type StatusStore interface {
	SubscriptionStatus(ctx context.Context, id uuid.UUID) (enums.SubscriptionStatus, error)
	SetSubscriptionStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error
}

// StatusCache is the redis surface used for cache-aside reads.
type StatusCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SubscriptionStatusKey(userID string) string
}

// Service answers whether a consultant may use the sales surface.
type Service interface {
	Status(ctx context.Context, consultantID uuid.UUID) (enums.SubscriptionStatus, error)
	IsActive(ctx context.Context, consultantID uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, consultantID uuid.UUID, status enums.SubscriptionStatus) (*StatusDTO, error)
}

type ServiceParams struct {
	Store  StatusStore
	Cache  StatusCache
	TTL    time.Duration
	Logger *logger.Logger
}

type service struct {
	store StatusStore
	cache StatusCache
	ttl   time.Duration
	logg  *logger.Logger
	group singleflight.Group
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("status store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		store: params.Store,
		cache: params.Cache,
		ttl:   ttl,
		logg:  params.Logger,
	}, nil
}

// Status reads through the cache. Concurrent misses for the same consultant
// share one database read.
func (s *service) Status(ctx context.Context, consultantID uuid.UUID) (enums.SubscriptionStatus, error) {
	key := consultantID.String()
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.SubscriptionStatusKey(key))
		switch {
		case err == nil:
			if status := enums.SubscriptionStatus(raw); status.IsValid() {
				return status, nil
			}
		case !errors.Is(err, goredis.Nil):
			s.warn(ctx, consultantID, "subscription cache read failed", err)
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		status, err := s.store.SubscriptionStatus(ctx, consultantID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, s.cache.SubscriptionStatusKey(key), string(status), s.ttl); err != nil {
				s.warn(ctx, consultantID, "subscription cache write failed", err)
			}
		}
		return status, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "consultant not found")
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription status")
	}
	return v.(enums.SubscriptionStatus), nil
}

func (s *service) IsActive(ctx context.Context, consultantID uuid.UUID) (bool, error) {
	status, err := s.Status(ctx, consultantID)
	if err != nil {
		return false, err
	}
	return status.GrantsAccess(), nil
}

// SetStatus writes the new status and drops the cached value.
func (s *service) SetStatus(ctx context.Context, consultantID uuid.UUID, status enums.SubscriptionStatus) (*StatusDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown subscription status %q", status))
	}
	if err := s.store.SetSubscriptionStatus(ctx, consultantID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consultant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription status")
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.SubscriptionStatusKey(consultantID.String())); err != nil {
			s.warn(ctx, consultantID, "subscription cache invalidation failed", err)
		}
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"consultant_id": consultantID.String(),
			"status":        string(status),
		}), "subscription status updated")
	}
	return &StatusDTO{ConsultantID: consultantID, Status: status, Active: status.GrantsAccess()}, nil
}

func (s *service) warn(ctx context.Context, consultantID uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"consultant_id": consultantID.String(),
		"error":         err.Error(),
	}), msg)
}
