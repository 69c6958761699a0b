package usecase

import (
	"context"
	"fmt"
	"time"

	domainCacheToken "github.com/AzielCF/az-chat/domains/cachetoken"
	"github.com/AzielCF/az-chat/domains/health"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Pinger is the part of the cache connection the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthService struct {
	cache      Pinger
	tokens     domainCacheToken.ICacheTokenUsecase
	completion string
	now        func() time.Time
}

// NewHealthService reports on the cache connection, its bearer token and the
// configured completion target. completion describes the target, e.g.
// "azure:gpt-4o"; an empty value is reported as an error.
func NewHealthService(cache Pinger, tokens domainCacheToken.ICacheTokenUsecase, completion string) health.IHealthUsecase {
	return &healthService{
		cache:      cache,
		tokens:     tokens,
		completion: completion,
		now:        time.Now,
	}
}

func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	return []health.HealthRecord{
		s.checkCache(ctx),
		s.checkCacheToken(),
		s.checkCompletion(),
	}, nil
}

func (s *healthService) checkCache(ctx context.Context) health.HealthRecord {
	record := health.HealthRecord{
		EntityType:  health.EntityCache,
		Status:      health.StatusOk,
		LastMessage: "Connection successful",
		LastChecked: s.now(),
	}
	if err := s.cache.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("[Health] cache ping failed")
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	}
	return record
}

func (s *healthService) checkCacheToken() health.HealthRecord {
	record := health.HealthRecord{
		EntityType:  health.EntityCacheToken,
		LastChecked: s.now(),
	}

	token := s.tokens.Snapshot()
	switch state := token.StateAt(record.LastChecked); state {
	case domainCacheToken.StateUnset:
		record.Status = health.StatusOk
		record.LastMessage = "Static password authentication"
	case domainCacheToken.StateValid:
		record.Status = health.StatusOk
		record.LastMessage = fmt.Sprintf("Token valid, expires %s", humanize.RelTime(token.ExpiresOn, record.LastChecked, "ago", "from now"))
	case domainCacheToken.StateExpiring:
		record.Status = health.StatusOk
		record.LastMessage = fmt.Sprintf("Token expiring %s, next request refreshes it", humanize.RelTime(token.ExpiresOn, record.LastChecked, "ago", "from now"))
	default:
		record.Status = health.StatusError
		record.LastMessage = fmt.Sprintf("Token expired %s", humanize.RelTime(token.ExpiresOn, record.LastChecked, "ago", "from now"))
	}
	return record
}

func (s *healthService) checkCompletion() health.HealthRecord {
	record := health.HealthRecord{
		EntityType:  health.EntityCompletion,
		Status:      health.StatusOk,
		LastMessage: s.completion,
		LastChecked: s.now(),
	}
	if s.completion == "" {
		record.Status = health.StatusUnknown
		record.LastMessage = "No completion target configured"
	}
	return record
}
