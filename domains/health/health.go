package health

import (
	"context"
	"time"
)

type EntityType string

const (
	EntityCache      EntityType = "cache"
	EntityCacheToken EntityType = "cache_token"
	EntityCompletion EntityType = "completion"
)

type Status string

const (
	StatusOk      Status = "OK"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

type HealthRecord struct {
	EntityType  EntityType `json:"entity_type"`
	Status      Status     `json:"status"`
	LastMessage string     `json:"last_message"`
	LastChecked time.Time  `json:"last_checked"`
}

type IHealthUsecase interface {
	CheckAll(ctx context.Context) ([]HealthRecord, error)
}
