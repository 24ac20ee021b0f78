package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertClaimRepository lets concurrent scheduler workers agree on who inserts
// the alert for a case on a given UTC day.
type AlertClaimRepository interface {
	Claim(ctx context.Context, caseID string, day time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, caseID string, day time.Time) error
}

type redisAlertClaimRepository struct {
	client *redis.Client
}

// NewRedisAlertClaimRepository builds a Redis-backed claim store.
func NewRedisAlertClaimRepository(client *redis.Client) AlertClaimRepository {
	return &redisAlertClaimRepository{client: client}
}

func (r *redisAlertClaimRepository) Claim(ctx context.Context, caseID string, day time.Time, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, AlertClaimKey(caseID, day), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (r *redisAlertClaimRepository) Release(ctx context.Context, caseID string, day time.Time) error {
	return r.client.Del(ctx, AlertClaimKey(caseID, day)).Err()
}

// AlertClaimKey is the Redis key guarding one case for one UTC day.
func AlertClaimKey(caseID string, day time.Time) string {
	return fmt.Sprintf("sla-alert-claim:%s:%s", caseID, day.UTC().Format("2006-01-02"))
}
