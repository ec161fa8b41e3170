package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/caltman24/zaptrack/internal/persistence"
	"github.com/caltman24/zaptrack/internal/repository"
)

const memberNameKeyPrefix = "member:name:"

// MemberNames resolves member display names for history rendering,
// caching them in Redis. Cache failures fall through to the database;
// they never fail a read.
type MemberNames struct {
	redis   *persistence.Redis
	members repository.MemberRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewMemberNames builds the cache.
func NewMemberNames(redis *persistence.Redis, members repository.MemberRepository, ttl time.Duration, logger *zap.Logger) *MemberNames {
	return &MemberNames{redis: redis, members: members, ttl: ttl, logger: logger}
}

// DisplayName returns the member's display name, preferring the cache.
func (c *MemberNames) DisplayName(ctx context.Context, memberID string) (string, error) {
	key := memberNameKeyPrefix + memberID

	if c.redis != nil && c.redis.Client != nil {
		if name, err := c.redis.Client.Get(ctx, key).Result(); err == nil && name != "" {
			return name, nil
		}
	}

	member, err := c.members.GetByID(ctx, memberID)
	if err != nil {
		return "", err
	}

	if c.redis != nil && c.redis.Client != nil {
		if err := c.redis.Client.Set(ctx, key, member.Name, c.ttl).Err(); err != nil {
			c.logger.Debug("member name cache set failed", zap.Error(err))
		}
	}
	return member.Name, nil
}
