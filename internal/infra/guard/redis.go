package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
)

const keyPrefix = "booking-guard"

// releaseScript deletes the key only while it still holds our token, so an
// expired guard re-taken by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewClient accepts either a redis:// URL or a bare host:port.
func NewClient(url string) (*redis.Client, error) {
	if strings.Contains(url, "://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: url}), nil
}

func NewRedisGuard(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisGuard{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "booking_guard").Logger(),
	}
}

func Key(doctorID, date, start string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, doctorID, date, start)
}

// Acquire fails open: when redis is unreachable the booking proceeds and
// relies on the database checks alone.
func (g *RedisGuard) Acquire(ctx context.Context, doctorID, date, start string) (func(), error) {
	key := Key(doctorID, date, start)
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("booking guard unavailable")
		return func() {}, nil
	}
	if !ok {
		return nil, domain.ErrSlotConflict
	}

	return func() {
		if err := releaseScript.Run(context.Background(), g.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			g.log.Warn().Err(err).Str("key", key).Msg("booking guard release failed")
		}
	}, nil
}

var _ domain.SlotGuard = (*RedisGuard)(nil)
