package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/auth-gate/internal/ratelimit"
)

const (
	defaultRatePerMinute int64 = 30
	windowSeconds              = 60
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.Limiter = (*LoginThrottle)(nil)

// LoginThrottle is a distributed per-minute request throttle backed by Redis.
// It caps how often a single client can hit the login endpoint; the database
// lockout handles per-account abuse.
type LoginThrottle struct {
	client        *goredis.Client
	ratePerMinute int64
	now           func() time.Time
	script        *goredis.Script
}

func NewLoginThrottle(client *goredis.Client, ratePerMinute int) (*LoginThrottle, error) {
	return newLoginThrottle(client, int64(ratePerMinute), time.Now)
}

func newLoginThrottle(client *goredis.Client, ratePerMinute int64, nowFn func() time.Time) (*LoginThrottle, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ratePerMinute <= 0 {
		ratePerMinute = defaultRatePerMinute
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &LoginThrottle{
		client:        client,
		ratePerMinute: ratePerMinute,
		now:           nowFn,
		script:        allowScript,
	}, nil
}

func (l *LoginThrottle) Allow(ctx context.Context, clientKey string) (bool, error) {
	if l == nil || l.client == nil || l.script == nil {
		return false, fmt.Errorf("login throttle is not initialized")
	}

	normalizedKey := strings.ToLower(strings.TrimSpace(clientKey))
	if normalizedKey == "" {
		return false, fmt.Errorf("client key is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	minuteBucket := l.now().UTC().Unix() / windowSeconds
	key := fmt.Sprintf("throttle:login:%s:%d", normalizedKey, minuteBucket)
	result, err := l.script.Run(ctx, l.client, []string{key}, l.ratePerMinute, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate login throttle: %w", err)
	}

	return result == 1, nil
}
