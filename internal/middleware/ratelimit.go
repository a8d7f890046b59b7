package middleware

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/roomescape/internal/config"
	"github.com/iliyamo/roomescape/internal/errs"
)

// tokenBucketScript refills the bucket stored at KEYS[1] by whole intervals
// and takes one token if available. Returns {allowed, remaining, retry_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// TokenBucket limits requests per key. Buckets live in Redis so every API
// instance shares them; without Redis, or while Redis errors, an in-process
// x/time/rate limiter per key takes over.
type TokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	now func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewTokenBucket returns nil when rate limiting is disabled. rdb may be nil.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) *TokenBucket {
	if !cfg.Enabled {
		return nil
	}
	return &TokenBucket{cfg: cfg, rdb: rdb, now: time.Now, local: map[string]*localBucket{}}
}

type verdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// Middleware answers 429 with Retry-After once a key's bucket is empty.
func (tb *TokenBucket) Middleware() echo.MiddlewareFunc {
	if tb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := tb.key(c)
			v, err := tb.takeRedis(c, key)
			if err != nil {
				if tb.rdb != nil {
					GetLogger(c).Warn().Err(err).Str("key", key).Msg("redis rate limit failed, using local bucket")
				}
				v = tb.takeLocal(key)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(tb.cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if !v.allowed {
				secs := int(math.Ceil(v.retry.Seconds()))
				h.Set("Retry-After", strconv.Itoa(secs))
				GetLogger(c).Info().Str("key", key).Int("retry_after", secs).Msg("rate limited")
				return errs.TooManyRequests("too many requests, retry later")
			}
			return next(c)
		}
	}
}

var errNoRedis = errors.New("redis not configured")

func (tb *TokenBucket) takeRedis(c echo.Context, key string) (verdict, error) {
	if tb.rdb == nil {
		return verdict{}, errNoRedis
	}
	vals, err := tokenBucketScript.Run(c.Request().Context(), tb.rdb, []string{key},
		tb.now().UnixMilli(),
		tb.cfg.Capacity,
		tb.cfg.RefillTokens,
		tb.cfg.RefillInterval.Milliseconds(),
		int64(tb.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(vals) != 3 {
		return verdict{}, fmt.Errorf("unexpected rate limit script result %v", vals)
	}
	return verdict{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		retry:     time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (tb *TokenBucket) takeLocal(key string) verdict {
	now := tb.now()
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if now.Sub(tb.lastSweep) > tb.cfg.TTL {
		for k, b := range tb.local {
			if now.Sub(b.seen) > tb.cfg.TTL {
				delete(tb.local, k)
			}
		}
		tb.lastSweep = now
	}

	b, ok := tb.local[key]
	if !ok {
		every := tb.cfg.RefillInterval / time.Duration(tb.cfg.RefillTokens)
		b = &localBucket{lim: rate.NewLimiter(rate.Every(every), tb.cfg.Capacity)}
		tb.local[key] = b
	}
	b.seen = now

	r := b.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return verdict{retry: delay}
	}
	return verdict{allowed: true, remaining: int64(b.lim.TokensAt(now))}
}

// key builds prefix:ip:<ip>:route:<method path> according to KeyStrategy.
func (tb *TokenBucket) key(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{tb.cfg.Prefix}
	switch strings.ToLower(tb.cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default:
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
