package redis

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// answerRateScript implements an atomic token bucket per key. The bucket
// state (tokens, last refill timestamp) lives in a hash; refill is computed
// lazily from elapsed time on each call.
// ARGV: [1]=now_ms, [2]=capacity, [3]=rate per minute
var answerRateScript = goredis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last_refill = tonumber(redis.call('HGET', KEYS[1], 'last_refill'))
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])

if tokens == nil then
    tokens = capacity
    last_refill = now
end

local elapsed_min = (now - last_refill) / 60000.0
tokens = math.min(capacity, tokens + elapsed_min * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('PEXPIRE', KEYS[1], 3600000)
return allowed
`)

// AnswerRateLimiter implements token bucket rate limiting for answer
// submissions, keyed per session and client identity.
type AnswerRateLimiter struct {
	rdb      *goredis.Client
	clock    clockwork.Clock
	capacity int
	rate     int // tokens per minute
}

// NewAnswerRateLimiter creates a new answer rate limiter.
// capacity: maximum burst size (tokens)
// rate: sustained rate (tokens per minute)
func NewAnswerRateLimiter(client *Client, clock clockwork.Clock, capacity, rate int) *AnswerRateLimiter {
	return &AnswerRateLimiter{
		rdb:      client.rdb,
		clock:    clock,
		capacity: capacity,
		rate:     rate,
	}
}

// Allow checks if an answer submission is allowed for the given session and
// client. Returns true if allowed (token consumed), false if rate limited.
func (l *AnswerRateLimiter) Allow(ctx context.Context, sessionID, clientKey string) (bool, error) {
	key := fmt.Sprintf("rate_limit:answers:%s:%s", sessionID, clientKey)

	result, err := answerRateScript.Run(ctx, l.rdb, []string{key},
		l.clock.Now().UnixMilli(),
		l.capacity,
		l.rate,
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return result == 1, nil
}
