package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// HostRateLimiter spaces requests to the same host by a fixed interval within
// this process.
type HostRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	interval time.Duration
}

func NewHostRateLimiter(interval time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

func (h *HostRateLimiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}
	return h.limiterFor(host).Wait(ctx)
}

func (h *HostRateLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.RLock()
	limiter, ok := h.limiters[host]
	h.mu.RUnlock()
	if ok {
		return limiter
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if limiter, ok := h.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Every(h.interval), 1)
	h.limiters[host] = limiter
	return limiter
}

// RedisWindowLimiter caps requests per host per fixed window across every
// replica sharing the Redis instance. Redis errors fail open.
type RedisWindowLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisWindowLimiter(client redis.Cmdable, prefix string, limit int64, window time.Duration) *RedisWindowLimiter {
	if window < time.Millisecond {
		window = time.Second
	}
	if limit < 1 {
		limit = 1
	}
	return &RedisWindowLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisWindowLimiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}

	windowMs := l.window.Milliseconds()
	for {
		now := l.now()
		slot := now.UnixMilli() / windowMs
		key := fmt.Sprintf("%s:%s:%d", l.prefix, host, slot)

		// INCR and PEXPIRE share a transaction so every window key expires.
		var incr *redis.IntCmd
		_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.PExpire(ctx, key, 2*l.window)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("shared rate limit unavailable, continuing without it", "host", host, "error", err)
			return nil
		}
		if count := incr.Val(); count <= l.limit {
			return nil
		}

		next := time.UnixMilli((slot + 1) * windowMs)
		if err := sleepContext(ctx, next.Sub(now)); err != nil {
			return err
		}
	}
}

// ChainLimiter waits on every limiter in order.
type ChainLimiter []Limiter

func (c ChainLimiter) Wait(ctx context.Context, rawURL string) error {
	for _, l := range c {
		if err := l.Wait(ctx, rawURL); err != nil {
			return err
		}
	}
	return nil
}

func hostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", &url.Error{Op: "parse", URL: rawURL, Err: errors.New("missing host in URL")}
	}
	return parsed.Host, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
