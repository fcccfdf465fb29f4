package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

const defaultKeyPrefix = "gdelt:query_budget"

type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// QueryBudget counts warehouse calls per UTC day in Redis so that every
// replica draws from the same allowance.
type QueryBudget struct {
	log    *logger.Logger
	rdb    *goredis.Client
	limit  int64
	prefix string
	now    func() time.Time
}

func NewQueryBudget(log *logger.Logger, opts Options, limit int) (*QueryBudget, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := strings.TrimSpace(opts.KeyPrefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	b := &QueryBudget{
		log:    log.With("service", "RedisQueryBudget"),
		rdb:    rdb,
		limit:  int64(limit),
		prefix: prefix,
		now:    time.Now,
	}
	b.log.Info("query budget connected", "addr", addr, "daily_limit", limit)
	return b, nil
}

// Allow consumes one unit of today's allowance. A limit of zero or less
// never blocks and skips Redis.
func (b *QueryBudget) Allow(ctx context.Context) (bool, error) {
	if b == nil || b.rdb == nil {
		return false, fmt.Errorf("redis query budget not initialized")
	}
	if b.limit <= 0 {
		return true, nil
	}
	now := b.now().UTC()
	key := budgetKey(b.prefix, now)

	var incr *goredis.IntCmd
	_, err := b.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireAt(ctx, key, nextUTCMidnight(now).Add(time.Hour))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis incr %s: %w", key, err)
	}
	used := incr.Val()
	if used > b.limit {
		b.log.Warn("daily query budget exhausted", "key", key, "used", used, "limit", b.limit)
		return false, nil
	}
	return true, nil
}

// Used reports how many units today's key has consumed.
func (b *QueryBudget) Used(ctx context.Context) (int64, error) {
	n, err := b.rdb.Get(ctx, budgetKey(b.prefix, b.now().UTC())).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return n, err
}

func (b *QueryBudget) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func budgetKey(prefix string, now time.Time) string {
	return fmt.Sprintf("%s:%s", prefix, now.UTC().Format("20060102"))
}

func nextUTCMidnight(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
