package redis

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/VvkAlgo/RoleMatchAI/internal/config"
)

// RedisClient is the slice of redis this service uses: JSON session
// snapshots (Get/Set/Del) and fixed-window counters (Incr/Expire).
type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

var _ RedisClient = (*client)(nil)

type client struct {
	cli *redis.Client
}

// NewClient dials redis and verifies the connection with a bounded
// ping. cfg.URL may be a redis:// URL or a bare host:port; an explicit
// password or DB in the config wins over one embedded in the URL.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*client, error) {
	var opts *redis.Options
	if strings.Contains(cfg.URL, "://") {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.URL}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	c := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &client{cli: c}, nil
}

func (c *client) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *client) Incr(ctx context.Context, key string) (int64, error) {
	return c.cli.Incr(ctx, key).Result()
}

func (c *client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.cli.Expire(ctx, key, expiration).Err()
}

func (c *client) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *client) Close() error { return c.cli.Close() }
