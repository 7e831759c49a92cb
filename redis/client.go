// Package redis connects to Redis through go-redis and provides the shared
// rate-limit counter used when several server replicas sit behind one
// balancer.
package redis

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/voicegate/logger"
)

// Client wraps a go-redis client.
type Client struct {
	rdb *goredis.Client
	cfg Config
	log *logger.Logger

	mu     sync.Mutex
	closed bool
}

// New builds a client. It does not dial; use Ping.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &Client{rdb: rdb, cfg: cfg, log: log}, nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Key prefixes k with the configured namespace.
func (c *Client) Key(k string) string { return c.cfg.KeyPrefix + k }

// Unwrap returns the go-redis client.
func (c *Client) Unwrap() *goredis.Client { return c.rdb }

// Close is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}
