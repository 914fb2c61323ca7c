package config

// Redis backs the product read cache and the auth rate limiter. Both degrade to
// pass-through when the client is nil, so a failed ping at startup is not fatal.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis. Addr wins over Host/Port.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Host     string `env:"REDIS_HOST, default=localhost"`
	Port     string `env:"REDIS_PORT, default=6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
	TLS      bool   `env:"REDIS_TLS, default=false"`
}

// Address returns host:port for the client.
func (c RedisConfig) Address() string {
	if c.Addr != "" {
		return c.Addr
	}
	return c.Host + ":" + c.Port
}

// NewRedisClient builds a client and pings it with a short timeout. It returns
// nil when the server cannot be reached.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
