package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache in front of the public
// product read endpoints. Methods lists the HTTP methods to cache, TTL the
// lifetime of an entry and KeyStrategy which parts of the request make up the
// key. Writes to the catalog purge every key under Prefix.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED, default=true"`
	Methods      []string      `env:"CACHE_METHODS, default=GET"`
	TTL          time.Duration `env:"CACHE_TTL, default=30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY, default=route_query"`
	Prefix       string        `env:"CACHE_PREFIX, default=cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES, default=1048576"`
}

// Allows reports whether responses to method are cacheable.
func (c CacheConfig) Allows(method string) bool {
	for _, m := range c.Methods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}

func (c *CacheConfig) normalize() {
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
}
