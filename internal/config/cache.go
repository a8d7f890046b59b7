package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is disabled.
// Methods lists the HTTP methods to cache. KeyStrategy determines which parts
// of the request contribute to the cache key.
type CacheConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Methods      []string      `koanf:"methods"`
	TTL          time.Duration `koanf:"ttl"`
	KeyStrategy  string        `koanf:"key_strategy"` // route | route_query
	Prefix       string        `koanf:"prefix"`
	MaxBodyBytes int           `koanf:"max_body_bytes"`
}

func (c *CacheConfig) applyDefaults() {
	if len(c.Methods) == 0 {
		c.Methods = []string{"GET"}
	}
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.KeyStrategy == "" {
		c.KeyStrategy = "route_query"
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

// MethodSet returns Methods as a lookup set.
func (c CacheConfig) MethodSet() map[string]bool {
	m := make(map[string]bool, len(c.Methods))
	for _, method := range c.Methods {
		if method != "" {
			m[method] = true
		}
	}
	return m
}
