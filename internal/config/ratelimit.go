package config

import "time"

// RateLimitConfig configures the token bucket guarding the login endpoint.
type RateLimitConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Capacity       int           `koanf:"capacity"`
	RefillTokens   int           `koanf:"refill_tokens"`
	RefillInterval time.Duration `koanf:"refill_interval"`
	TTL            time.Duration `koanf:"ttl"`
	KeyStrategy    string        `koanf:"key_strategy"` // ip | route | ip_route
	Prefix         string        `koanf:"prefix"`
}

func (r *RateLimitConfig) applyDefaults() {
	if r.Capacity < 1 {
		r.Capacity = 10
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = 6 * time.Second
	}
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
	if r.KeyStrategy == "" {
		r.KeyStrategy = "ip_route"
	}
	if r.Prefix == "" {
		r.Prefix = "rl"
	}
}
