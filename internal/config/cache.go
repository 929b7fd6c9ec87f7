package config

import (
	"fmt"
	"time"
)

// CacheConfig controls the cache-aside query layer.
//
// Every cached query belongs to one of the TTL tiers below. The tier is picked
// by how often the underlying rows change, not by how expensive the query is.
type CacheConfig struct {
	// Enabled turns the query cache on. When off every read goes to Postgres.
	Enabled bool `koanf:"enabled"`

	// OptionsTTL covers select-option lists. They change a few times a year.
	OptionsTTL time.Duration `koanf:"options_ttl"`

	// LookupTTL covers id/label lists used to populate dropdowns.
	LookupTTL time.Duration `koanf:"lookup_ttl"`

	// ListTTL covers filtered, paginated list queries.
	ListTTL time.Duration `koanf:"list_ttl"`

	// SessionTTL covers the session+user lookup done on every authenticated request.
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// DefaultCacheConfig returns the tiers used when no cache block is configured.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:    true,
		OptionsTTL: 24 * time.Hour,
		LookupTTL:  5 * time.Minute,
		ListTTL:    30 * time.Second,
		SessionTTL: time.Minute,
	}
}

// Validate rejects negative TTLs. A zero TTL is allowed and means
// "do not cache this tier".
func (c *CacheConfig) Validate() error {
	tiers := map[string]time.Duration{
		"options_ttl": c.OptionsTTL,
		"lookup_ttl":  c.LookupTTL,
		"list_ttl":    c.ListTTL,
		"session_ttl": c.SessionTTL,
	}

	for name, ttl := range tiers {
		if ttl < 0 {
			return fmt.Errorf("cache %s must be non-negative", name)
		}
	}

	return nil
}
