package suggest

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Unbounded disables the result cap of FindSuggestions.
const Unbounded = math.MaxInt

const (
	defaultCacheSize      = 2048
	defaultExpiration     = 24
	defaultExpirationUnit = time.Hour
)

// ExpirationPolicy picks the timestamp an entry ages from, which is also the
// order evictions follow.
type ExpirationPolicy int

const (
	// ExpireAfterCreate ages entries from when they were stored; evictions
	// drop the oldest-created entry.
	ExpireAfterCreate ExpirationPolicy = iota
	// ExpireAfterAccess ages entries from their last read; evictions drop
	// the least-recently-read entry.
	ExpireAfterAccess
)

func (p ExpirationPolicy) String() string {
	switch p {
	case ExpireAfterCreate:
		return "created"
	case ExpireAfterAccess:
		return "accessed"
	default:
		return fmt.Sprintf("ExpirationPolicy(%d)", int(p))
	}
}

// ParsePolicy maps "created" / "accessed" to a policy.
func ParsePolicy(s string) (ExpirationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created", "create":
		return ExpireAfterCreate, nil
	case "accessed", "access":
		return ExpireAfterAccess, nil
	}
	return ExpireAfterCreate, fmt.Errorf("unknown expiration policy %q: %w", s, ErrInvalidInput)
}

var timeUnits = map[string]time.Duration{
	"nanoseconds":  time.Nanosecond,
	"microseconds": time.Microsecond,
	"milliseconds": time.Millisecond,
	"seconds":      time.Second,
	"minutes":      time.Minute,
	"hours":        time.Hour,
	"days":         24 * time.Hour,
}

// ParseTimeUnit maps a unit name such as "hours" (or "hour") to its duration.
func ParseTimeUnit(s string) (time.Duration, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return defaultExpirationUnit, nil
	}
	if unit, ok := timeUnits[name]; ok {
		return unit, nil
	}
	if unit, ok := timeUnits[name+"s"]; ok {
		return unit, nil
	}
	return 0, fmt.Errorf("unknown time unit %q: %w", s, ErrInvalidInput)
}

// CacheConfig configures the bounded, time-expiring result cache.
type CacheConfig struct {
	MaxSize        int
	Policy         ExpirationPolicy
	Expiration     int64
	ExpirationUnit time.Duration
}

// DefaultCacheConfig holds 2048 entries that expire 24 hours after creation.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize:        defaultCacheSize,
		Policy:         ExpireAfterCreate,
		Expiration:     defaultExpiration,
		ExpirationUnit: defaultExpirationUnit,
	}
}

// TTL is Expiration counted in ExpirationUnit, saturating at the largest
// representable duration.
func (c CacheConfig) TTL() time.Duration {
	unit := c.ExpirationUnit
	if unit <= 0 {
		unit = defaultExpirationUnit
	}
	if c.Expiration > int64(math.MaxInt64/unit) {
		return math.MaxInt64
	}
	return time.Duration(c.Expiration) * unit
}

func (c CacheConfig) validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("cache max size %d: %w", c.MaxSize, ErrInvalidInput)
	}
	if c.Expiration <= 0 {
		return fmt.Errorf("cache expiration %d: %w", c.Expiration, ErrInvalidInput)
	}
	if c.Policy != ExpireAfterCreate && c.Policy != ExpireAfterAccess {
		return fmt.Errorf("cache policy %v: %w", c.Policy, ErrInvalidInput)
	}
	return nil
}

// Options is the immutable engine configuration.
type Options struct {
	// IgnoreCase folds terms and prefixes to lower case.
	IgnoreCase bool
	// PrebuiltTerms stores the full term at each terminal node.
	PrebuiltTerms bool
	// Cache enables the result cache when non-nil.
	Cache *CacheConfig
}
