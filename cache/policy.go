package cache

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Defaults applied by DefaultConfig.
const (
	DefaultTTL  = 5 * time.Minute
	DefaultSize = 1000
)

// Config fixes a Memoizer's behaviour at construction.
type Config struct {
	// TTL is how long an entry lives after insertion. Reads do not extend it.
	// Must be greater than zero.
	TTL time.Duration

	// Size is the maximum number of entries. Inserting beyond it evicts the
	// oldest inserted entry. Must be greater than zero.
	Size int

	// Name identifies the memoizer in logs and telemetry.
	// If empty, a unique "memo-<uuid>" name is generated.
	Name string

	// PreloadConcurrency bounds the goroutines Preload runs at once.
	// Zero means unbounded.
	PreloadConcurrency int
}

// DefaultConfig returns the default configuration.
// TTL: 5 minutes, Size: 1000
func DefaultConfig() Config {
	return Config{
		TTL:  DefaultTTL,
		Size: DefaultSize,
	}
}

// Validate checks the configuration. Failures wrap ErrInvalidConfig.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&c.Size, validation.Required, validation.Min(1)),
		validation.Field(&c.PreloadConcurrency, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// withDefaults fills in generated fields.
func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "memo-" + uuid.NewString()
	}
	return c
}
