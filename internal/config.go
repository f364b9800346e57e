package internal

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Config controls a triangulation build and the safe/unsafe split.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Logger receives debug events for builds, seam merges and splits. Nil
	// disables logging.
	Logger *zap.Logger `yaml:"-"`

	// SafetyMargin is how far, relative to the magnitude of the coordinates
	// involved, a circumdisk must stay inside a tile to count as safe. Zero
	// means plain strict containment. Default: 1e-9.
	SafetyMargin float64 `yaml:"safety_margin"`

	// CheckDuplicates rejects inputs with two points at the same coordinates.
	// Turning it off is only sound when the caller has already deduplicated.
	// Default: true.
	CheckDuplicates bool `yaml:"check_duplicates"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		SafetyMargin:    1e-9,
		CheckDuplicates: true,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if math.IsNaN(c.SafetyMargin) || math.IsInf(c.SafetyMargin, 0) {
		err = multierr.Append(err, errors.Errorf("SafetyMargin must be finite, got %v", c.SafetyMargin))
	} else if c.SafetyMargin < 0 {
		err = multierr.Append(err, errors.Errorf("SafetyMargin must be >= 0, got %v", c.SafetyMargin))
	}
	if err != nil {
		return newError(KindPrecondition, errors.Wrap(err, "invalid config"))
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
