package snopat

import "log/slog"

// Config controls how a pattern is matched.
//
// Example:
//
//	config := snopat.DefaultConfig()
//	config.StackSize = 100_000 // deep recursion
//	m, err := p.MatchWithConfig(subject, true, config)
type Config struct {
	// StackSize is the capacity of the backtracking history stack in
	// entries. It is raised to twice the pattern's stack budget when that
	// is larger.
	// Default: 2000
	StackSize int

	// MinStackSize is the smallest stack any match gets, whatever the
	// requested size.
	// Default: 16
	MinStackSize int

	// EnablePrefilter lets unanchored matches skip start positions where
	// none of the pattern's leading literals occurs.
	// Default: true
	EnablePrefilter bool

	// Logger, if set, receives Debug records tracing every interpreter
	// step. Tracing is slow and meant for diagnosing patterns.
	// Default: nil
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by MatchAnchored and
// MatchUnanchored.
func DefaultConfig() Config {
	return Config{
		StackSize:       2000,
		MinStackSize:    16,
		EnablePrefilter: true,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any parameter is out of range.
//
// Valid ranges:
//   - StackSize: 1 to 100,000,000
//   - MinStackSize: 2 to 1,000,000
func (c Config) Validate() error {
	if c.StackSize < 1 || c.StackSize > 100_000_000 {
		return &ConfigError{
			Field:   "StackSize",
			Message: "must be between 1 and 100,000,000",
		}
	}

	if c.MinStackSize < 2 || c.MinStackSize > 1_000_000 {
		return &ConfigError{
			Field:   "MinStackSize",
			Message: "must be between 2 and 1,000,000",
		}
	}

	return nil
}
