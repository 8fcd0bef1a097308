package chunker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks chunk bounds that make merging and splitting
// unsatisfiable. It is the only fatal error of a run.
var ErrInvalidConfig = errors.New("invalid chunking config")

// Config controls chunk bounds. Lengths are counted in runes.
type Config struct {
	MinLen           int    // Bodies shorter than this are merged into a neighbour.
	MaxLen           int    // Rendered chunk text never exceeds this.
	FloorLen         int    // Orphan chunks shorter than this are rejected.
	ContextSeparator string // Joins ancestor headings in the text prefix.
	Terminators      string // Sentence-ending characters used as split points.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinLen:           200,
		MaxLen:           1200,
		FloorLen:         20,
		ContextSeparator: " > ",
		Terminators:      ".?!",
	}
}

// Validate reports bounds that cannot be honoured. Every error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MinLen <= 0 || c.MaxLen <= 0:
		return fmt.Errorf("%w: min_len and max_len must be positive (got %d, %d)", ErrInvalidConfig, c.MinLen, c.MaxLen)
	case c.MinLen >= c.MaxLen:
		return fmt.Errorf("%w: min_len %d must be below max_len %d", ErrInvalidConfig, c.MinLen, c.MaxLen)
	case c.FloorLen < 0:
		return fmt.Errorf("%w: floor_len must not be negative (got %d)", ErrInvalidConfig, c.FloorLen)
	case c.FloorLen >= c.MinLen:
		return fmt.Errorf("%w: floor_len %d must be below min_len %d", ErrInvalidConfig, c.FloorLen, c.MinLen)
	case c.Terminators == "":
		return fmt.Errorf("%w: sentence terminator set is empty", ErrInvalidConfig)
	}
	return nil
}
