// Package conv provides integer conversion helpers for the pattern engine.
//
// The narrowing helpers panic on overflow since that indicates a programming
// error (a graph too large for the node index type). The value helpers
// classify match-time values held in variables or returned by callbacks;
// they never panic and leave error reporting to the caller.
package conv

import (
	"math"
	"strconv"
	"strings"
)

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// Use uint for comparison to avoid overflow on 32-bit platforms
	// where int cannot represent math.MaxUint32
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// NonNegative converts a dynamically typed value to a non-negative int.
//
// Accepted values are the Go integer kinds, float values with no fractional
// part, and decimal strings (surrounding blanks ignored). ok is false for
// anything else, including negative numbers and values that do not fit in
// an int.
func NonNegative(v any) (n int, ok bool) {
	switch x := v.(type) {
	case int:
		return x, x >= 0
	case int8:
		return int(x), x >= 0
	case int16:
		return int(x), x >= 0
	case int32:
		return int(x), x >= 0
	case int64:
		if x < 0 || x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case uint:
		if x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		if uint64(x) > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case uint64:
		if x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case float64:
		if x < 0 || x != math.Trunc(x) || x > math.MaxInt32 {
			return 0, false
		}
		return int(x), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil || i < 0 {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Truth reports whether v, a Go integer kind, is nonzero. ok is false for
// any other type.
func Truth(v any) (truth, ok bool) {
	switch x := v.(type) {
	case int:
		return x != 0, true
	case int8:
		return x != 0, true
	case int16:
		return x != 0, true
	case int32:
		return x != 0, true
	case int64:
		return x != 0, true
	case uint:
		return x != 0, true
	case uint8:
		return x != 0, true
	case uint16:
		return x != 0, true
	case uint32:
		return x != 0, true
	case uint64:
		return x != 0, true
	case uintptr:
		return x != 0, true
	default:
		return false, false
	}
}
