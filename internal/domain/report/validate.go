package report

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNotANumber = errors.New("must be a valid number")
	ErrNegative   = errors.New("cannot be negative")
	ErrNotWhole   = errors.New("must be a whole number")
)

// SanitizeNumber accepts only non-negative integer input. Anything else,
// including empty, fractional and negative values, is reported as absent
// rather than coerced to zero.
func SanitizeNumber(input string) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}
	value, err := strconv.Atoi(input)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// ValidateNonNegativeInt is the strict variant of SanitizeNumber: it
// classifies why input was rejected so the caller can surface a message.
func ValidateNonNegativeInt(input string) (int, error) {
	input = strings.TrimSpace(input)
	if value, err := strconv.Atoi(input); err == nil {
		if value < 0 {
			return 0, ErrNegative
		}
		return value, nil
	}
	if value, err := strconv.ParseFloat(input, 64); err == nil {
		if value < 0 {
			return 0, ErrNegative
		}
		return 0, ErrNotWhole
	}
	return 0, ErrNotANumber
}
