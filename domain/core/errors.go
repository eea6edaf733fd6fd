package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Parse errors
	ErrFormat          = errors.New("malformed input line")
	ErrRange           = errors.New("count out of range")
	ErrMissingVariants = errors.New("metric needs at least 2 variants")
	ErrDuplicateName   = errors.New("duplicate name")

	// Lookup errors
	ErrNotFound      = errors.New("resource not found")
	ErrShareNotFound = fmt.Errorf("%w: shared analysis", ErrNotFound)

	// Share-state errors
	ErrInvalidToken       = errors.New("invalid share token")
	ErrUnsupportedVersion = errors.New("unsupported share token version")
)

// FormatError reports a structurally malformed line: wrong token count,
// non-integer counts, or data before any metric name.
type FormatError struct {
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format (%s) in line: %q", e.Reason, e.Line)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// RangeError reports counts that violate 0 < n and 0 <= x <= n.
type RangeError struct {
	Line   string
	N      int64
	X      int64
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: successes=%d, trials=%d in line: %q", e.Reason, e.X, e.N, e.Line)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// MissingVariantsError reports a metric that ended with fewer than 2 variants.
type MissingVariantsError struct {
	Metric string
	Count  int
}

func (e *MissingVariantsError) Error() string {
	return fmt.Sprintf("metric %q has %d variant(s), at least 2 are required", e.Metric, e.Count)
}

func (e *MissingVariantsError) Unwrap() error { return ErrMissingVariants }

// DuplicateNameError reports a repeated metric name, or a repeated variant
// name within one metric when Variant is set.
type DuplicateNameError struct {
	Metric  string
	Variant string
	Line    string
}

func (e *DuplicateNameError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("variant %q appears more than once in metric %q (line: %q)", e.Variant, e.Metric, e.Line)
	}
	return fmt.Sprintf("metric %q appears more than once (line: %q)", e.Metric, e.Line)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// Error constructors with context
func NewFormatError(line, reason string) error {
	return &FormatError{Line: line, Reason: reason}
}

func NewRangeError(line string, n, x int64, reason string) error {
	return &RangeError{Line: line, N: n, X: x, Reason: reason}
}

func NewMissingVariantsError(metric string, count int) error {
	return &MissingVariantsError{Metric: metric, Count: count}
}

func NewShareNotFoundError(id string) error {
	return fmt.Errorf("%w: %s", ErrShareNotFound, id)
}

// Error checking helpers
func IsParseError(err error) bool {
	return errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrRange) ||
		errors.Is(err, ErrMissingVariants) ||
		errors.Is(err, ErrDuplicateName)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrUnsupportedVersion)
}
