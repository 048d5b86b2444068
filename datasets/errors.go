package datasets

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfBounds is matched by every *BoundsError.
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid dataset configuration")

	// ErrZeroDeviation is reported when whitening statistics have no spread.
	ErrZeroDeviation = errors.New("standard deviation is zero")
)

// BoundsError reports a Get outside [0, Len).
type BoundsError struct {
	Index int
	Len   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// ConfigurationError reports a wrapper that cannot be constructed from its arguments.
type ConfigurationError struct {
	Wrapper string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Wrapper, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Wrapper, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func checkBounds(n, length int) error {
	if n < 0 || n >= length {
		return &BoundsError{Index: n, Len: length}
	}
	return nil
}

func misconfigured(wrapper, format string, args ...interface{}) error {
	return &ConfigurationError{Wrapper: wrapper, Reason: fmt.Sprintf(format, args...)}
}
