package dcf

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput indicates a required field is missing, non-numeric or
	// not finite. No computation is attempted.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDegenerateConfiguration indicates a combination of assumptions for
	// which the valuation is mathematically undefined.
	ErrDegenerateConfiguration = errors.New("degenerate configuration")
)

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

func degenerate(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDegenerateConfiguration, fmt.Sprintf(format, args...))
}
