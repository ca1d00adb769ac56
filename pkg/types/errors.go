package types

import (
	"errors"
	"fmt"
)

// Fatal error classes of a conversion run.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrParse         = errors.New("parse error")
	ErrSchema        = errors.New("schema error")
	ErrResource      = errors.New("resource error")
)

var (
	ErrMissingTemplate   = fmt.Errorf("%w: no file template for channel", ErrConfiguration)
	ErrUnknownColumn     = fmt.Errorf("%w: column has no measurement mapping", ErrSchema)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported store format", ErrResource)
	ErrKeyNotFound       = errors.New("meter key not found")
)
