package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrExport        = errors.New("metrics export failed")
	ErrInvalidOption = errors.New("invalid metrics option")
)
