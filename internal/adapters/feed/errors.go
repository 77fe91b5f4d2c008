package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrRequest = errors.New("feed request failed")
	ErrStatus  = errors.New("feed returned non-success status")
	ErrParse   = errors.New("feed parse failed")
)
