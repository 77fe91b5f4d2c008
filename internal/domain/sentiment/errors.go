package sentiment

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrClassify              = errors.New("classification failed")
	ErrInvalidClassification = errors.New("invalid classification")
)
