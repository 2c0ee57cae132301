package renderer

import "errors"

var (
	ErrInvalidDimensions = errors.New("renderer: image dimensions must be positive")
	ErrInvalidConfig     = errors.New("renderer: invalid progressive configuration")
	ErrInterrupted       = errors.New("renderer: interrupted while rendering")
)
