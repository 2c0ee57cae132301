package scene

import "errors"

var (
	ErrUnknownScene  = errors.New("scene: unknown scene")
	ErrInvalidScene  = errors.New("scene: invalid scene")
	ErrInvalidConfig = errors.New("scene: invalid sampling configuration")
)
