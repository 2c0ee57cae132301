package material

import "errors"

// ErrInvalidRefractiveIndex is returned for a non-positive or non-finite index of refraction
var ErrInvalidRefractiveIndex = errors.New("material: refractive index must be positive and finite")
