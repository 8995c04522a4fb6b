package geometry

import "errors"

var (
	ErrInvalidRadius = errors.New("geometry: radius must be positive")
	ErrNonFinite     = errors.New("geometry: non-finite coordinate")
	ErrNilMaterial   = errors.New("geometry: shape has no material")
	ErrInvalidCamera = errors.New("geometry: invalid camera configuration")
)
