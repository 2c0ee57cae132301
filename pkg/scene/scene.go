package scene

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering.
// The shape list is fixed at construction and only read afterwards, so a
// Scene may be shared by any number of render workers.
type Scene struct {
	Name           string
	CameraConfig   geometry.CameraConfig // AspectRatio is derived from the image size when zero
	SamplingConfig SamplingConfig
	Background     Background

	shapes []geometry.Shape
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// Background is the sky gradient returned for rays that escape the scene
type Background struct {
	Top    core.Vec3 // Color looking straight up
	Bottom core.Vec3 // Color looking straight down
}

// DefaultBackground returns the white to sky-blue gradient
func DefaultBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           640,
		Height:          360,
		SamplesPerPixel: 64,
		MaxDepth:        50,
	}
}

// NewScene creates a scene over a copy of shapes
func NewScene(name string, cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig, shapes []geometry.Shape) (*Scene, error) {
	if err := samplingConfig.Validate(); err != nil {
		return nil, err
	}
	for i, shape := range shapes {
		if shape == nil {
			return nil, fmt.Errorf("%w: shape %d is nil", ErrInvalidScene, i)
		}
	}

	s := &Scene{
		Name:           name,
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
		Background:     DefaultBackground(),
		shapes:         append([]geometry.Shape(nil), shapes...),
	}

	// Fail at construction rather than at render time
	if _, err := s.NewCamera(samplingConfig.Width, samplingConfig.Height); err != nil {
		return nil, err
	}
	return s, nil
}

// Hit returns the nearest intersection across all shapes with tMin < t < tMax
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	_, hit, isHit := s.HitShape(ray, tMin, tMax)
	return hit, isHit
}

// HitShape is Hit that also reports which shape was hit.
// Each accepted hit narrows the search range for the remaining shapes.
func (s *Scene) HitShape(ray core.Ray, tMin, tMax float64) (geometry.Shape, *material.HitRecord, bool) {
	var closestShape geometry.Shape
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range s.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
			closestShape = shape
		}
	}

	return closestShape, closestHit, closestHit != nil
}

// BackgroundColors returns the sky gradient end points
func (s *Scene) BackgroundColors() (top, bottom core.Vec3) {
	return s.Background.Top, s.Background.Bottom
}

// Shapes returns a copy of the scene's shapes in order
func (s *Scene) Shapes() []geometry.Shape {
	return append([]geometry.Shape(nil), s.shapes...)
}

// ShapeCount returns the number of shapes in the scene
func (s *Scene) ShapeCount() int {
	return len(s.shapes)
}

// NewCamera builds the scene camera for an image of the given size.
// The aspect ratio comes from the image unless the camera config fixes one.
func (s *Scene) NewCamera(width, height int) (*geometry.Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, width, height)
	}
	config := s.CameraConfig
	if config.AspectRatio == 0 {
		config.AspectRatio = float64(width) / float64(height)
	}
	return geometry.NewCamera(config)
}

// Validate checks that every field holds a usable value
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// MergeSamplingConfig returns base with every non-zero field of override applied
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	return result
}
