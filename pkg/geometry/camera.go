package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // World vertical
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole camera
	FocusDistance float64   // Distance to the plane in perfect focus
}

// Camera generates rays for rendering using a thin-lens model
type Camera struct {
	config CameraConfig

	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := validateCameraConfig(config); err != nil {
		return nil, err
	}

	theta := config.VFov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight
	focus := config.FocusDistance

	// Orthonormal basis: w points backwards, u right, v up
	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	lowerLeftCorner := origin.
		Subtract(u.Multiply(halfWidth * focus)).
		Subtract(v.Multiply(halfHeight * focus)).
		Subtract(w.Multiply(focus))

	return &Camera{
		config:          config,
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      u.Multiply(2 * halfWidth * focus),
		vertical:        v.Multiply(2 * halfHeight * focus),
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}, nil
}

// GetRay generates a ray for normalized image coordinates (s, t) where 0 <= s,t <= 1.
// (0, 0) is the lower left corner of the image.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	lensPoint := core.UniformInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(lensPoint.X).Add(c.v.Multiply(lensPoint.Y))

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	return core.NewRay(c.origin.Add(offset), direction)
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// MergeCameraConfig returns base with every non-zero field of override applied.
// A zero field means "unset", so an override cannot select a pinhole camera
// (Aperture 0) or place LookFrom, LookAt or Up at the origin; callers that
// need those values pass a complete CameraConfig instead of merging.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.LookFrom.IsZero() {
		result.LookFrom = override.LookFrom
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

func validateCameraConfig(config CameraConfig) error {
	if !config.LookFrom.IsFinite() || !config.LookAt.IsFinite() || !config.Up.IsFinite() {
		return fmt.Errorf("%w: positions must be finite", ErrInvalidCamera)
	}
	if config.LookFrom.Equals(config.LookAt) {
		return fmt.Errorf("%w: lookFrom and lookAt coincide at %v", ErrInvalidCamera, config.LookFrom)
	}
	if config.Up.Cross(config.LookFrom.Subtract(config.LookAt)).IsZero() {
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidCamera, config.Up)
	}
	if !(config.VFov > 0 && config.VFov < 180) {
		return fmt.Errorf("%w: vertical field of view must be in (0, 180), got %v", ErrInvalidCamera, config.VFov)
	}
	if !(config.AspectRatio > 0) || math.IsInf(config.AspectRatio, 0) {
		return fmt.Errorf("%w: aspect ratio must be positive, got %v", ErrInvalidCamera, config.AspectRatio)
	}
	if !(config.Aperture >= 0) || math.IsInf(config.Aperture, 0) {
		return fmt.Errorf("%w: aperture must be non-negative, got %v", ErrInvalidCamera, config.Aperture)
	}
	if !(config.FocusDistance > 0) || math.IsInf(config.FocusDistance, 0) {
		return fmt.Errorf("%w: focus distance must be positive, got %v", ErrInvalidCamera, config.FocusDistance)
	}
	return nil
}
