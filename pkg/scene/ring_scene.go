package scene

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

const (
	ringRadius      = 2.5
	ringSphereCount = 12
	ringStepDegrees = 30.0
	hueStep         = 0.25
	glassRingRadius = 1.5
	glassRadius     = 0.42
	glassIndex      = 1.4
)

// ringCameraConfig frames the ring from above with a shallow depth of field
// focused on the chrome sphere.
func ringCameraConfig() geometry.CameraConfig {
	lookFrom := core.NewVec3(8, 6.8, 0)
	return geometry.CameraConfig{
		LookFrom:      lookFrom,
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          25,
		Aperture:      1.2,
		FocusDistance: lookFrom.Subtract(core.NewVec3(0, 1, 0)).Length(),
	}
}

// NewRingScene creates a chrome sphere surrounded by a ring of twelve diffuse
// spheres whose colors cycle red, green, blue and back to red.
func NewRingScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	return newRingScene("ring", false, cameraOverrides...)
}

// NewRingGlassScene is the ring scene with an inner ring of glass spheres
// placed wherever the hue cycle reaches a pure primary.
func NewRingGlassScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	return newRingScene("ring-glass", true, cameraOverrides...)
}

func newRingScene(name string, withGlass bool, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	cameraConfig := ringCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	b := &shapeBuilder{}
	b.sphere(core.NewVec3(0, -1000.01, 0), 1000, material.NewLambertian(core.NewVec3(0.35, 0.35, 0.35)))
	b.sphere(core.NewVec3(0, 1, 0), 1, material.NewMetal(core.NewVec3(0.9, 0.9, 0.9), 0.2))

	var glass material.Material
	if withGlass {
		dielectric, err := material.NewDielectric(glassIndex)
		if err != nil {
			return nil, err
		}
		glass = dielectric
	}

	color := core.NewVec3(1, 0, 0)
	for i := 0; i < ringSphereCount; i++ {
		angle := float64(i) * ringStepDegrees
		color = nextHue(color, angle)

		if withGlass && (color.X == 1 || color.Y == 1 || color.Z == 1) {
			glassAngle := (angle + ringStepDegrees) * math.Pi / 180
			center := core.NewVec3(glassRingRadius*math.Cos(glassAngle), glassRadius, glassRingRadius*math.Sin(glassAngle))
			b.sphere(center, glassRadius, glass)
		}

		theta := angle * math.Pi / 180
		center := core.NewVec3(ringRadius*math.Cos(theta), 0.5, ringRadius*math.Sin(theta))
		b.sphere(center, 0.5, material.NewLambertian(color))
	}

	if b.err != nil {
		return nil, b.err
	}
	return NewScene(name, cameraConfig, DefaultSamplingConfig(), b.shapes)
}

// nextHue moves a quarter step around the red, green, blue cycle.
// Each third of the circle trades one channel for the next.
func nextHue(c core.Vec3, angle float64) core.Vec3 {
	switch {
	case angle < 120:
		return core.NewVec3(c.X-hueStep, c.Y+hueStep, c.Z)
	case angle < 240:
		return core.NewVec3(c.X, c.Y-hueStep, c.Z+hueStep)
	default:
		return core.NewVec3(c.X+hueStep, c.Y, c.Z-hueStep)
	}
}

// shapeBuilder collects spheres and keeps the first construction error
type shapeBuilder struct {
	shapes []geometry.Shape
	err    error
}

func (b *shapeBuilder) sphere(center core.Vec3, radius float64, mat material.Material) {
	if b.err != nil {
		return
	}
	s, err := geometry.NewSphere(center, radius, mat)
	if err != nil {
		b.err = err
		return
	}
	b.shapes = append(b.shapes, s)
}
