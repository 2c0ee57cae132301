package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// NewMaterialsScene creates three spheres side by side, one per material,
// on a large ground sphere.
func NewMaterialsScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	cameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(0, 0.75, 2.5),
		LookAt:        core.NewVec3(0, 0.4, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		Aperture:      0,
		FocusDistance: 3.5,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	glass, err := material.NewDielectric(1.5)
	if err != nil {
		return nil, err
	}

	b := &shapeBuilder{}
	b.sphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	b.sphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	b.sphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3))
	b.sphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	if b.err != nil {
		return nil, b.err
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Width = 400
	samplingConfig.Height = 225
	samplingConfig.SamplesPerPixel = 100
	return NewScene("materials", cameraConfig, samplingConfig, b.shapes)
}
