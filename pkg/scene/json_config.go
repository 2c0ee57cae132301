package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// Vec3Cfg is a vector written as a JSON array [x, y, z]
type Vec3Cfg [3]float64

// Vec3 converts the array form to a core vector
func (v Vec3Cfg) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// FileConfig is the on-disk description of a scene
type FileConfig struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Camera      CameraCfg      `json:"camera"`
	Sampling    SamplingCfg    `json:"sampling,omitempty"`
	Background  *BackgroundCfg `json:"background,omitempty"`
	Spheres     []SphereCfg    `json:"spheres"`
}

type CameraCfg struct {
	LookFrom Vec3Cfg  `json:"lookFrom"`
	LookAt   Vec3Cfg  `json:"lookAt"`
	Up       *Vec3Cfg `json:"up,omitempty"` // defaults to +Y
	VFov     float64  `json:"vfov"`
	Aperture float64  `json:"aperture,omitempty"`
	// Either an explicit distance or a point that should be in focus.
	// Without both the camera focuses on lookAt.
	FocusDistance float64  `json:"focusDistance,omitempty"`
	FocusPoint    *Vec3Cfg `json:"focusPoint,omitempty"`
}

type SamplingCfg struct {
	Width           int `json:"width,omitempty"`
	Height          int `json:"height,omitempty"`
	SamplesPerPixel int `json:"spp,omitempty"`
	MaxDepth        int `json:"maxDepth,omitempty"`
}

type BackgroundCfg struct {
	Top    Vec3Cfg `json:"top"`
	Bottom Vec3Cfg `json:"bottom"`
}

type SphereCfg struct {
	Center   Vec3Cfg     `json:"center"`
	Radius   float64     `json:"radius"`
	Material MaterialCfg `json:"material"`
}

// MaterialCfg selects a material by type: "lambertian", "metal" or "dielectric"
type MaterialCfg struct {
	Type            string  `json:"type"`
	Albedo          Vec3Cfg `json:"albedo,omitempty"`
	Fuzz            float64 `json:"fuzz,omitempty"`
	RefractiveIndex float64 `json:"refractiveIndex,omitempty"`
}

// Build creates the material described by the config
func (m MaterialCfg) Build() (material.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian":
		return material.NewLambertian(m.Albedo.Vec3()), nil
	case "metal":
		return material.NewMetal(m.Albedo.Vec3(), m.Fuzz), nil
	case "dielectric":
		return material.NewDielectric(m.RefractiveIndex)
	default:
		return nil, fmt.Errorf("%w: unknown material type %q", ErrInvalidScene, m.Type)
	}
}

// Build creates the camera config, resolving the focus distance
func (c CameraCfg) Build() geometry.CameraConfig {
	config := geometry.CameraConfig{
		LookFrom:      c.LookFrom.Vec3(),
		LookAt:        c.LookAt.Vec3(),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          c.VFov,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
	if c.Up != nil {
		config.Up = c.Up.Vec3()
	}
	if config.FocusDistance == 0 {
		focus := config.LookAt
		if c.FocusPoint != nil {
			focus = c.FocusPoint.Vec3()
		}
		config.FocusDistance = config.LookFrom.Subtract(focus).Length()
	}
	return config
}

// Build creates the scene, filling unset sampling fields from the defaults
func (f FileConfig) Build() (*Scene, error) {
	shapes := make([]geometry.Shape, 0, len(f.Spheres))
	for i, sc := range f.Spheres {
		mat, err := sc.Material.Build()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		sphere, err := geometry.NewSphere(sc.Center.Vec3(), sc.Radius, mat)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		shapes = append(shapes, sphere)
	}

	sampling := MergeSamplingConfig(DefaultSamplingConfig(), SamplingConfig{
		Width:           f.Sampling.Width,
		Height:          f.Sampling.Height,
		SamplesPerPixel: f.Sampling.SamplesPerPixel,
		MaxDepth:        f.Sampling.MaxDepth,
	})

	s, err := NewScene(f.Name, f.Camera.Build(), sampling, shapes)
	if err != nil {
		return nil, err
	}
	if f.Background != nil {
		s.Background = Background{Top: f.Background.Top.Vec3(), Bottom: f.Background.Bottom.Vec3()}
	}
	return s, nil
}

// ParseSceneConfig reads a JSON scene description
func ParseSceneConfig(r io.Reader) (*FileConfig, error) {
	var cfg FileConfig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return &cfg, nil
}

// LoadSceneFile loads and builds a JSON scene file.
// A file without a name is named after its base file name.
func LoadSceneFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := ParseSceneConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
