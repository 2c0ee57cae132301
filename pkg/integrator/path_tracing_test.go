package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

var (
	skyTop    = core.NewVec3(0.5, 0.7, 1.0)
	skyBottom = core.NewVec3(1.0, 1.0, 1.0)
)

// countingMaterial scatters straight up with a fixed attenuation and counts calls
type countingMaterial struct {
	attenuation core.Vec3
	absorb      bool
	calls       int
}

func (m *countingMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	m.calls++
	if m.absorb {
		return material.ScatterResult{}, false
	}
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
		Attenuation: m.attenuation,
	}, true
}

// mockWorld reports a hit for the first hits queries and misses afterwards.
// A negative hits value hits forever.
type mockWorld struct {
	mat     material.Material
	hits    int
	queries int
}

func (w *mockWorld) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	w.queries++
	if w.hits == 0 {
		return nil, false
	}
	if w.hits > 0 {
		w.hits--
	}
	return &material.HitRecord{
		T:        1,
		Point:    ray.At(1),
		Normal:   core.NewVec3(0, 1, 0),
		Material: w.mat,
	}, true
}

func (w *mockWorld) BackgroundColors() (top, bottom core.Vec3) {
	return skyTop, skyBottom
}

func TestPathTracing_BackgroundGradient(t *testing.T) {
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 50})
	world := &mockWorld{}
	sampler := core.NewSequenceSampler()

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), skyTop},
		{"straight up unnormalized", core.NewVec3(0, 7, 0), skyTop},
		{"straight down", core.NewVec3(0, -1, 0), skyBottom},
		{"horizontal", core.NewVec3(0, 0, -1), core.NewVec3(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := integrator.RayColor(core.NewRay(core.Vec3{}, tt.direction), world, sampler)
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPathTracing_AbsorbedRayIsBlack(t *testing.T) {
	mat := &countingMaterial{absorb: true}
	world := &mockWorld{mat: mat, hits: -1}
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 50})

	got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, core.NewSequenceSampler())
	if !got.IsZero() {
		t.Errorf("Expected black, got %v", got)
	}
	if mat.calls != 1 {
		t.Errorf("Expected a single scatter attempt, got %d", mat.calls)
	}
}

func TestPathTracing_DepthCutoff(t *testing.T) {
	tests := []struct {
		maxDepth      int
		expectedCalls int
	}{
		{1, 2},
		{5, 6},
		{50, 51},
	}

	for _, tt := range tests {
		mat := &countingMaterial{attenuation: core.NewVec3(1, 1, 1)}
		world := &mockWorld{mat: mat, hits: -1}
		integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: tt.maxDepth})

		got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, core.NewSequenceSampler())
		if !got.IsZero() {
			t.Errorf("MaxDepth %d: a ray that never escapes should be black, got %v", tt.maxDepth, got)
		}
		if mat.calls != tt.expectedCalls {
			t.Errorf("MaxDepth %d: expected %d scatter calls, got %d", tt.maxDepth, tt.expectedCalls, mat.calls)
		}
	}
}

func TestPathTracing_DefaultMaxDepth(t *testing.T) {
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{})
	if integrator.MaxDepth() != DefaultMaxDepth {
		t.Errorf("Expected default max depth %d, got %d", DefaultMaxDepth, integrator.MaxDepth())
	}
}

func TestPathTracing_AttenuationMultiplies(t *testing.T) {
	tests := []struct {
		name     string
		bounces  int
		expected core.Vec3
	}{
		{"no bounce", 0, skyTop},
		{"one bounce", 1, core.NewVec3(0.25, 0.35, 0.5)},
		{"two bounces", 2, core.NewVec3(0.125, 0.175, 0.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := &countingMaterial{attenuation: core.NewVec3(0.5, 0.5, 0.5)}
			world := &mockWorld{mat: mat, hits: tt.bounces}
			integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 50})

			got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), world, core.NewSequenceSampler())
			if !got.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPathTracing_LastAllowedBounceStillSeesSky(t *testing.T) {
	// The final scatter at depth MaxDepth-1 may still escape to the sky
	mat := &countingMaterial{attenuation: core.NewVec3(1, 1, 1)}
	world := &mockWorld{mat: mat, hits: 3}
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 3})

	got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), world, core.NewSequenceSampler())
	if !got.Equals(skyTop) {
		t.Errorf("Expected sky after three bounces, got %v", got)
	}
}

func TestPathTracing_SceneSphere(t *testing.T) {
	lambertian := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))
	sphere, err := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, lambertian)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	sc, err := scene.NewScene("test", geometry.CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		FocusDistance: 1,
	}, scene.DefaultSamplingConfig(), []geometry.Shape{sphere})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	integrator := NewPathTracingIntegrator(sc.SamplingConfig)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	var sum core.Vec3
	const n = 200
	for i := 0; i < n; i++ {
		c := integrator.RayColor(ray, sc, sampler)
		if c.X < 0 || c.Y < 0 || c.Z < 0 || c.X > 1 || c.Y > 1 || c.Z > 1 {
			t.Fatalf("Color %v outside [0, 1]", c)
		}
		sum = sum.Add(c)
	}
	avg := sum.Multiply(1.0 / n)

	// Every path ends in the sky after one bounce off a reddish albedo
	if avg.X <= avg.Y || avg.X > 0.7 {
		t.Errorf("Expected a reddish color no brighter than the albedo, got %v", avg)
	}
	// The sky's blue channel is 1 everywhere, so blue is exactly the albedo
	if math.Abs(avg.Z-0.3) > 1e-9 {
		t.Errorf("Expected blue channel 0.3, got %f", avg.Z)
	}
}
