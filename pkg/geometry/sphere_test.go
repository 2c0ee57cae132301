package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

func newTestSphere(t *testing.T, center core.Vec3, radius float64) *Sphere {
	t.Helper()
	sphere, err := NewSphere(center, radius, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	return sphere
}

func TestNewSphere_Validation(t *testing.T) {
	lambertian := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	tests := []struct {
		name     string
		center   core.Vec3
		radius   float64
		mat      material.Material
		expected error
	}{
		{"valid", core.NewVec3(0, 0, 0), 1, lambertian, nil},
		{"zero radius", core.NewVec3(0, 0, 0), 0, lambertian, ErrInvalidRadius},
		{"negative radius", core.NewVec3(0, 0, 0), -0.24, lambertian, ErrInvalidRadius},
		{"NaN radius", core.NewVec3(0, 0, 0), math.NaN(), lambertian, ErrInvalidRadius},
		{"infinite radius", core.NewVec3(0, 0, 0), math.Inf(1), lambertian, ErrInvalidRadius},
		{"NaN center", core.NewVec3(math.NaN(), 0, 0), 1, lambertian, ErrInvalidCenter},
		{"nil material", core.NewVec3(0, 0, 0), 1, nil, ErrNilMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere, err := NewSphere(tt.center, tt.radius, tt.mat)
			if tt.expected == nil {
				if err != nil || sphere == nil {
					t.Fatalf("Expected valid sphere, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
			if sphere != nil {
				t.Error("Expected nil sphere on error")
			}
		})
	}
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_TangentIsMiss(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(0, 0, 0), 1.0)
	// Grazes the sphere at (1, 0, 0): discriminant is exactly zero
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	if _, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Tangent ray should not count as a hit")
	}
}

func TestSphere_Hit_RootSelection(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(0, 0, 0), 1.0)
	// Roots at t=1 and t=3 along a non-normalized direction (|d| = 2 halves them to 0.5 and 1.5)
	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		tMin      float64
		tMax      float64
		expectHit bool
		expectedT float64
	}{
		{"near root in range", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 0.001, math.Inf(1), true, 1},
		{"near root excluded by tMin", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 1.5, math.Inf(1), true, 3},
		{"tMin equal to near root is exclusive", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 1, math.Inf(1), true, 3},
		{"both roots beyond tMax", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 0.001, 0.5, false, 0},
		{"tMax equal to near root is exclusive", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 0.001, 1, false, 0},
		{"origin inside sphere", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 0.001, math.Inf(1), true, 1},
		{"sphere behind ray", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 1), 0.001, math.Inf(1), false, 0},
		{"non-normalized direction", core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -2), 0.001, math.Inf(1), true, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(core.NewRay(tt.origin, tt.direction), tt.tMin, tt.tMax)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, isHit)
			}
			if !isHit {
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
		})
	}
}

func TestSphere_Hit_Normal(t *testing.T) {
	center := core.NewVec3(1, 2, 3)
	radius := 2.0
	sphere := newTestSphere(t, center, radius)

	ray := core.NewRay(core.NewVec3(1, 2, 10), core.NewVec3(0.1, -0.2, -1))
	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}

	expectedNormal := hit.Point.Subtract(center).Divide(radius)
	if !hit.Normal.Equals(expectedNormal) {
		t.Errorf("Expected normal %v, got %v", expectedNormal, hit.Normal)
	}
	if math.Abs(hit.Normal.Length()-1) > 1e-9 {
		t.Errorf("Normal should be unit length, got %f", hit.Normal.Length())
	}
	// Outward facing even though the ray hits from outside
	if hit.Normal.Dot(ray.Direction) >= 0 {
		t.Errorf("Normal %v should face the incoming ray", hit.Normal)
	}
	if !hit.Point.Equals(ray.At(hit.T)) {
		t.Errorf("Hit point should equal ray.At(t)")
	}
	if hit.Material != sphere.Material {
		t.Error("Hit record should reference the sphere's material")
	}
}

func TestSphere_Hit_NormalOutwardFromInside(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(0, 0, 0), 1.0)
	hit, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	// No face flipping: the normal still points away from the center
	if !hit.Normal.Equals(core.NewVec3(0, 0, 1)) {
		t.Errorf("Expected outward normal (0, 0, 1), got %v", hit.Normal)
	}
}
