package core

import (
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		got      Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Divide", b.Divide(2), NewVec3(2, -2.5, 3)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"DivideVec", b.DivideVec(NewVec3(2, 5, 3)), NewVec3(2, -1, 2)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"Cross anticommutes", NewVec3(0, 1, 0).Cross(NewVec3(1, 0, 0)), NewVec3(0, 0, -1)},
		{"Clamp", NewVec3(-0.5, 0.5, 1.5).Clamp(0, 1), NewVec3(0, 0.5, 1)},
		{"Sqrt", NewVec3(0.25, 1, 0).Sqrt(), NewVec3(0.5, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestVec3_DotAndLength(t *testing.T) {
	v := NewVec3(2, 3, 6)

	if v.Dot(NewVec3(1, 1, 1)) != 11 {
		t.Errorf("Expected dot 11, got %f", v.Dot(NewVec3(1, 1, 1)))
	}
	if v.LengthSquared() != 49 {
		t.Errorf("Expected squared length 49, got %f", v.LengthSquared())
	}
	if v.Length() != 7 {
		t.Errorf("Expected length 7, got %f", v.Length())
	}
}

func TestVec3_Normalize(t *testing.T) {
	n := NewVec3(3, 0, 4).Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", n.Length())
	}
	if !n.Equals(NewVec3(0.6, 0, 0.8)) {
		t.Errorf("Expected (0.6, 0, 0.8), got %v", n)
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("Zero vector should normalize to zero, got %v", zero)
	}
}

func TestVec3_EqualsIsExact(t *testing.T) {
	a := NewVec3(0.1, 0.2, 0.3)
	b := NewVec3(0.1, 0.2, 0.3+1e-15)
	if a.Equals(b) {
		t.Error("Equals should not use a tolerance")
	}
	if !a.Equals(NewVec3(0.1, 0.2, 0.3)) {
		t.Error("Identical vectors should be equal")
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Expected finite vector")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if NewVec3(0, math.Inf(-1), 0).IsFinite() {
		t.Error("Infinite component should not be finite")
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 2, 0))
	if p := ray.At(1.5); !p.Equals(NewVec3(1, 4, 1)) {
		t.Errorf("Expected (1, 4, 1), got %v", p)
	}
}
