package core

import (
	"errors"
	"math/rand"
)

// MaxRejectionAttempts bounds the rejection loops. With a uniform source the
// acceptance rate is above 50%, so reaching it means the sampler is broken.
const MaxRejectionAttempts = 1 << 12

// ErrSamplerExhausted is the panic value raised when a rejection loop hits MaxRejectionAttempts
var ErrSamplerExhausted = errors.New("core: rejection sampling did not converge")

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// A RandomSampler must not be shared between goroutines.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler backed by its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// UniformInUnitBall returns a point uniformly distributed inside the solid unit ball
func UniformInUnitBall(sampler Sampler) Vec3 {
	for i := 0; i < MaxRejectionAttempts; i++ {
		p := sampler.Get3D().Multiply(2).Subtract(NewVec3(1, 1, 1))
		if p.LengthSquared() < 1 {
			return p
		}
	}
	panic(ErrSamplerExhausted)
}

// UniformInUnitDisk returns a point uniformly distributed inside the unit disk
// in the XY plane. Three values are drawn per attempt and Z is discarded.
func UniformInUnitDisk(sampler Sampler) Vec3 {
	for i := 0; i < MaxRejectionAttempts; i++ {
		p := sampler.Get3D().Multiply(2).Subtract(NewVec3(1, 1, 1))
		if p.X*p.X+p.Y*p.Y < 1 {
			return NewVec3(p.X, p.Y, 0)
		}
	}
	panic(ErrSamplerExhausted)
}

// SequenceSampler replays a fixed list of values in order, wrapping around at the end.
// It makes sampling decisions reproducible in tests and debug renders.
type SequenceSampler struct {
	values []float64
	next   int
}

// NewSequenceSampler creates a sampler cycling through values; with no values it always returns 0.5
func NewSequenceSampler(values ...float64) *SequenceSampler {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &SequenceSampler{values: values}
}

// Get1D returns the next value in the sequence
func (s *SequenceSampler) Get1D() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Get2D returns the next two values in the sequence
func (s *SequenceSampler) Get2D() Vec2 {
	x := s.Get1D()
	return NewVec2(x, s.Get1D())
}

// Get3D returns the next three values in the sequence
func (s *SequenceSampler) Get3D() Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return NewVec3(x, y, s.Get1D())
}
