package integrator

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

const (
	// DefaultMaxDepth is the bounce limit used when the config leaves it unset
	DefaultMaxDepth = 50

	// ShadowAcneEpsilon is the minimum hit distance, so scattered rays do not
	// re-hit the surface they leave from
	ShadowAcneEpsilon = 0.001
)

// PathTracingIntegrator implements recursive unidirectional path tracing
// with a fixed bounce limit and a sky gradient for escaping rays.
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	return &PathTracingIntegrator{
		config: config,
	}
}

// MaxDepth returns the bounce limit
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.config.MaxDepth
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3 {
	return pt.rayColorRecursive(ray, world, sampler, 0)
}

// rayColorRecursive returns the color for a ray that has already bounced depth times
func (pt *PathTracingIntegrator) rayColorRecursive(ray core.Ray, world World, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return pt.backgroundGradient(ray, world)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{} // Material absorbed the ray
	}

	// Bounce limit reached, no more light is gathered
	if depth >= pt.config.MaxDepth {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(
		pt.rayColorRecursive(scatter.Scattered, world, sampler, depth+1))
}

// backgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) backgroundGradient(r core.Ray, world World) core.Vec3 {
	topColor, bottomColor := world.BackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1, 1] to [0, 1]
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}
