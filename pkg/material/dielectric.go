package material

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass.
// It refracts whenever Snell's law allows and reflects only on total internal
// reflection; there is no Fresnel-weighted choice between the two.
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) (*Dielectric, error) {
	if !(refractiveIndex > 0) || math.IsInf(refractiveIndex, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRefractiveIndex, refractiveIndex)
	}
	return &Dielectric{RefractiveIndex: refractiveIndex}, nil
}

// Scatter implements the Material interface for dielectric scattering
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass does not tint
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	// Orient the normal against the ray and pick the relative index
	var normal core.Vec3
	var eta float64
	if rayIn.Direction.Dot(hit.Normal) > 0 {
		// Exiting the material (glass to air)
		normal = hit.Normal.Negate()
		eta = d.RefractiveIndex
	} else {
		// Entering the material (air to glass)
		normal = hit.Normal
		eta = 1.0 / d.RefractiveIndex
	}

	var direction core.Vec3
	if refracted, ok := refract(rayIn.Direction, normal, eta); ok {
		direction = refracted
	} else {
		// Total internal reflection, about the unoriented hit normal
		direction = Reflect(rayIn.Direction, hit.Normal)
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// refract bends v through a surface with normal n using Snell's law.
// It returns false on total internal reflection.
func refract(v, n core.Vec3, eta float64) (core.Vec3, bool) {
	unitDirection := v.Normalize()
	dt := unitDirection.Dot(n)
	discriminant := 1.0 - eta*eta*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return unitDirection.Multiply(eta).Subtract(n.Multiply(eta*dt + math.Sqrt(discriminant))), true
}
