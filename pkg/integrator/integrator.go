package integrator

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// TraceRay returns the color carried back along ray. depth is the
	// remaining recursion budget and weight the energy accumulated so far.
	TraceRay(ray core.Ray, depth int, weight core.Vec3) core.Vec3
}
