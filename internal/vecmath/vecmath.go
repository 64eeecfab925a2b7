// Package vecmath provides the few vector operations the acceleration model needs.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a three component vector (x, y, z). Motion is confined to the
// horizontal x/y plane; z is carried but never contributes to speed.
type Vec3 = mgl64.Vec3

// Horizontal returns a vector with the given x and y components and z = 0.
func Horizontal(x, y float64) Vec3 {
	return Vec3{x, y, 0}
}

// Dot returns the dot product over all three components.
func Dot(a, b Vec3) float64 {
	return a.Dot(b)
}

// Normalize scales v to unit length in place and returns its original length.
// A zero vector is left unchanged and 0 is returned.
func Normalize(v *Vec3) float64 {
	length := v.Len()
	if length == 0 {
		return 0
	}
	*v = v.Mul(1 / length)
	return length
}

// PerpendicularHorizontal rotates the x/y components 90 degrees counter-clockwise
// and keeps z.
func PerpendicularHorizontal(v Vec3) Vec3 {
	return Vec3{-v[1], v[0], v[2]}
}

// HorizontalSpeed returns the magnitude of the x/y components.
func HorizontalSpeed(v Vec3) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// HorizontalDistance returns |a.x-b.x| + |a.y-b.y|.
func HorizontalDistance(a, b Vec3) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1])
}
