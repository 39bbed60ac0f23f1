package core

import (
	"math"

	"github.com/spacegps/transfer-planner/model"
)

// Vec3 is a Cartesian vector in the primary-centred inertial frame,
// in metres (or m/s when used as a velocity).
type Vec3 struct {
	X, Y, Z float64
}

// FromModel converts a model vector into the geometry layer's type.
func FromModel(v model.Vec3) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// ToModel converts back to the model type for storage and serialization.
func (v Vec3) ToModel() model.Vec3 { return model.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product v × other.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Normalized returns the unit vector in v's direction, or the zero vector
// when v has zero length.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// OnCircle returns the position at angle theta (radians from +X) on a
// circle of radius r in the XY plane.
func OnCircle(r, theta float64) Vec3 {
	return Vec3{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// TangentAt returns the prograde unit direction at angle theta on a
// counter-clockwise circular orbit in the XY plane.
func TangentAt(theta float64) Vec3 {
	return Vec3{X: -math.Sin(theta), Y: math.Cos(theta)}
}

// WrapAngle normalizes an angle to [0, 2π).
func WrapAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}
