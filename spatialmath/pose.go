// Package spatialmath defines the rigid transform math used to place submaps in the world.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid transform in 3D, a rotation followed by a translation.
// The zero value is not a valid Pose; use one of the constructors.
type Pose struct {
	rotation    quat.Number
	translation r3.Vector
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return Pose{rotation: quat.Number{Real: 1}}
}

// NewPose returns a Pose with the given translation and rotation quaternion.
func NewPose(point r3.Vector, rotation quat.Number) Pose {
	return Pose{rotation: rotation, translation: point}
}

// NewPoseFromPoint returns a pure translation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{rotation: quat.Number{Real: 1}, translation: point}
}

// NewPoseFromAxisAngle returns a Pose rotating by theta radians about the given
// axis, then translating to point. The axis need not be normalized.
func NewPoseFromAxisAngle(point, axis r3.Vector, theta float64) Pose {
	if axis.Norm() == 0 {
		return NewPoseFromPoint(point)
	}
	axis = axis.Normalize()
	s := math.Sin(theta / 2)
	return Pose{
		rotation: quat.Number{
			Real: math.Cos(theta / 2),
			Imag: s * axis.X,
			Jmag: s * axis.Y,
			Kmag: s * axis.Z,
		},
		translation: point,
	}
}

// Point returns the translation component.
func (p Pose) Point() r3.Vector {
	return p.translation
}

// Rotation returns the rotation quaternion.
func (p Pose) Rotation() quat.Number {
	return p.rotation
}

// Transform applies the pose to a point.
func (p Pose) Transform(pt r3.Vector) r3.Vector {
	q := quat.Mul(quat.Mul(p.rotation, quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}), quat.Conj(p.rotation))
	return r3.Vector{X: q.Imag + p.translation.X, Y: q.Jmag + p.translation.Y, Z: q.Kmag + p.translation.Z}
}

// Compose returns the transform equivalent to applying b first, then a.
func Compose(a, b Pose) Pose {
	return Pose{
		rotation:    quat.Mul(a.rotation, b.rotation),
		translation: a.Transform(b.translation),
	}
}

// Mat4 returns the pose as a homogeneous 4x4 matrix.
func (p Pose) Mat4() mgl64.Mat4 {
	q := mgl64.Quat{
		W: p.rotation.Real,
		V: mgl64.Vec3{p.rotation.Imag, p.rotation.Jmag, p.rotation.Kmag},
	}
	return mgl64.Translate3D(p.translation.X, p.translation.Y, p.translation.Z).Mul4(q.Mat4())
}

// AlmostEqual reports whether two poses agree to within a small epsilon, useful
// in tests.
func AlmostEqual(a, b Pose) bool {
	const epsilon = 1e-8
	if a.translation.Sub(b.translation).Norm() > epsilon {
		return false
	}
	// q and -q are the same rotation
	d := quat.Sub(a.rotation, b.rotation)
	s := quat.Add(a.rotation, b.rotation)
	return quatNorm(d) < epsilon || quatNorm(s) < epsilon
}

func quatNorm(q quat.Number) float64 {
	return math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}
