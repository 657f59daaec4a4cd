// Package landmark defines the tracked point sets produced by the detector.
package landmark

import "github.com/go-gl/mathgl/mgl64"

// Point is a single tracked landmark in detector space.
type Point = mgl64.Vec3

// Set is an index-addressed sequence of landmarks for one inference cycle.
// The index scheme is fixed by the detector (see the constants below).
type Set []Point

// Zero returns a set of count points at the origin.
func Zero(count int) Set {
	return make(Set, count)
}

// At returns the point at index i. ok is false when the detector did not
// produce that index this frame.
func (s Set) At(i int) (p Point, ok bool) {
	if i < 0 || i >= len(s) {
		return Point{}, false
	}
	return s[i], true
}

// Clone returns a copy that does not alias s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return a.Sub(b).Len()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return a.Add(b).Mul(0.5)
}
