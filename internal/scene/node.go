// Package scene is a minimal scene graph for rigged avatar assets. The
// renderer owns the graph; retargeting code writes bone rotations and morph
// target influences into it in place.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind classifies a node.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindBone
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindBone:
		return "bone"
	default:
		return "group"
	}
}

// Node is an element of the scene graph. Rotation (Euler XYZ, radians) and
// Quaternion always describe the same orientation; use SetRotation or
// SetQuaternion to change them.
type Node struct {
	Name        string
	Kind        Kind
	Translation mgl64.Vec3
	Rotation    mgl64.Vec3
	Quaternion  mgl64.Quat
	Scale       mgl64.Vec3

	Parent   *Node
	Children []*Node

	Mesh *Mesh
}

// Mesh carries the morph target state of a mesh node.
type Mesh struct {
	// MorphTargetDictionary maps target names to indices in Influences.
	MorphTargetDictionary map[string]int
	// Influences is read by the renderer every frame.
	Influences []float32
	Skeleton   *Skeleton
}

// Skeleton is the ordered joint list a skinned mesh is bound to.
type Skeleton struct {
	Bones []*Node
}

// NewNode returns a node at the origin with identity rotation.
func NewNode(name string, kind Kind) *Node {
	return &Node{
		Name:       name,
		Kind:       kind,
		Quaternion: mgl64.QuatIdent(),
		Scale:      mgl64.Vec3{1, 1, 1},
	}
}

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.Parent != nil {
		child.Parent.Remove(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child from n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// SetRotation sets the Euler rotation and the matching quaternion.
func (n *Node) SetRotation(x, y, z float64) {
	n.Rotation = mgl64.Vec3{x, y, z}
	n.Quaternion = QuatFromEuler(n.Rotation)
}

// SetQuaternion sets the quaternion and the matching Euler rotation.
func (n *Node) SetQuaternion(q mgl64.Quat) {
	n.Quaternion = q.Normalize()
	n.Rotation = EulerFromQuat(n.Quaternion)
}

// WorldQuaternion is the node's orientation in scene space.
func (n *Node) WorldQuaternion() mgl64.Quat {
	q := n.Quaternion
	for p := n.Parent; p != nil; p = p.Parent {
		q = p.Quaternion.Mul(q)
	}
	return q
}

// Traverse calls fn for n and every descendant, parents first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Find returns the first node named name in n's subtree.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Bind attaches the mesh to a skeleton.
func (m *Mesh) Bind(s *Skeleton) {
	m.Skeleton = s
}

// QuatFromEuler builds the quaternion for an intrinsic XYZ Euler rotation.
func QuatFromEuler(e mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(e.X(), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(e.Y(), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(e.Z(), mgl64.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz)
}

// EulerFromQuat decomposes q into intrinsic XYZ Euler angles.
func EulerFromQuat(q mgl64.Quat) mgl64.Vec3 {
	m := q.Normalize().Mat4()
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	y := math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		return mgl64.Vec3{math.Atan2(-m23, m33), y, math.Atan2(-m12, m11)}
	}
	return mgl64.Vec3{math.Atan2(m32, m22), y, 0}
}
