package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/hologram/internal/landmark"
	"github.com/normanking/hologram/internal/scene"
)

// Detector output is in display space: x to the right of the image, y down
// and z away from the camera. Avatars face the camera, so the axes are
// flipped into avatar world space per convention.
var (
	gltfDisplayToAvatar = mgl64.Vec3{1, -1, -1}
	vrmDisplayToAvatar  = mgl64.Vec3{-1, -1, 1}
)

const legClamp = 45 * math.Pi / 180

// Tracker drives arm, hand, finger and optionally leg bones from smoothed
// body landmarks. It is bound to one avatar scene by Init.
type Tracker struct {
	bones    map[string]*scene.Node
	rest     map[string]mgl64.Quat
	vrm      bool
	fullBody bool
}

// NewTracker returns an unbound tracker.
func NewTracker() *Tracker {
	return &Tracker{
		bones: make(map[string]*scene.Node),
		rest:  make(map[string]mgl64.Quat),
	}
}

// Init binds the tracker to the bones under root, remembering each bone's
// rest orientation. vrm selects VRM naming and axis conventions.
func (t *Tracker) Init(root *scene.Node, vrm bool) {
	t.vrm = vrm
	clear(t.bones)
	clear(t.rest)
	root.Traverse(func(n *scene.Node) {
		if n.Kind != scene.KindBone {
			return
		}
		name, ok := CanonicalName(n.Name, vrm)
		if !ok {
			return
		}
		if _, dup := t.bones[name]; dup {
			return
		}
		t.bones[name] = n
		t.rest[name] = n.Quaternion
	})
}

// SetFullBody enables spine and leg tracking. Arms and hands are always
// tracked.
func (t *Tracker) SetFullBody(on bool) { t.fullBody = on }

// FullBody reports whether spine and leg tracking is enabled.
func (t *Tracker) FullBody() bool { return t.fullBody }

// Bones returns the number of bound bones.
func (t *Tracker) Bones() int { return len(t.bones) }

// Apply poses the bound bones from one smoothed prediction. Missing bones
// and landmark groups are skipped; a lost hand returns the hand to identity
// and its fingers to rest.
func (t *Tracker) Apply(p *Prediction) {
	if p == nil {
		return
	}
	pose := p.Pose

	if t.fullBody && len(pose) > 0 {
		t.applySpine(pose)
		t.applyLegs(pose)
	}

	if len(pose) > 0 {
		leftParent := mgl64.Vec3{1, 0, 0}
		rightParent := mgl64.Vec3{-1, 0, 0}
		if t.fullBody {
			leftParent = diff(pose, landmark.PoseRightShoulder, landmark.PoseLeftShoulder)
			rightParent = diff(pose, landmark.PoseLeftShoulder, landmark.PoseRightShoulder)
		}
		t.rotateFromDiff(LeftArm, leftParent,
			diff(pose, landmark.PoseLeftShoulder, landmark.PoseLeftElbow))
		t.rotateFromDiff(LeftForeArm,
			diff(pose, landmark.PoseLeftShoulder, landmark.PoseLeftElbow),
			diff(pose, landmark.PoseLeftElbow, landmark.PoseLeftWrist))
		t.rotateFromDiff(RightArm, rightParent,
			diff(pose, landmark.PoseRightShoulder, landmark.PoseRightElbow))
		t.rotateFromDiff(RightForeArm,
			diff(pose, landmark.PoseRightShoulder, landmark.PoseRightElbow),
			diff(pose, landmark.PoseRightElbow, landmark.PoseRightWrist))
	}

	leftUp := t.applyHand(LeftHand, p.LeftHand, false)
	rightUp := t.applyHand(RightHand, p.RightHand, true)

	t.applyFingers(p.LeftHand, leftUp, [][3]string{LeftThumb, LeftIndex, LeftMiddle, LeftRing, LeftPinky})
	t.applyFingers(p.RightHand, rightUp, [][3]string{RightThumb, RightIndex, RightMiddle, RightRing, RightPinky})
}

func (t *Tracker) toAvatar(v mgl64.Vec3) mgl64.Vec3 {
	m := gltfDisplayToAvatar
	if t.vrm {
		m = vrmDisplayToAvatar
	}
	return mgl64.Vec3{v[0] * m[0], v[1] * m[1], v[2] * m[2]}
}

// rotationFromDiff returns the local rotation that turns the parent segment
// direction into the child segment direction, both given in display space.
func (t *Tracker) rotationFromDiff(n *scene.Node, parent, child mgl64.Vec3) (mgl64.Quat, bool) {
	p := t.toAvatar(parent)
	c := t.toAvatar(child)
	if n.Parent != nil {
		inv := n.Parent.WorldQuaternion().Inverse()
		p = inv.Rotate(p)
		c = inv.Rotate(c)
	}
	if p.Len() == 0 || c.Len() == 0 {
		return mgl64.Quat{}, false
	}
	return mgl64.QuatBetweenVectors(p.Normalize(), c.Normalize()), true
}

func (t *Tracker) rotateFromDiff(name string, parent, child mgl64.Vec3) {
	n, ok := t.bones[name]
	if !ok {
		return
	}
	if q, ok := t.rotationFromDiff(n, parent, child); ok {
		n.SetQuaternion(q)
	}
}

// applyHand orients a hand from its palm basis and returns the palm's
// up direction in display space for the finger chains.
func (t *Tracker) applyHand(name string, hand landmark.Set, right bool) mgl64.Vec3 {
	n, ok := t.bones[name]
	if !ok {
		return mgl64.Vec3{}
	}
	if len(hand) < landmark.HandCount {
		n.SetQuaternion(mgl64.QuatIdent())
		return mgl64.Vec3{}
	}

	index := diff(hand, landmark.HandWrist, landmark.HandIndexMCP)
	middle := diff(hand, landmark.HandWrist, landmark.HandMiddleMCP)
	ring := diff(hand, landmark.HandWrist, landmark.HandRingMCP)
	pinky := diff(hand, landmark.HandWrist, landmark.HandPinkyMCP)
	along := index.Add(middle).Add(ring).Add(pinky)

	normal := pinky.Cross(index)
	if right {
		normal = index.Cross(pinky)
	}
	// glTF hands extend along local +Y; VRM hands along -X (left) or +X (right).
	var x, y, z mgl64.Vec3
	if !t.vrm {
		y = along
		x = y.Cross(normal)
		z = x.Cross(y)
	} else {
		x = along
		if !right {
			x = along.Mul(-1)
		}
		z = x.Cross(normal)
		y = z.Cross(x)
	}
	x, y, z = t.toAvatar(x), t.toAvatar(y), t.toAvatar(z)
	if x.Len() == 0 || y.Len() == 0 || z.Len() == 0 {
		return along
	}
	basis := mgl64.Mat3FromCols(x.Normalize(), y.Normalize(), z.Normalize())
	world := mgl64.Mat4ToQuat(basis.Mat4())

	local := world
	if n.Parent != nil {
		local = n.Parent.WorldQuaternion().Inverse().Mul(world)
	}
	n.SetQuaternion(local)
	return along
}

// Hand landmark chains per finger, wrist first.
var fingerLandmarks = [5][4]int{
	{0, 2, 3, 4},
	{5, 6, 7, 8},
	{9, 10, 11, 12},
	{13, 14, 15, 16},
	{17, 18, 19, 20},
}

func (t *Tracker) applyFingers(hand landmark.Set, palmUp mgl64.Vec3, chains [][3]string) {
	tracked := len(hand) >= landmark.HandCount && palmUp.Len() > 0
	for f, chain := range chains {
		nodes, ok := t.chain(chain)
		if !ok {
			continue
		}
		if !tracked {
			for i, n := range nodes {
				n.SetQuaternion(t.rest[chain[i]])
			}
			continue
		}
		idx := fingerLandmarks[f]
		parent := palmUp
		for i, n := range nodes {
			child := diff(hand, idx[i], idx[i+1])
			if q, ok := t.rotationFromDiff(n, parent, child); ok {
				n.SetQuaternion(q)
			}
			parent = child
		}
	}
}

func (t *Tracker) chain(names [3]string) ([3]*scene.Node, bool) {
	var out [3]*scene.Node
	for i, name := range names {
		n, ok := t.bones[name]
		if !ok {
			return out, false
		}
		out[i] = n
	}
	return out, true
}

// applySpine orients the spine from the hip and shoulder landmarks.
func (t *Tracker) applySpine(pose landmark.Set) {
	spine, okS := t.bones[Spine]
	hips, okH := t.bones[Hips]
	if !okS || !okH {
		return
	}
	up := diff(pose, landmark.PoseLeftHip, landmark.PoseLeftShoulder).
		Add(diff(pose, landmark.PoseRightHip, landmark.PoseRightShoulder))
	across := diff(pose, landmark.PoseRightHip, landmark.PoseLeftHip)

	x := t.toAvatar(across)
	z := x.Cross(t.toAvatar(up))
	y := z.Cross(x)
	if x.Len() == 0 || y.Len() == 0 || z.Len() == 0 {
		return
	}
	basis := mgl64.Mat3FromCols(x.Normalize(), y.Normalize(), z.Normalize())
	world := mgl64.Mat4ToQuat(basis.Mat4())
	spine.SetQuaternion(hips.WorldQuaternion().Inverse().Mul(world))
}

// applyLegs bends the upper and lower legs, limiting sideways swing of the
// upper leg.
func (t *Tracker) applyLegs(pose landmark.Set) {
	// Straight down the image.
	down := mgl64.Vec3{0, 1, 0}
	legs := []struct {
		up, low         string
		hip, knee, foot int
	}{
		{LeftUpLeg, LeftLeg, landmark.PoseLeftHip, landmark.PoseLeftKnee, landmark.PoseLeftAnkle},
		{RightUpLeg, RightLeg, landmark.PoseRightHip, landmark.PoseRightKnee, landmark.PoseRightAnkle},
	}
	for _, l := range legs {
		thigh := diff(pose, l.hip, l.knee)
		if n, ok := t.bones[l.up]; ok {
			if q, ok := t.rotationFromDiff(n, down, thigh); ok {
				e := scene.EulerFromQuat(q)
				e[2] = math.Max(-legClamp, math.Min(legClamp, e[2]))
				n.SetRotation(e[0], e[1], e[2])
			}
		}
		t.rotateFromDiff(l.low, thigh, diff(pose, l.knee, l.foot))
	}
}

// diff returns the vector from landmark a to landmark b, or zero when
// either is missing.
func diff(s landmark.Set, a, b int) mgl64.Vec3 {
	pa, okA := s.At(a)
	pb, okB := s.At(b)
	if !okA || !okB {
		return mgl64.Vec3{}
	}
	return pb.Sub(pa)
}
