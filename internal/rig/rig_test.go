package rig

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/hologram/internal/scene"
)

func TestMorphTargetCache_FanOut(t *testing.T) {
	c := NewMorphTargetCache()
	head := []float32{0, 0, 0}
	teeth := []float32{0, 0}
	c.Add(head, map[string]int{"eyeBlink_L": 0, "jawOpen": 2})
	c.Add(teeth, map[string]int{"jawOpen": 0})

	require.True(t, c.Apply("jawOpen", 0.7))

	assert.Equal(t, []float32{0, 0, 0.7}, head)
	assert.Equal(t, []float32{0.7, 0}, teeth)
}

func TestMorphTargetCache_ApplyClampsAndMisses(t *testing.T) {
	c := NewMorphTargetCache()
	buf := []float32{0.5, 0.5}
	c.Add(buf, map[string]int{"a": 0, "b": 1, "outOfRange": 7})

	c.Apply("a", 1.4)
	c.Apply("b", -0.2)
	assert.False(t, c.Apply("missing", 1))
	assert.False(t, c.Has("outOfRange"))

	assert.Equal(t, []float32{1, 0}, buf)
	assert.Equal(t, []string{"a", "b"}, c.Names())
}

func TestMorphTargetCache_MagnifyIncrement(t *testing.T) {
	c := NewMorphTargetCache()
	buf := []float32{0.2}
	c.Add(buf, map[string]int{"jawOpen": 0})

	c.Magnify("jawOpen", 2.5)
	assert.InDelta(t, 0.5, buf[0], 1e-6)

	c.Increment("jawOpen", 0.7)
	assert.Equal(t, float32(1), buf[0])

	c.Magnify("missing", 2)
	c.Increment("missing", 1)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, LeftArm, Classify("LeftArm"))
	assert.Equal(t, LeftArm, Classify("Left_arm"))
	assert.Equal(t, RightArm, Classify("RightArm"))
	assert.Equal(t, Spine, Classify("Spine1"))
	assert.Equal(t, Unclassified, Classify("Neck"))
	assert.Equal(t, "spine", Spine.String())
}

func TestBoneCache_RotateAndRest(t *testing.T) {
	c := NewBoneCache()
	spine := scene.NewNode("Spine", scene.KindBone)
	spine.SetRotation(0.1, 0, 0)
	c.AddAvatarBone(spine)

	require.True(t, c.RotateNode("Spine", 0.5, 0.6, 0.7))
	assert.Equal(t, mgl64.Vec3{0.5, 0.6, 0.7}, spine.Rotation)

	// Absolute, not additive.
	require.True(t, c.RotateNode("Spine", 0.5, 0.6, 0.7))
	assert.Equal(t, mgl64.Vec3{0.5, 0.6, 0.7}, spine.Rotation)

	rest, ok := c.RestRotation("Spine")
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0.1, 0, 0}, rest)

	assert.False(t, c.RotateNode("Neck", 1, 1, 1))
	assert.Equal(t, "Spine", c.Spine())
}

func TestBoneCache_Attachments(t *testing.T) {
	c := NewBoneCache()
	skel := &scene.Skeleton{}
	c.SetSkeleton(skel)

	shirt := scene.NewNode("Shirt", scene.KindMesh)
	shirt.Mesh = &scene.Mesh{}
	c.AddAttachmentMesh(shirt)
	c.AddAttachmentBone(scene.NewNode("Collar", scene.KindBone))

	assert.Same(t, skel, shirt.Mesh.Skeleton)
	_, ok := c.AttachmentBone("Collar")
	assert.True(t, ok)

	c.ClearAttachment()
	_, ok = c.AttachmentBone("Collar")
	assert.False(t, ok)
	_, ok = c.AttachmentMesh("Shirt")
	assert.False(t, ok)
}

// testAvatar builds a small rig: a head mesh and a teeth mesh sharing
// jawOpen, plus a skeleton with arms, spine and neck.
func testAvatar(withNeck bool) (*scene.Node, *scene.Mesh, *scene.Mesh) {
	root := scene.NewNode("Scene", scene.KindGroup)
	hips := scene.NewNode("Hips", scene.KindBone)
	spine := scene.NewNode("Spine", scene.KindBone)
	left := scene.NewNode("LeftArm", scene.KindBone)
	right := scene.NewNode("RightArm", scene.KindBone)
	root.Add(hips)
	hips.Add(spine)
	spine.Add(left)
	spine.Add(right)
	if withNeck {
		spine.Add(scene.NewNode("Neck", scene.KindBone))
	}

	skel := &scene.Skeleton{Bones: []*scene.Node{hips, spine, left, right}}

	head := scene.NewNode("Head", scene.KindMesh)
	head.Mesh = &scene.Mesh{
		MorphTargetDictionary: map[string]int{"eyeBlinkLeft": 0, "jawOpen": 1, "Body_Fat": 2},
		Influences:            make([]float32, 3),
		Skeleton:              skel,
	}
	teeth := scene.NewNode("Teeth", scene.KindMesh)
	teeth.Mesh = &scene.Mesh{
		MorphTargetDictionary: map[string]int{"jawOpen": 0},
		Influences:            make([]float32, 1),
	}
	root.Add(head)
	root.Add(teeth)
	return root, head.Mesh, teeth.Mesh
}

func TestBind(t *testing.T) {
	root, head, teeth := testAvatar(true)

	b, err := Bind(root, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 2, b.Morphs.Len())
	assert.Equal(t, []string{"eyeBlink_L", "jawOpen"}, b.Morphs.Names())
	assert.True(t, b.Bones.HasSkeleton())
	assert.Equal(t, "LeftArm", b.Bones.LeftArm())
	assert.Equal(t, "RightArm", b.Bones.RightArm())
	assert.Equal(t, "Spine", b.Bones.Spine())

	left, _ := b.Bones.Bone("LeftArm")
	right, _ := b.Bones.Bone("RightArm")
	assert.InDelta(t, DefaultArmRotation, left.Rotation.Z(), 1e-12)
	assert.InDelta(t, -DefaultArmRotation, right.Rotation.Z(), 1e-12)

	// Rest rotation is captured before the arms are lowered.
	rest, _ := b.Bones.RestRotation("LeftArm")
	assert.Equal(t, mgl64.Vec3{}, rest)

	b.Morphs.Apply("jawOpen", 0.4)
	b.Morphs.Apply("eyeBlink_L", 0.9)
	assert.Equal(t, []float32{0.9, 0.4, 0}, head.Influences)
	assert.Equal(t, []float32{0.4}, teeth.Influences)
}

func TestBind_OneArmKeepsPose(t *testing.T) {
	root := scene.NewNode("Scene", scene.KindGroup)
	left := scene.NewNode("LeftArm", scene.KindBone)
	root.Add(left)

	_, err := Bind(root, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0.0, left.Rotation.Z())
}

func TestBind_EmptyRig(t *testing.T) {
	root := scene.NewNode("Scene", scene.KindGroup)
	root.Add(scene.NewNode("Prop", scene.KindMesh))

	_, err := Bind(root, zerolog.Nop())
	assert.ErrorIs(t, err, ErrEmptyRig)
}

func TestBinding_Equip(t *testing.T) {
	root, _, _ := testAvatar(true)
	b, err := Bind(root, zerolog.Nop())
	require.NoError(t, err)

	outfit := scene.NewNode("Outfit", scene.KindGroup)
	jacket := scene.NewNode("Jacket", scene.KindMesh)
	jacket.Mesh = &scene.Mesh{}
	outfit.Add(jacket)
	outfit.Add(scene.NewNode("JacketBone", scene.KindBone))

	b.Equip(outfit)
	_, ok := b.Bones.AttachmentMesh("Jacket")
	require.True(t, ok)
	assert.Same(t, b.Bones.Skeleton(), jacket.Mesh.Skeleton)

	b.Equip(nil)
	_, ok = b.Bones.AttachmentMesh("Jacket")
	assert.False(t, ok)
	_, ok = b.Bones.AttachmentBone("JacketBone")
	assert.False(t, ok)
}
