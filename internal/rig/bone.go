package rig

import (
	"slices"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/hologram/internal/scene"
)

// Neck is the bone the head rotation drives.
const Neck = "Neck"

// Bone name aliases used to classify semantic joints.
var (
	LeftArmAliases  = []string{"Left_arm", "LeftArm"}
	RightArmAliases = []string{"Right_arm", "RightArm"}
	SpineAliases    = []string{"Spine", "Spine1", "Spine2"}
)

// Class is the semantic role of a bone.
type Class int

const (
	Unclassified Class = iota
	LeftArm
	RightArm
	Spine
)

func (c Class) String() string {
	switch c {
	case LeftArm:
		return "left-arm"
	case RightArm:
		return "right-arm"
	case Spine:
		return "spine"
	default:
		return "unclassified"
	}
}

// Classify returns the semantic role for a bone name.
func Classify(name string) Class {
	switch {
	case slices.Contains(LeftArmAliases, name):
		return LeftArm
	case slices.Contains(RightArmAliases, name):
		return RightArm
	case slices.Contains(SpineAliases, name):
		return Spine
	default:
		return Unclassified
	}
}

// BoneCache maps bone names to nodes for the avatar and, separately, for the
// currently equipped attachment (clothing). Avatar bones are registered once
// at load with their rest rotation; attachment maps are rebuilt on equip.
type BoneCache struct {
	avatarBones map[string]*scene.Node
	rest        map[string]mgl64.Vec3

	attachmentBones  map[string]*scene.Node
	attachmentMeshes map[string]*scene.Node

	skeleton *scene.Skeleton

	leftArm  string
	rightArm string
	spine    string
}

// NewBoneCache returns an empty cache.
func NewBoneCache() *BoneCache {
	return &BoneCache{
		avatarBones:      make(map[string]*scene.Node),
		rest:             make(map[string]mgl64.Vec3),
		attachmentBones:  make(map[string]*scene.Node),
		attachmentMeshes: make(map[string]*scene.Node),
	}
}

// AddAvatarBone registers a bone, captures its rest rotation and classifies
// it. Later bones with the same role replace earlier ones.
func (c *BoneCache) AddAvatarBone(n *scene.Node) {
	c.avatarBones[n.Name] = n
	c.rest[n.Name] = n.Rotation

	switch Classify(n.Name) {
	case LeftArm:
		c.leftArm = n.Name
	case RightArm:
		c.rightArm = n.Name
	case Spine:
		c.spine = n.Name
	}
}

// SetSkeleton records the avatar skeleton attachments are bound to.
func (c *BoneCache) SetSkeleton(s *scene.Skeleton) { c.skeleton = s }

// HasSkeleton reports whether a skeleton was recorded.
func (c *BoneCache) HasSkeleton() bool { return c.skeleton != nil }

// Skeleton returns the recorded skeleton, or nil.
func (c *BoneCache) Skeleton() *scene.Skeleton { return c.skeleton }

// AddAttachmentBone registers a bone of the equipped attachment.
func (c *BoneCache) AddAttachmentBone(n *scene.Node) {
	c.attachmentBones[n.Name] = n
}

// AddAttachmentMesh registers an attachment mesh and binds it to the avatar
// skeleton so it deforms with the body.
func (c *BoneCache) AddAttachmentMesh(n *scene.Node) {
	c.attachmentMeshes[n.Name] = n
	if c.skeleton != nil && n.Mesh != nil {
		n.Mesh.Bind(c.skeleton)
	}
}

// ClearAttachment forgets every attachment bone and mesh.
func (c *BoneCache) ClearAttachment() {
	c.attachmentBones = make(map[string]*scene.Node)
	c.attachmentMeshes = make(map[string]*scene.Node)
}

// RotateNode sets the absolute Euler rotation of an avatar bone. It reports
// false, and does nothing, when the bone does not exist.
func (c *BoneCache) RotateNode(name string, x, y, z float64) bool {
	n, ok := c.avatarBones[name]
	if !ok {
		return false
	}
	n.SetRotation(x, y, z)
	return true
}

// RestRotation returns the rotation a bone had when it was registered.
func (c *BoneCache) RestRotation(name string) (mgl64.Vec3, bool) {
	r, ok := c.rest[name]
	return r, ok
}

// Bone returns an avatar bone by name.
func (c *BoneCache) Bone(name string) (*scene.Node, bool) {
	n, ok := c.avatarBones[name]
	return n, ok
}

// AttachmentBone returns a bone of the equipped attachment by name.
func (c *BoneCache) AttachmentBone(name string) (*scene.Node, bool) {
	n, ok := c.attachmentBones[name]
	return n, ok
}

// AttachmentMesh returns a mesh of the equipped attachment by name.
func (c *BoneCache) AttachmentMesh(name string) (*scene.Node, bool) {
	n, ok := c.attachmentMeshes[name]
	return n, ok
}

// LeftArm returns the classified left arm bone name, or "".
func (c *BoneCache) LeftArm() string { return c.leftArm }

// RightArm returns the classified right arm bone name, or "".
func (c *BoneCache) RightArm() string { return c.rightArm }

// Spine returns the classified spine bone name, or "".
func (c *BoneCache) Spine() string { return c.spine }

// Names returns the avatar bone names, sorted.
func (c *BoneCache) Names() []string {
	names := make([]string, 0, len(c.avatarBones))
	for n := range c.avatarBones {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of avatar bones.
func (c *BoneCache) Len() int { return len(c.avatarBones) }
