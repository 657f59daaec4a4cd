package rig

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/normanking/hologram/internal/blendshape"
	"github.com/normanking/hologram/internal/scene"
)

// DefaultArmRotation lowers T-posed arms to the sides, in radians about Z.
const DefaultArmRotation = 1.3

// ErrEmptyRig is returned for models with neither morph targets nor bones.
var ErrEmptyRig = errors.New("rig has no morph targets and no bones")

// Binding is the cached view of one loaded avatar.
type Binding struct {
	Root   *scene.Node
	Morphs *MorphTargetCache
	Bones  *BoneCache

	logger zerolog.Logger
}

// Bind traverses root once, registering every morph-targeted mesh and every
// bone, then lowers the arms. Morph target names are normalised to the rig
// convention.
func Bind(root *scene.Node, logger zerolog.Logger) (*Binding, error) {
	b := &Binding{
		Root:   root,
		Morphs: NewMorphTargetCache(),
		Bones:  NewBoneCache(),
		logger: logger.With().Str("component", "rig").Logger(),
	}

	rawTargets := 0
	root.Traverse(func(n *scene.Node) {
		if m := n.Mesh; m != nil && len(m.Influences) > 0 {
			rawTargets += len(m.MorphTargetDictionary)
			if dict := blendshape.ToRig(m.MorphTargetDictionary); len(dict) > 0 {
				b.Morphs.Add(m.Influences, dict)
			}
			if !b.Bones.HasSkeleton() && m.Skeleton != nil {
				b.Bones.SetSkeleton(m.Skeleton)
			}
		}
		if n.Kind == scene.KindBone {
			b.Bones.AddAvatarBone(n)
		}
	})

	if rawTargets == 0 && b.Bones.Len() == 0 {
		return nil, ErrEmptyRig
	}
	if rawTargets > 0 && b.Morphs.Len() == 0 {
		b.logger.Warn().Int("targets", rawTargets).Msg("No morph target uses a known blendshape name")
	}

	left, right := b.Bones.LeftArm(), b.Bones.RightArm()
	if left != "" && right != "" {
		b.Bones.RotateNode(left, 0, 0, DefaultArmRotation)
		b.Bones.RotateNode(right, 0, 0, -DefaultArmRotation)
	}

	b.logger.Info().
		Int("components", b.Morphs.Len()).
		Int("morphTargets", len(b.Morphs.Names())).
		Int("bones", b.Bones.Len()).
		Str("spine", b.Bones.Spine()).
		Msg("Rig bound")
	return b, nil
}

// Equip replaces the current attachment with the one rooted at root. A nil
// root only clears the current attachment.
func (b *Binding) Equip(root *scene.Node) {
	b.Bones.ClearAttachment()
	if root == nil {
		return
	}
	bones, meshes := 0, 0
	root.Traverse(func(n *scene.Node) {
		switch n.Kind {
		case scene.KindBone:
			b.Bones.AddAttachmentBone(n)
			bones++
		case scene.KindMesh:
			b.Bones.AddAttachmentMesh(n)
			meshes++
		}
	})
	b.logger.Debug().Int("bones", bones).Int("meshes", meshes).Msg("Attachment equipped")
}
