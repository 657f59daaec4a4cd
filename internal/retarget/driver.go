// Package retarget drives a bound avatar rig from per-frame face and body
// predictions.
package retarget

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/normanking/hologram/internal/blendshape"
	"github.com/normanking/hologram/internal/body"
	"github.com/normanking/hologram/internal/face"
	"github.com/normanking/hologram/internal/rig"
	"github.com/normanking/hologram/internal/scene"
)

// FaceMoveMultiplier scales the horizontal face position into spine lean.
const FaceMoveMultiplier = 0.5

var jawOpen = blendshape.RigJawOpen.String()

// FacePrediction is one face detector result in rig naming.
type FacePrediction struct {
	Blendshapes blendshape.Map
	Rotation    face.Rotation
	// ImagePosition is the face centre in normalised image coordinates.
	ImagePosition mgl64.Vec2
}

// Camera is where the renderer should place its camera for this model.
type Camera struct {
	Position mgl64.Vec3
	Look     mgl64.Vec3
}

// Driver writes predictions into a bound rig. It is not safe for
// concurrent use; the session frame loop owns it.
type Driver struct {
	binding *rig.Binding
	tracker *body.Tracker
	pivot   *scene.Node
	camera  Camera

	rest       Axes
	neckAssist Axes
	order      AxisOrder
	jawScale   float64
	lipSync    float64

	logger zerolog.Logger
}

// NewDriver prepares b for driving with opts. tracker may be nil when body
// tracking is off. The body rotation is applied to the pivot immediately.
func NewDriver(b *rig.Binding, opts Options, tracker *body.Tracker, logger zerolog.Logger) *Driver {
	d := &Driver{
		binding:    b,
		tracker:    tracker,
		pivot:      b.Root,
		neckAssist: opts.Rotation.Neck,
		jawScale:   opts.JawOpenMultiplier,
		logger:     logger.With().Str("component", "retarget").Logger(),
	}

	order, err := ParseAxisOrder(opts.Blendshapes.Neck.Order)
	if err != nil {
		d.logger.Warn().Err(err).Strs("order", opts.Blendshapes.Neck.Order).Msg("Using default neck axis order")
	}
	d.order = order

	c := opts.Camera
	if c.PosZ == 0 {
		c.PosZ = 1
	}
	d.camera = Camera{
		Position: mgl64.Vec3{c.PosX, c.PosY, c.PosZ},
		Look:     mgl64.Vec3{c.LookX, c.LookY, c.LookZ},
	}

	d.rest = opts.Rotation.Body
	d.pivot.SetRotation(d.rest.X, d.rest.Y, d.rest.Z)

	if tracker != nil {
		tracker.SetFullBody(opts.FullBody)
	}
	return d
}

// Pivot is the node rotated when the rig has no neck bone.
func (d *Driver) Pivot() *scene.Node { return d.pivot }

// Camera returns the configured camera placement.
func (d *Driver) Camera() Camera { return d.camera }

// SetLipSync sets an extra jawOpen amount added on every frame, for audio
// driven lip sync. Zero disables it.
func (d *Driver) SetLipSync(v float64) { d.lipSync = v }

// LipSync returns the amount set with SetLipSync.
func (d *Driver) LipSync() float64 { return d.lipSync }

// LookAt points the whole avatar. A zero z leaves the current z rotation.
func (d *Driver) LookAt(x, y, z float64) {
	r := d.pivot.Rotation
	if z == 0 {
		z = r.Z()
	}
	d.pivot.SetRotation(x, y, z)
}

// Neutral relaxes every morph target and returns the neck, spine and pivot
// to their rest rotations. Used when the face is lost.
func (d *Driver) Neutral() {
	morphs := d.binding.Morphs
	for _, name := range morphs.Names() {
		morphs.Apply(name, 0)
	}
	bones := d.binding.Bones
	for _, name := range []string{rig.Neck, bones.Spine()} {
		if rest, ok := bones.RestRotation(name); ok {
			bones.RotateNode(name, rest.X(), rest.Y(), rest.Z())
		}
	}
	d.pivot.SetRotation(d.rest.X, d.rest.Y, d.rest.Z)
}

// UpdateFrame applies one face prediction and optionally one body
// prediction. Either may be nil. It returns the number of blendshapes that
// reached a morph target.
func (d *Driver) UpdateFrame(fp *FacePrediction, bp *body.Prediction) int {
	applied := 0
	if fp != nil {
		applied = d.applyFace(fp)
	}
	if bp != nil && d.tracker != nil {
		d.tracker.Apply(bp)
	}
	return applied
}

func (d *Driver) applyFace(fp *FacePrediction) int {
	morphs := d.binding.Morphs
	bones := d.binding.Bones

	applied := 0
	for name, v := range blendshape.Flip(fp.Blendshapes) {
		if morphs.Apply(name, v) {
			applied++
		}
	}
	if d.jawScale != 0 && d.jawScale != 1 {
		morphs.Magnify(jawOpen, d.jawScale)
	}
	if d.lipSync > 0 {
		morphs.Increment(jawOpen, d.lipSync)
	}

	rot := fp.Rotation.Blendshapes()
	x := rot[blendshape.HeadPitch] + d.neckAssist.X
	y := -rot[blendshape.HeadYaw] + d.neckAssist.Y
	z := -rot[blendshape.HeadRoll] + d.neckAssist.Z

	nx, ny, nz := d.order.Apply(x, y, z)
	if !bones.RotateNode(rig.Neck, nx, ny, nz) {
		d.pivot.SetRotation(x, y, z)
	}

	if spine := bones.Spine(); spine != "" {
		rest, _ := bones.RestRotation(spine)
		lean := -(fp.ImagePosition.X() - 0.5) * FaceMoveMultiplier
		bones.RotateNode(spine, rest.X()-lean, rest.Y(), rest.Z()-lean)
	}
	return applied
}
