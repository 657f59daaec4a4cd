package retarget

import (
	"errors"
	"fmt"
)

// ErrInvalidAxisOrder is returned for neck axis orders that do not name
// exactly three axes from X, Y and Z with an optional leading "-".
var ErrInvalidAxisOrder = errors.New("invalid axis order")

// Axes is an x/y/z triple in radians.
type Axes struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

// CameraOptions place the viewer relative to the avatar.
type CameraOptions struct {
	PosX  float64 `mapstructure:"posX"`
	PosY  float64 `mapstructure:"posY"`
	PosZ  float64 `mapstructure:"posZ"`
	LookX float64 `mapstructure:"lookX"`
	LookY float64 `mapstructure:"lookY"`
	LookZ float64 `mapstructure:"lookZ"`
}

// RotationOptions are fixed corrections for the avatar's rest pose.
type RotationOptions struct {
	Body Axes `mapstructure:"body"`
	Neck Axes `mapstructure:"neck"`
}

// NeckOptions configure how head rotation reaches the neck bone.
type NeckOptions struct {
	Order []string `mapstructure:"order"`
}

// BlendshapeOptions group blendshape-driven bone options.
type BlendshapeOptions struct {
	Neck NeckOptions `mapstructure:"neck"`
}

// Options are the per-model retargeting options, shaped like the model's
// options file.
type Options struct {
	Camera      CameraOptions     `mapstructure:"camera"`
	Rotation    RotationOptions   `mapstructure:"rotation"`
	Blendshapes BlendshapeOptions `mapstructure:"blendshapes"`

	// JawOpenMultiplier scales jawOpen after it is applied. 1 leaves it alone.
	JawOpenMultiplier float64 `mapstructure:"jawOpenMultiplier"`
	// FullBody enables spine and leg tracking.
	FullBody bool `mapstructure:"fullBody"`
}

// DefaultOptions returns options for a model without an options file.
func DefaultOptions() Options {
	return Options{
		Camera:            CameraOptions{PosZ: 1},
		Blendshapes:       BlendshapeOptions{Neck: NeckOptions{Order: []string{"X", "Y", "Z"}}},
		JawOpenMultiplier: 1,
	}
}

// Axis picks one of the three rotation components, optionally negated.
type Axis struct {
	Index  int
	Negate bool
}

// AxisOrder maps computed (x, y, z) neck angles onto the bone's x, y and z.
type AxisOrder [3]Axis

// DefaultAxisOrder passes x, y and z through unchanged.
var DefaultAxisOrder = AxisOrder{{Index: 0}, {Index: 1}, {Index: 2}}

// ParseAxisOrder parses names like ["Y", "-X", "Z"]. An empty order yields
// DefaultAxisOrder.
func ParseAxisOrder(names []string) (AxisOrder, error) {
	if len(names) == 0 {
		return DefaultAxisOrder, nil
	}
	if len(names) != 3 {
		return DefaultAxisOrder, fmt.Errorf("%w: want 3 axes, got %d", ErrInvalidAxisOrder, len(names))
	}
	var order AxisOrder
	for i, name := range names {
		a, ok := parseAxis(name)
		if !ok {
			return DefaultAxisOrder, fmt.Errorf("%w: unknown axis %q", ErrInvalidAxisOrder, name)
		}
		order[i] = a
	}
	return order, nil
}

func parseAxis(name string) (Axis, bool) {
	switch name {
	case "X":
		return Axis{Index: 0}, true
	case "-X":
		return Axis{Index: 0, Negate: true}, true
	case "Y":
		return Axis{Index: 1}, true
	case "-Y":
		return Axis{Index: 1, Negate: true}, true
	case "Z":
		return Axis{Index: 2}, true
	case "-Z":
		return Axis{Index: 2, Negate: true}, true
	}
	return Axis{}, false
}

// Apply composes x, y and z in this order.
func (o AxisOrder) Apply(x, y, z float64) (float64, float64, float64) {
	in := [3]float64{x, y, z}
	var out [3]float64
	for i, a := range o {
		out[i] = in[a.Index]
		if a.Negate {
			out[i] = -out[i]
		}
	}
	return out[0], out[1], out[2]
}
