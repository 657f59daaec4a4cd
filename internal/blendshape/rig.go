package blendshape

// Rig enumerates the expression controls of the rig naming convention.
// Sided controls carry an _L or _R suffix.
type Rig int

const (
	BrowDownL Rig = iota
	BrowDownR
	BrowInnerUpL
	BrowInnerUpR
	BrowOuterUpL
	BrowOuterUpR
	RigCheekPuff
	EyeBlinkL
	EyeBlinkR
	EyeLookDownL
	EyeLookDownR
	EyeLookInL
	EyeLookInR
	EyeLookOutL
	EyeLookOutR
	EyeLookUpL
	EyeLookUpR
	EyeSquintL
	EyeSquintR
	EyeWideL
	EyeWideR
	RigJawLeft
	RigJawOpen
	RigJawRight
	MouthFrownL
	MouthFrownR
	RigMouthFunnel
	RigMouthLeft
	MouthLowerDownL
	MouthLowerDownR
	RigMouthPucker
	RigMouthRight
	RigMouthRollLower
	RigMouthRollUpper
	RigMouthShrugUpper
	MouthSmileL
	MouthSmileR
	MouthUpperUpL
	MouthUpperUpR
	NoseSneerL
	NoseSneerR
	RigTongueOut
	RigCount
)

var rigNames = [RigCount]string{
	"browDown_L",
	"browDown_R",
	"browInnerUp_L",
	"browInnerUp_R",
	"browOuterUp_L",
	"browOuterUp_R",
	"cheekPuff",
	"eyeBlink_L",
	"eyeBlink_R",
	"eyeLookDown_L",
	"eyeLookDown_R",
	"eyeLookIn_L",
	"eyeLookIn_R",
	"eyeLookOut_L",
	"eyeLookOut_R",
	"eyeLookUp_L",
	"eyeLookUp_R",
	"eyeSquint_L",
	"eyeSquint_R",
	"eyeWide_L",
	"eyeWide_R",
	"jawLeft",
	"jawOpen",
	"jawRight",
	"mouthFrown_L",
	"mouthFrown_R",
	"mouthFunnel",
	"mouthLeft",
	"mouthLowerDown_L",
	"mouthLowerDown_R",
	"mouthPucker",
	"mouthRight",
	"mouthRollLower",
	"mouthRollUpper",
	"mouthShrugUpper",
	"mouthSmile_L",
	"mouthSmile_R",
	"mouthUpperUp_L",
	"mouthUpperUp_R",
	"noseSneer_L",
	"noseSneer_R",
	"tongueOut",
}

var rigByName = func() map[string]Rig {
	m := make(map[string]Rig, RigCount)
	for i, n := range rigNames {
		m[n] = Rig(i)
	}
	return m
}()

func (r Rig) String() string {
	if r < 0 || r >= RigCount {
		return "unknown"
	}
	return rigNames[r]
}

// ParseRig looks up a rig control by name.
func ParseRig(name string) (Rig, bool) {
	r, ok := rigByName[name]
	return r, ok
}

// Mirror returns the control on the opposite side of the face. Controls
// without an _L/_R suffix, jawLeft and mouthLeft included, mirror to
// themselves.
func (r Rig) Mirror() Rig {
	switch r {
	case BrowDownL:
		return BrowDownR
	case BrowDownR:
		return BrowDownL
	case BrowInnerUpL:
		return BrowInnerUpR
	case BrowInnerUpR:
		return BrowInnerUpL
	case BrowOuterUpL:
		return BrowOuterUpR
	case BrowOuterUpR:
		return BrowOuterUpL
	case EyeBlinkL:
		return EyeBlinkR
	case EyeBlinkR:
		return EyeBlinkL
	case EyeLookDownL:
		return EyeLookDownR
	case EyeLookDownR:
		return EyeLookDownL
	case EyeLookInL:
		return EyeLookInR
	case EyeLookInR:
		return EyeLookInL
	case EyeLookOutL:
		return EyeLookOutR
	case EyeLookOutR:
		return EyeLookOutL
	case EyeLookUpL:
		return EyeLookUpR
	case EyeLookUpR:
		return EyeLookUpL
	case EyeSquintL:
		return EyeSquintR
	case EyeSquintR:
		return EyeSquintL
	case EyeWideL:
		return EyeWideR
	case EyeWideR:
		return EyeWideL
	case MouthFrownL:
		return MouthFrownR
	case MouthFrownR:
		return MouthFrownL
	case MouthLowerDownL:
		return MouthLowerDownR
	case MouthLowerDownR:
		return MouthLowerDownL
	case MouthSmileL:
		return MouthSmileR
	case MouthSmileR:
		return MouthSmileL
	case MouthUpperUpL:
		return MouthUpperUpR
	case MouthUpperUpR:
		return MouthUpperUpL
	case NoseSneerL:
		return NoseSneerR
	case NoseSneerR:
		return NoseSneerL
	case RigCheekPuff, RigJawLeft, RigJawOpen, RigJawRight,
		RigMouthFunnel, RigMouthLeft, RigMouthPucker, RigMouthRight,
		RigMouthRollLower, RigMouthRollUpper, RigMouthShrugUpper,
		RigTongueOut:
		return r
	default:
		return r
	}
}

// vendorOrder is the detector's raw output order.
var vendorOrder = [...]Rig{
	BrowOuterUpL,
	BrowInnerUpL,
	BrowDownL,
	EyeBlinkL,
	EyeSquintL,
	EyeWideL,
	EyeLookUpL,
	EyeLookOutL,
	EyeLookInL,
	EyeLookDownL,
	NoseSneerL,
	MouthUpperUpL,
	MouthSmileL,
	RigMouthLeft,
	MouthFrownL,
	MouthLowerDownL,
	RigJawLeft,
	RigCheekPuff,
	RigMouthShrugUpper,
	RigMouthFunnel,
	RigMouthRollLower,
	RigJawOpen,
	RigTongueOut,
	RigMouthPucker,
	RigMouthRollUpper,
	RigJawRight,
	MouthLowerDownR,
	MouthFrownR,
	RigMouthRight,
	MouthSmileR,
	MouthUpperUpR,
	NoseSneerR,
	EyeLookDownR,
	EyeLookInR,
	EyeLookOutR,
	EyeLookUpR,
	EyeWideR,
	EyeSquintR,
	EyeBlinkR,
	BrowDownR,
	BrowInnerUpR,
	BrowOuterUpR,
}

// VendorCount is the number of values in a raw detector blendshape vector.
const VendorCount = len(vendorOrder)

// VendorIndex maps a position in the detector's raw blendshape vector to a
// rig control.
func VendorIndex(i int) (Rig, bool) {
	if i < 0 || i >= VendorCount {
		return 0, false
	}
	return vendorOrder[i], true
}
