// Package blendshape names facial expression controls and translates them
// between naming conventions: the detector's raw index table, the ARKit
// standard names, and the rig convention used by avatar assets
// ("eyeBlink_L" style).
package blendshape

// ARKit enumerates the ARKit standard blendshapes.
type ARKit int

const (
	BrowDownLeft ARKit = iota
	BrowDownRight
	BrowInnerUp
	BrowOuterUpLeft
	BrowOuterUpRight
	CheekPuff
	CheekSquintLeft
	CheekSquintRight
	EyeBlinkLeft
	EyeBlinkRight
	EyeLookDownLeft
	EyeLookDownRight
	EyeLookInLeft
	EyeLookInRight
	EyeLookOutLeft
	EyeLookOutRight
	EyeLookUpLeft
	EyeLookUpRight
	EyeSquintLeft
	EyeSquintRight
	EyeWideLeft
	EyeWideRight
	JawForward
	JawLeft
	JawOpen
	JawRight
	MouthClose
	MouthDimpleLeft
	MouthDimpleRight
	MouthFrownLeft
	MouthFrownRight
	MouthFunnel
	MouthLeft
	MouthLowerDownLeft
	MouthLowerDownRight
	MouthPressLeft
	MouthPressRight
	MouthPucker
	MouthRight
	MouthRollLower
	MouthRollUpper
	MouthShrugLower
	MouthShrugUpper
	MouthSmileLeft
	MouthSmileRight
	MouthStretchLeft
	MouthStretchRight
	MouthUpperUpLeft
	MouthUpperUpRight
	NoseSneerLeft
	NoseSneerRight
	TongueOut
	ARKitCount
)

var arkitNames = [ARKitCount]string{
	"browDownLeft",
	"browDownRight",
	"browInnerUp",
	"browOuterUpLeft",
	"browOuterUpRight",
	"cheekPuff",
	"cheekSquintLeft",
	"cheekSquintRight",
	"eyeBlinkLeft",
	"eyeBlinkRight",
	"eyeLookDownLeft",
	"eyeLookDownRight",
	"eyeLookInLeft",
	"eyeLookInRight",
	"eyeLookOutLeft",
	"eyeLookOutRight",
	"eyeLookUpLeft",
	"eyeLookUpRight",
	"eyeSquintLeft",
	"eyeSquintRight",
	"eyeWideLeft",
	"eyeWideRight",
	"jawForward",
	"jawLeft",
	"jawOpen",
	"jawRight",
	"mouthClose",
	"mouthDimpleLeft",
	"mouthDimpleRight",
	"mouthFrownLeft",
	"mouthFrownRight",
	"mouthFunnel",
	"mouthLeft",
	"mouthLowerDownLeft",
	"mouthLowerDownRight",
	"mouthPressLeft",
	"mouthPressRight",
	"mouthPucker",
	"mouthRight",
	"mouthRollLower",
	"mouthRollUpper",
	"mouthShrugLower",
	"mouthShrugUpper",
	"mouthSmileLeft",
	"mouthSmileRight",
	"mouthStretchLeft",
	"mouthStretchRight",
	"mouthUpperUpLeft",
	"mouthUpperUpRight",
	"noseSneerLeft",
	"noseSneerRight",
	"tongueOut",
}

var arkitByName = func() map[string]ARKit {
	m := make(map[string]ARKit, ARKitCount)
	for i, n := range arkitNames {
		m[n] = ARKit(i)
	}
	return m
}()

func (a ARKit) String() string {
	if a < 0 || a >= ARKitCount {
		return "unknown"
	}
	return arkitNames[a]
}

// ParseARKit looks up an ARKit blendshape by its standard name.
func ParseARKit(name string) (ARKit, bool) {
	a, ok := arkitByName[name]
	return a, ok
}

// Rig returns the rig-convention control driven by a. Shapes the rig
// convention has no control for report false.
func (a ARKit) Rig() (Rig, bool) {
	switch a {
	case EyeBlinkLeft:
		return EyeBlinkL, true
	case EyeSquintLeft:
		return EyeSquintL, true
	case EyeWideLeft:
		return EyeWideL, true
	case EyeLookUpLeft:
		return EyeLookUpL, true
	case EyeLookDownLeft:
		return EyeLookDownL, true
	case EyeLookInLeft:
		return EyeLookInL, true
	case EyeLookOutLeft:
		return EyeLookOutL, true
	case EyeBlinkRight:
		return EyeBlinkR, true
	case EyeSquintRight:
		return EyeSquintR, true
	case EyeWideRight:
		return EyeWideR, true
	case EyeLookUpRight:
		return EyeLookUpR, true
	case EyeLookDownRight:
		return EyeLookDownR, true
	case EyeLookInRight:
		return EyeLookInR, true
	case EyeLookOutRight:
		return EyeLookOutR, true
	case JawOpen:
		return RigJawOpen, true
	case JawLeft:
		return RigJawLeft, true
	case JawRight:
		return RigJawRight, true
	case MouthLeft:
		return RigMouthLeft, true
	case MouthRight:
		return RigMouthRight, true
	case MouthFunnel:
		return RigMouthFunnel, true
	case MouthPucker:
		return RigMouthPucker, true
	case MouthSmileLeft:
		return MouthSmileL, true
	case MouthSmileRight:
		return MouthSmileR, true
	case MouthFrownLeft:
		return MouthFrownL, true
	case MouthFrownRight:
		return MouthFrownR, true
	case MouthRollLower:
		return RigMouthRollLower, true
	case MouthRollUpper:
		return RigMouthRollUpper, true
	case MouthShrugUpper:
		return RigMouthShrugUpper, true
	case MouthUpperUpLeft:
		return MouthUpperUpL, true
	case MouthUpperUpRight:
		return MouthUpperUpR, true
	case MouthLowerDownLeft:
		return MouthLowerDownL, true
	case MouthLowerDownRight:
		return MouthLowerDownR, true
	case BrowDownLeft:
		return BrowDownL, true
	case BrowDownRight:
		return BrowDownR, true
	case BrowInnerUp:
		// ARKit has a single inner brow shape; rigs split it per side and
		// assets in the wild only wire the left one.
		return BrowInnerUpL, true
	case BrowOuterUpLeft:
		return BrowOuterUpL, true
	case BrowOuterUpRight:
		return BrowOuterUpR, true
	case CheekPuff:
		return RigCheekPuff, true
	case NoseSneerLeft:
		return NoseSneerL, true
	case NoseSneerRight:
		return NoseSneerR, true
	case TongueOut:
		// Not in the detector's own dictionary; mapped so ARKit sources
		// still reach rigs that carry the shape.
		return RigTongueOut, true
	case CheekSquintLeft, CheekSquintRight,
		JawForward, MouthClose,
		MouthDimpleLeft, MouthDimpleRight,
		MouthPressLeft, MouthPressRight,
		MouthShrugLower,
		MouthStretchLeft, MouthStretchRight:
		return 0, false
	default:
		return 0, false
	}
}
