package body

import "strings"

// Canonical bone names. Assets using other conventions are mapped onto these.
const (
	Hips          = "Hips"
	Spine         = "Spine"
	Spine1        = "Spine1"
	Spine2        = "Spine2"
	LeftShoulder  = "LeftShoulder"
	RightShoulder = "RightShoulder"
	LeftArm       = "LeftArm"
	LeftForeArm   = "LeftForeArm"
	LeftHand      = "LeftHand"
	RightArm      = "RightArm"
	RightForeArm  = "RightForeArm"
	RightHand     = "RightHand"
	LeftUpLeg     = "LeftUpLeg"
	LeftLeg       = "LeftLeg"
	RightUpLeg    = "RightUpLeg"
	RightLeg      = "RightLeg"
)

// Finger chains, three joints each, from the knuckle outwards.
var (
	LeftThumb   = [3]string{"LeftHandThumb1", "LeftHandThumb2", "LeftHandThumb3"}
	LeftIndex   = [3]string{"LeftHandIndex1", "LeftHandIndex2", "LeftHandIndex3"}
	LeftMiddle  = [3]string{"LeftHandMiddle1", "LeftHandMiddle2", "LeftHandMiddle3"}
	LeftRing    = [3]string{"LeftHandRing1", "LeftHandRing2", "LeftHandRing3"}
	LeftPinky   = [3]string{"LeftHandPinky1", "LeftHandPinky2", "LeftHandPinky3"}
	RightThumb  = [3]string{"RightHandThumb1", "RightHandThumb2", "RightHandThumb3"}
	RightIndex  = [3]string{"RightHandIndex1", "RightHandIndex2", "RightHandIndex3"}
	RightMiddle = [3]string{"RightHandMiddle1", "RightHandMiddle2", "RightHandMiddle3"}
	RightRing   = [3]string{"RightHandRing1", "RightHandRing2", "RightHandRing3"}
	RightPinky  = [3]string{"RightHandPinky1", "RightHandPinky2", "RightHandPinky3"}
)

// vrmBones maps VRM humanoid node name fragments to canonical names. VRM
// exporters decorate names with prefixes ("J_Bip_C_Hips"), so lookups match
// by substring. Longer fragments come first so "L_UpperArm" is not taken
// for a shorter fragment it contains.
var vrmBones = []struct{ fragment, name string }{
	{"C_UpperChest", Spine2},
	{"C_Chest", Spine1},
	{"C_Spine", Spine},
	{"C_Hips", Hips},
	{"L_Shoulder", LeftShoulder},
	{"R_Shoulder", RightShoulder},
	{"L_UpperLeg", LeftUpLeg},
	{"L_LowerLeg", LeftLeg},
	{"R_UpperLeg", RightUpLeg},
	{"R_LowerLeg", RightLeg},
	{"L_UpperArm", LeftArm},
	{"L_LowerArm", LeftForeArm},
	{"L_Hand", LeftHand},
	{"R_UpperArm", RightArm},
	{"R_LowerArm", RightForeArm},
	{"R_Hand", RightHand},
	{"L_Thumb1", LeftThumb[0]}, {"L_Thumb2", LeftThumb[1]}, {"L_Thumb3", LeftThumb[2]},
	{"L_Index1", LeftIndex[0]}, {"L_Index2", LeftIndex[1]}, {"L_Index3", LeftIndex[2]},
	{"L_Middle1", LeftMiddle[0]}, {"L_Middle2", LeftMiddle[1]}, {"L_Middle3", LeftMiddle[2]},
	{"L_Ring1", LeftRing[0]}, {"L_Ring2", LeftRing[1]}, {"L_Ring3", LeftRing[2]},
	{"L_Little1", LeftPinky[0]}, {"L_Little2", LeftPinky[1]}, {"L_Little3", LeftPinky[2]},
	{"R_Thumb1", RightThumb[0]}, {"R_Thumb2", RightThumb[1]}, {"R_Thumb3", RightThumb[2]},
	{"R_Index1", RightIndex[0]}, {"R_Index2", RightIndex[1]}, {"R_Index3", RightIndex[2]},
	{"R_Middle1", RightMiddle[0]}, {"R_Middle2", RightMiddle[1]}, {"R_Middle3", RightMiddle[2]},
	{"R_Ring1", RightRing[0]}, {"R_Ring2", RightRing[1]}, {"R_Ring3", RightRing[2]},
	{"R_Little1", RightPinky[0]}, {"R_Little2", RightPinky[1]}, {"R_Little3", RightPinky[2]},
}

var canonical = func() map[string]bool {
	m := map[string]bool{}
	for _, n := range []string{
		Hips, Spine, Spine1, Spine2, LeftShoulder, RightShoulder,
		LeftArm, LeftForeArm, LeftHand, RightArm, RightForeArm, RightHand,
		LeftUpLeg, LeftLeg, RightUpLeg, RightLeg,
	} {
		m[n] = true
	}
	for _, chain := range [][3]string{
		LeftThumb, LeftIndex, LeftMiddle, LeftRing, LeftPinky,
		RightThumb, RightIndex, RightMiddle, RightRing, RightPinky,
	} {
		for _, n := range chain {
			m[n] = true
		}
	}
	return m
}()

// CanonicalName maps an asset bone name to its canonical name. glTF assets
// must match exactly; VRM assets match by fragment.
func CanonicalName(name string, vrm bool) (string, bool) {
	if !vrm {
		return name, canonical[name]
	}
	for _, b := range vrmBones {
		if strings.Contains(name, b.fragment) {
			return b.name, true
		}
	}
	return "", false
}
