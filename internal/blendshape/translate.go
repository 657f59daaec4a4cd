package blendshape

import "strings"

// Map holds expression values keyed by control name. Values are normally in
// [0, 1]; the head rotation pseudo-shapes are signed.
type Map map[string]float64

// Head rotation pseudo-shapes. Their values are angles divided by pi/2.
const (
	HeadYaw   = "headYaw"
	HeadPitch = "headPitch"
	HeadRoll  = "headRoll"
)

// ExtractStandardSubset returns the entries of raw whose keys are ARKit
// standard names. Values are copied unchanged; other keys are dropped.
// It works on value maps and on name-to-morph-index dictionaries alike.
func ExtractStandardSubset[M ~map[string]V, V any](raw M) M {
	out := make(M, len(raw))
	for name, v := range raw {
		if _, ok := ParseARKit(name); ok {
			out[name] = v
		}
	}
	return out
}

// TranslateToRig renames ARKit keys to the rig convention. Keys that are not
// ARKit names, or have no rig control, are dropped.
func TranslateToRig[M ~map[string]V, V any](std M) M {
	out := make(M, len(std))
	for name, v := range std {
		a, ok := ParseARKit(name)
		if !ok {
			continue
		}
		r, ok := a.Rig()
		if !ok {
			continue
		}
		out[r.String()] = v
	}
	return out
}

// FromVendor converts a raw detector vector into a rig-convention map.
// Entries beyond the known table are ignored.
func FromVendor(values []float64) Map {
	out := make(Map, len(values))
	for i, v := range values {
		r, ok := VendorIndex(i)
		if !ok {
			break
		}
		out[r.String()] = v
	}
	return out
}

// ToRig normalises a map in either convention to the rig convention: ARKit
// names are translated and rig names pass through, winning over a
// translated duplicate. Anything else is dropped.
func ToRig[M ~map[string]V, V any](m M) M {
	out := TranslateToRig(ExtractStandardSubset(m))
	for name, v := range m {
		if _, ok := ParseRig(name); ok {
			out[name] = v
		}
	}
	return out
}

// Flip mirrors a rig-convention map for a horizontally flipped camera:
// when both an _L key and its _R counterpart are present their values are
// swapped. Keys without a counterpart in m are copied unchanged. Flip(Flip(m))
// equals m.
func Flip(m Map) Map {
	out := make(Map, len(m))
	for name, v := range m {
		mirror := MirrorName(name)
		if mv, ok := m[mirror]; ok && mirror != name {
			out[name] = mv
			continue
		}
		out[name] = v
	}
	return out
}

// MirrorName swaps an _L suffix for _R and vice versa.
func MirrorName(name string) string {
	if base, ok := strings.CutSuffix(name, "_L"); ok {
		return base + "_R"
	}
	if base, ok := strings.CutSuffix(name, "_R"); ok {
		return base + "_L"
	}
	return name
}
