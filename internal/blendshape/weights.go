package blendshape

// Weights is a dense set of ARKit blendshape values.
type Weights [ARKitCount]float32

// Set stores value clamped to [0, 1].
func (w *Weights) Set(idx ARKit, value float32) {
	w[idx] = clamp(value, 0, 1)
}

func (w *Weights) Get(idx ARKit) float32 {
	return w[idx]
}

func (w *Weights) Reset() {
	for i := range w {
		w[i] = 0
	}
}

// ToMap returns the non-zero weights keyed by ARKit name.
func (w *Weights) ToMap() Map {
	out := make(Map)
	for i, v := range w {
		if v != 0 {
			out[ARKit(i).String()] = float64(v)
		}
	}
	return out
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
