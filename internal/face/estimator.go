// Package face converts raw face landmarks into filtered scalar signals:
// eye and mouth openness, smile width and head rotation.
package face

import "github.com/normanking/hologram/internal/landmark"

// SizeEstimator measures the distance between two landmarks relative to a
// reference distance, which normalises for head size and distance from the
// camera. The ratio is passed through a Kalman filter.
type SizeEstimator struct {
	name       string
	signalA    int
	signalB    int
	referenceA int
	referenceB int
	filter     *KalmanFilter
}

// NewSizeEstimator builds an estimator over two landmark index pairs with
// the given filter noise terms.
func NewSizeEstimator(name string, signalA, signalB, referenceA, referenceB int, r, q float64) *SizeEstimator {
	return &SizeEstimator{
		name:       name,
		signalA:    signalA,
		signalB:    signalB,
		referenceA: referenceA,
		referenceB: referenceB,
		filter:     NewKalmanFilter(r, q),
	}
}

// NewLeftEyeOpenness measures eyelid gap over eye width on the left eye.
func NewLeftEyeOpenness() *SizeEstimator {
	return NewSizeEstimator("leftEyeOpenness",
		landmark.LeftEyeUpper, landmark.LeftEyeLower,
		landmark.LeftEyeOuter, landmark.LeftEyeInner, 1, 2)
}

// NewRightEyeOpenness measures eyelid gap over eye width on the right eye.
func NewRightEyeOpenness() *SizeEstimator {
	return NewSizeEstimator("rightEyeOpenness",
		landmark.RightEyeUpper, landmark.RightEyeLower,
		landmark.RightEyeInner, landmark.RightEyeOuter, 1, 2)
}

// NewMouthOpenness measures the inner lip gap over the inner eye distance.
func NewMouthOpenness() *SizeEstimator {
	return NewSizeEstimator("mouthOpenness",
		landmark.LipInnerUpper, landmark.LipInnerLower,
		landmark.LeftEyeInner, landmark.RightEyeInner, 1, 1)
}

// NewMouthSmile measures mouth width over the inner eye distance.
func NewMouthSmile() *SizeEstimator {
	return NewSizeEstimator("mouthSmile",
		landmark.LipLeft, landmark.LipRight,
		landmark.LeftEyeInner, landmark.RightEyeInner, 1, 1)
}

// Name identifies the signal, e.g. for logging.
func (e *SizeEstimator) Name() string { return e.name }

// Estimate returns the filtered ratio. ok is false, and the filter is left
// untouched, when a landmark is missing or the reference distance is zero.
func (e *SizeEstimator) Estimate(set landmark.Set) (value float64, ok bool) {
	a, okA := set.At(e.signalA)
	b, okB := set.At(e.signalB)
	ra, okRA := set.At(e.referenceA)
	rb, okRB := set.At(e.referenceB)
	if !okA || !okB || !okRA || !okRB {
		return 0, false
	}
	ref := landmark.Distance(ra, rb)
	if ref == 0 {
		return 0, false
	}
	return e.filter.Filter(landmark.Distance(a, b) / ref), true
}

// Reset clears the filter history.
func (e *SizeEstimator) Reset() { e.filter.Reset() }
