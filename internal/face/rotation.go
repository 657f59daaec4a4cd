package face

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/hologram/internal/landmark"
	"github.com/normanking/hologram/internal/scene"
)

// Rotation is a head orientation in radians.
type Rotation struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// RotationEstimator derives head rotation from the eye corners and the top
// of the lip. Each axis has its own filter.
type RotationEstimator struct {
	leftEye    landmark.Point
	rightEye   landmark.Point
	eyeCenter  landmark.Point
	faceCenter landmark.Point

	pitch *KalmanFilter
	yaw   *KalmanFilter
	roll  *KalmanFilter
}

// NewRotationEstimator returns an estimator with the default filter terms
// (R=0.1, Q=3).
func NewRotationEstimator() *RotationEstimator {
	return NewRotationEstimatorWithNoise(0.1, 3)
}

// NewRotationEstimatorWithNoise returns an estimator with custom filter terms.
func NewRotationEstimatorWithNoise(r, q float64) *RotationEstimator {
	return &RotationEstimator{
		// Distinct starting points keep every denominator non-zero before
		// the first Update.
		leftEye:    landmark.Point{0, 0, 0},
		rightEye:   landmark.Point{1, 1, 1},
		eyeCenter:  landmark.Point{2, 2, 2},
		faceCenter: landmark.Point{3, 3, 3},
		pitch:      NewKalmanFilter(r, q),
		yaw:        NewKalmanFilter(r, q),
		roll:       NewKalmanFilter(r, q),
	}
}

// Update takes the reference points from a face landmark set. It returns
// false and keeps the previous points if any of them is missing.
func (e *RotationEstimator) Update(set landmark.Set) bool {
	left, okL := set.At(landmark.LeftEyeOuter)
	right, okR := set.At(landmark.RightEyeOuter)
	lip, okT := set.At(landmark.LipTop)
	if !okL || !okR || !okT {
		return false
	}
	e.leftEye = left
	e.rightEye = right
	e.eyeCenter = landmark.Midpoint(left, right)
	e.faceCenter = landmark.Midpoint(e.eyeCenter, lip)
	return true
}

// Estimate returns the filtered rotation for the last updated points.
func (e *RotationEstimator) Estimate() Rotation {
	vertical := landmark.Distance(e.faceCenter, e.eyeCenter)
	pitch := safeAsin(e.faceCenter.Z()-e.eyeCenter.Z(), vertical)
	yaw := safeAsin(e.rightEye.Z()-e.leftEye.Z(), landmark.Distance(e.leftEye, e.rightEye))
	roll := safeAsin(e.eyeCenter.X()-e.faceCenter.X(), vertical)

	return Rotation{
		Yaw:   e.yaw.Filter(yaw),
		Pitch: e.pitch.Filter(pitch),
		Roll:  e.roll.Filter(roll),
	}
}

// Reset clears filter history. Reference points are kept.
func (e *RotationEstimator) Reset() {
	e.pitch.Reset()
	e.yaw.Reset()
	e.roll.Reset()
}

// RotationFromQuat converts a detector-provided head quaternion to a
// Rotation using the intrinsic XYZ Euler decomposition: pitch about X, yaw
// about Y and roll about Z.
func RotationFromQuat(q mgl64.Quat) Rotation {
	e := scene.EulerFromQuat(q)
	return Rotation{Yaw: e.Y(), Pitch: e.X(), Roll: e.Z()}
}
