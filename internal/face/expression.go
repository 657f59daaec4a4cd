package face

import (
	"math"

	"github.com/normanking/hologram/internal/blendshape"
	"github.com/normanking/hologram/internal/landmark"
)

// ExpressionRanges are the raw ratio ranges mapped onto [0, 1] blendshape
// values when a detector only supplies landmarks.
type ExpressionRanges struct {
	EyeClosed    float64 `mapstructure:"eye_closed" yaml:"eye_closed"`
	EyeOpen      float64 `mapstructure:"eye_open" yaml:"eye_open"`
	MouthClosed  float64 `mapstructure:"mouth_closed" yaml:"mouth_closed"`
	MouthOpen    float64 `mapstructure:"mouth_open" yaml:"mouth_open"`
	SmileNeutral float64 `mapstructure:"smile_neutral" yaml:"smile_neutral"`
	SmileWide    float64 `mapstructure:"smile_wide" yaml:"smile_wide"`
}

// DefaultExpressionRanges suit a front-facing webcam at arm's length.
func DefaultExpressionRanges() ExpressionRanges {
	return ExpressionRanges{
		EyeClosed:    0.12,
		EyeOpen:      0.3,
		MouthClosed:  0.05,
		MouthOpen:    0.8,
		SmileNeutral: 1.4,
		SmileWide:    1.9,
	}
}

// LandmarkExpression estimates a small set of ARKit blendshapes and the head
// rotation from face landmarks alone.
type LandmarkExpression struct {
	ranges ExpressionRanges

	leftEye  *SizeEstimator
	rightEye *SizeEstimator
	mouth    *SizeEstimator
	smile    *SizeEstimator
	rotation *RotationEstimator

	weights blendshape.Weights
}

// NewLandmarkExpression returns an estimator using the given ranges.
func NewLandmarkExpression(ranges ExpressionRanges) *LandmarkExpression {
	return &LandmarkExpression{
		ranges:   ranges,
		leftEye:  NewLeftEyeOpenness(),
		rightEye: NewRightEyeOpenness(),
		mouth:    NewMouthOpenness(),
		smile:    NewMouthSmile(),
		rotation: NewRotationEstimator(),
	}
}

// Estimate returns ARKit-named blendshapes for one landmark set. Signals
// whose landmarks are missing keep their previous value.
func (x *LandmarkExpression) Estimate(set landmark.Set) blendshape.Map {
	r := x.ranges
	if v, ok := x.leftEye.Estimate(set); ok {
		x.weights.Set(blendshape.EyeBlinkLeft, float32(1-Remap(v, r.EyeClosed, r.EyeOpen)))
	}
	if v, ok := x.rightEye.Estimate(set); ok {
		x.weights.Set(blendshape.EyeBlinkRight, float32(1-Remap(v, r.EyeClosed, r.EyeOpen)))
	}
	if v, ok := x.mouth.Estimate(set); ok {
		x.weights.Set(blendshape.JawOpen, float32(Remap(v, r.MouthClosed, r.MouthOpen)))
	}
	if v, ok := x.smile.Estimate(set); ok {
		s := float32(Remap(v, r.SmileNeutral, r.SmileWide))
		x.weights.Set(blendshape.MouthSmileLeft, s)
		x.weights.Set(blendshape.MouthSmileRight, s)
	}
	return x.weights.ToMap()
}

// Rotation updates and returns the estimated head rotation.
func (x *LandmarkExpression) Rotation(set landmark.Set) Rotation {
	x.rotation.Update(set)
	return x.rotation.Estimate()
}

// Reset clears all filter state and the held weights.
func (x *LandmarkExpression) Reset() {
	x.leftEye.Reset()
	x.rightEye.Reset()
	x.mouth.Reset()
	x.smile.Reset()
	x.rotation.Reset()
	x.weights.Reset()
}

// Blendshapes expresses the rotation as signed pseudo-blendshapes, each
// angle divided by pi/2.
func (r Rotation) Blendshapes() blendshape.Map {
	const halfPi = math.Pi / 2
	return blendshape.Map{
		blendshape.HeadYaw:   r.Yaw / halfPi,
		blendshape.HeadPitch: r.Pitch / halfPi,
		blendshape.HeadRoll:  r.Roll / halfPi,
	}
}
