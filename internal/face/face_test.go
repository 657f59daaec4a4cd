package face

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/hologram/internal/blendshape"
	"github.com/normanking/hologram/internal/landmark"
)

// neutralFace returns a full-size landmark set with the points the
// estimators read placed on a flat, front-facing face.
func neutralFace() landmark.Set {
	s := landmark.Zero(landmark.FaceCount)
	s[landmark.LeftEyeOuter] = landmark.Point{1.5, 0, 0}
	s[landmark.LeftEyeInner] = landmark.Point{0.5, 0, 0}
	s[landmark.LeftEyeUpper] = landmark.Point{1, 0.1, 0}
	s[landmark.LeftEyeLower] = landmark.Point{1, -0.1, 0}

	s[landmark.RightEyeOuter] = landmark.Point{-1.5, 0, 0}
	s[landmark.RightEyeInner] = landmark.Point{-0.5, 0, 0}
	s[landmark.RightEyeUpper] = landmark.Point{-1, 0.1, 0}
	s[landmark.RightEyeLower] = landmark.Point{-1, -0.1, 0}

	s[landmark.LipTop] = landmark.Point{0, -2, 0}
	s[landmark.LipInnerUpper] = landmark.Point{0, -2.1, 0}
	s[landmark.LipInnerLower] = landmark.Point{0, -2.3, 0}
	s[landmark.LipLeft] = landmark.Point{0.7, -2.2, 0}
	s[landmark.LipRight] = landmark.Point{-0.7, -2.2, 0}
	return s
}

func TestKalmanFilter_FirstMeasurementPassesThrough(t *testing.T) {
	k := NewKalmanFilter(1, 1)
	assert.Equal(t, 5.0, k.Filter(5))
	assert.Equal(t, 5.0, k.Estimate())
}

func TestKalmanFilter_Converges(t *testing.T) {
	k := NewKalmanFilter(0.01, 3)
	k.Filter(0)
	var v float64
	for i := 0; i < 200; i++ {
		v = k.Filter(1)
	}
	assert.InDelta(t, 1.0, v, 0.01)
}

func TestKalmanFilter_SmoothsStep(t *testing.T) {
	k := NewKalmanFilter(1, 1)
	k.Filter(0)
	v := k.Filter(10)

	// cov=1, predCov=2, gain=2/3
	assert.InDelta(t, 20.0/3.0, v, 1e-9)
}

func TestKalmanFilter_Reset(t *testing.T) {
	k := NewKalmanFilter(1, 1)
	k.Filter(3)
	k.Filter(4)
	k.Reset()
	assert.Equal(t, 9.0, k.Filter(9))
}

func TestRangeTransform(t *testing.T) {
	assert.Equal(t, 0.0, RangeTransform(0, 1, 0, 1, -1))
	assert.Equal(t, 1.0, RangeTransform(0, 1, 0, 1, 2))
	assert.InDelta(t, 0.7, RangeTransform(0, 1, 0, 1, 0.7), 1e-12)
	assert.InDelta(t, 15.0, RangeTransform(0, 1, 10, 20, 0.5), 1e-12)
}

func TestRemap(t *testing.T) {
	assert.Equal(t, 0.0, Remap(-5, 0, 2))
	assert.Equal(t, 1.0, Remap(5, 0, 2))
	assert.Equal(t, 0.5, Remap(1, 0, 2))
	assert.Equal(t, 0.0, Remap(1, 2, 2))
}

func TestSizeEstimator_Ratios(t *testing.T) {
	face := neutralFace()

	tests := []struct {
		name string
		est  *SizeEstimator
		want float64
	}{
		{"left eye", NewLeftEyeOpenness(), 0.2},
		{"right eye", NewRightEyeOpenness(), 0.2},
		{"mouth open", NewMouthOpenness(), 0.2},
		{"smile", NewMouthSmile(), 1.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.est.Estimate(face)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSizeEstimator_MissingLandmark(t *testing.T) {
	e := NewMouthOpenness()
	_, ok := e.Estimate(landmark.Set{{0, 0, 0}})
	assert.False(t, ok)

	// Filter untouched: the next good measurement passes through.
	got, ok := e.Estimate(neutralFace())
	require.True(t, ok)
	assert.InDelta(t, 0.2, got, 1e-9)
}

func TestSizeEstimator_ZeroReference(t *testing.T) {
	face := neutralFace()
	face[landmark.LeftEyeInner] = face[landmark.RightEyeInner]

	_, ok := NewMouthSmile().Estimate(face)
	assert.False(t, ok)
}

func TestRotationEstimator_FrontFacing(t *testing.T) {
	e := NewRotationEstimator()
	require.True(t, e.Update(neutralFace()))

	r := e.Estimate()
	assert.InDelta(t, 0, r.Yaw, 1e-9)
	assert.InDelta(t, 0, r.Pitch, 1e-9)
	assert.InDelta(t, 0, r.Roll, 1e-9)
}

func TestRotationEstimator_Yaw(t *testing.T) {
	face := neutralFace()
	// Right eye closer to the camera by half the inter-eye distance.
	face[landmark.RightEyeOuter] = landmark.Point{-1.5, 0, 1.5}
	face[landmark.LeftEyeOuter] = landmark.Point{1.5, 0, 0}

	e := NewRotationEstimator()
	require.True(t, e.Update(face))
	r := e.Estimate()

	want := math.Asin(1.5 / math.Sqrt(9+2.25))
	assert.InDelta(t, want, r.Yaw, 1e-9)
}

func TestRotationEstimator_DefaultPointsAreFinite(t *testing.T) {
	r := NewRotationEstimator().Estimate()
	for _, v := range []float64{r.Yaw, r.Pitch, r.Roll} {
		assert.False(t, math.IsNaN(v))
	}
}

func TestRotationEstimator_DegenerateInputIsFinite(t *testing.T) {
	e := NewRotationEstimator()
	same := landmark.Zero(landmark.FaceCount)
	require.True(t, e.Update(same))

	r := e.Estimate()
	assert.Equal(t, Rotation{}, r)
}

func TestRotationEstimator_MissingLandmarkKeepsPoints(t *testing.T) {
	e := NewRotationEstimator()
	require.True(t, e.Update(neutralFace()))
	assert.False(t, e.Update(landmark.Set{{1, 2, 3}}))

	r := e.Estimate()
	assert.InDelta(t, 0, r.Yaw, 1e-9)
}

func TestSafeAsin_Clamps(t *testing.T) {
	assert.InDelta(t, math.Pi/2, safeAsin(1.2, 1), 1e-12)
	assert.InDelta(t, -math.Pi/2, safeAsin(-3, 1), 1e-12)
	assert.Equal(t, 0.0, safeAsin(1, 0))
}

func TestRotationFromQuat(t *testing.T) {
	tests := []struct {
		name  string
		q     mgl64.Quat
		check func(t *testing.T, r Rotation)
	}{
		{
			name: "identity",
			q:    mgl64.QuatIdent(),
			check: func(t *testing.T, r Rotation) {
				assert.Equal(t, Rotation{}, r)
			},
		},
		{
			name: "pitch",
			q:    mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0}),
			check: func(t *testing.T, r Rotation) {
				assert.InDelta(t, 0.3, r.Pitch, 1e-9)
				assert.InDelta(t, 0, r.Yaw, 1e-9)
				assert.InDelta(t, 0, r.Roll, 1e-9)
			},
		},
		{
			name: "yaw",
			q:    mgl64.QuatRotate(-0.4, mgl64.Vec3{0, 1, 0}),
			check: func(t *testing.T, r Rotation) {
				assert.InDelta(t, -0.4, r.Yaw, 1e-9)
			},
		},
		{
			name: "roll",
			q:    mgl64.QuatRotate(0.2, mgl64.Vec3{0, 0, 1}),
			check: func(t *testing.T, r Rotation) {
				assert.InDelta(t, 0.2, r.Roll, 1e-9)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, RotationFromQuat(tt.q))
		})
	}
}

func TestRotation_Blendshapes(t *testing.T) {
	m := Rotation{Yaw: math.Pi / 2, Pitch: -math.Pi / 4, Roll: 0}.Blendshapes()

	assert.InDelta(t, 1.0, m[blendshape.HeadYaw], 1e-12)
	assert.InDelta(t, -0.5, m[blendshape.HeadPitch], 1e-12)
	assert.InDelta(t, 0.0, m[blendshape.HeadRoll], 1e-12)
}

func TestLandmarkExpression_Estimate(t *testing.T) {
	x := NewLandmarkExpression(ExpressionRanges{
		EyeClosed: 0, EyeOpen: 0.4,
		MouthClosed: 0, MouthOpen: 0.4,
		SmileNeutral: 1.2, SmileWide: 1.6,
	})

	m := x.Estimate(neutralFace())

	assert.InDelta(t, 0.5, m["eyeBlinkLeft"], 1e-6)
	assert.InDelta(t, 0.5, m["eyeBlinkRight"], 1e-6)
	assert.InDelta(t, 0.5, m["jawOpen"], 1e-6)
	assert.InDelta(t, 0.5, m["mouthSmileLeft"], 1e-6)
	assert.InDelta(t, 0.5, m["mouthSmileRight"], 1e-6)

	rig := blendshape.TranslateToRig(m)
	assert.Contains(t, rig, "eyeBlink_L")
	assert.Contains(t, rig, "jawOpen")
}

func TestLandmarkExpression_Reset(t *testing.T) {
	x := NewLandmarkExpression(DefaultExpressionRanges())
	x.Estimate(neutralFace())
	x.Reset()

	assert.Empty(t, x.Estimate(nil))
}
