package feed

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/hologram/internal/blendshape"
	"github.com/normanking/hologram/internal/body"
	"github.com/normanking/hologram/internal/face"
	"github.com/normanking/hologram/internal/landmark"
)

// Message types on the detector stream.
const (
	TypeBodyRequest = "body_request"
	TypeFace        = "face"
	TypeFaceLost    = "face_lost"
	TypeBody        = "body"
	TypeError       = "error"
)

// WSBodyRequest asks the detector for body landmarks. Data carries an
// encoded frame when the caller owns the camera; otherwise the detector
// uses its latest frame.
type WSBodyRequest struct {
	Type      string `json:"type"`
	Sequence  int64  `json:"sequence"`
	Data      string `json:"data,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WSFaceMessage is a face prediction pushed by the detector. Blendshapes
// may use ARKit or rig names; Values, when present, are rig values in the
// detector's vendor index order.
type WSFaceMessage struct {
	Type          string             `json:"type"`
	Blendshapes   map[string]float64 `json:"blendshapes,omitempty"`
	Values        []float64          `json:"values,omitempty"`
	Rotation      []float64          `json:"rotation,omitempty"` // quaternion x, y, z, w
	Landmarks     [][3]float64       `json:"landmarks,omitempty"`
	ImagePosition [2]float64         `json:"image_position"`
}

// WSBodyMessage answers a WSBodyRequest.
type WSBodyMessage struct {
	Type      string       `json:"type"`
	Sequence  int64        `json:"sequence"`
	Pose      [][3]float64 `json:"pose,omitempty"`
	LeftHand  [][3]float64 `json:"left_hand,omitempty"`
	RightHand [][3]float64 `json:"right_hand,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// WSErrorMessage reports errors
type WSErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FaceEvent is a decoded face prediction.
type FaceEvent struct {
	// Blendshapes in rig naming.
	Blendshapes blendshape.Map
	// Rotation is nil when the detector sent no head rotation.
	Rotation      *face.Rotation
	Landmarks     landmark.Set
	ImagePosition mgl64.Vec2
	Received      time.Time
}

func toSet(points [][3]float64) landmark.Set {
	if len(points) == 0 {
		return nil
	}
	s := make(landmark.Set, len(points))
	for i, p := range points {
		s[i] = landmark.Point(p)
	}
	return s
}

// decodeFace converts a face message into rig naming.
func decodeFace(msg *WSFaceMessage, now time.Time) *FaceEvent {
	shapes := blendshape.ToRig(blendshape.Map(msg.Blendshapes))
	for name, v := range blendshape.FromVendor(msg.Values) {
		shapes[name] = v
	}

	ev := &FaceEvent{
		Blendshapes:   shapes,
		Landmarks:     toSet(msg.Landmarks),
		ImagePosition: mgl64.Vec2(msg.ImagePosition),
		Received:      now,
	}
	if len(msg.Rotation) == 4 {
		q := mgl64.Quat{W: msg.Rotation[3], V: mgl64.Vec3{msg.Rotation[0], msg.Rotation[1], msg.Rotation[2]}}
		if q.Len() > 0 {
			r := face.RotationFromQuat(q.Normalize())
			ev.Rotation = &r
		}
	}
	return ev
}

// decodeBody converts a body message. Groups the detector did not see are
// nil.
func decodeBody(msg *WSBodyMessage) *body.Prediction {
	return &body.Prediction{
		Pose:      toSet(msg.Pose),
		LeftHand:  toSet(msg.LeftHand),
		RightHand: toSet(msg.RightHand),
	}
}
