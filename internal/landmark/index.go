package landmark

// Face mesh indices (468-point topology).
const (
	FaceCount = 468

	LipTop        = 0
	LipInnerUpper = 13
	LipInnerLower = 14
	LipRight      = 61
	LipLeft       = 291

	RightEyeOuter = 33
	RightEyeInner = 133
	RightEyeLower = 145
	RightEyeUpper = 159

	LeftEyeOuter = 263
	LeftEyeInner = 362
	LeftEyeLower = 374
	LeftEyeUpper = 386
)

// Pose indices (33-point topology).
const (
	PoseCount = 33

	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
	PoseLeftKnee      = 25
	PoseRightKnee     = 26
	PoseLeftAnkle     = 27
	PoseRightAnkle    = 28
)

// Hand indices (21-point topology).
const (
	HandCount = 21

	HandWrist     = 0
	HandIndexMCP  = 5
	HandMiddleMCP = 9
	HandRingMCP   = 13
	HandPinkyMCP  = 17
)
