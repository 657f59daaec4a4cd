// Package body tracks pose and hand landmarks and poses avatar arms, hands
// and legs from them.
package body

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/hologram/internal/landmark"
	"github.com/normanking/hologram/internal/smoother"
)

// Prediction is one body detector result. A nil group means the detector
// did not see it this cycle.
type Prediction struct {
	Pose      landmark.Set
	LeftHand  landmark.Set
	RightHand landmark.Set
}

// Frame is a captured camera frame handed to the detector.
type Frame struct {
	Image     []byte
	Timestamp time.Time
}

// Detector runs body inference on one frame. It may be slow; the pipeline
// never has more than one call outstanding.
type Detector interface {
	Detect(ctx context.Context, frame Frame) (*Prediction, error)
}

// Connector is implemented by detectors that sit behind a connection. The
// pipeline does not dispatch while IsConnected reports false.
type Connector interface {
	IsConnected() bool
}

// State is the inference scheduling state of a Pipeline.
type State int

const (
	Idle State = iota
	AwaitingInference
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInference:
		return "awaiting_inference"
	default:
		return "unknown"
	}
}

// Smoothers holds one temporal smoother per landmark group.
type Smoothers struct {
	Pose      *smoother.Smoother
	LeftHand  *smoother.Smoother
	RightHand *smoother.Smoother
}

// NewSmoothers creates the pose and hand smoothers.
func NewSmoothers(opts ...smoother.Option) *Smoothers {
	return &Smoothers{
		Pose:      smoother.New(landmark.PoseCount, smoother.DefaultInterval, opts...),
		LeftHand:  smoother.New(landmark.HandCount, smoother.DefaultInterval, opts...),
		RightHand: smoother.New(landmark.HandCount, smoother.DefaultInterval, opts...),
	}
}

// Update feeds one prediction. A nil prediction resets every group.
func (s *Smoothers) Update(p *Prediction) {
	if p == nil {
		s.Reset()
		return
	}
	s.Pose.Update(p.Pose)
	s.LeftHand.Update(p.LeftHand)
	s.RightHand.Update(p.RightHand)
}

// Reset returns every group to its neutral state.
func (s *Smoothers) Reset() {
	s.Pose.Reset()
	s.LeftHand.Reset()
	s.RightHand.Reset()
}

// Query returns the smoothed prediction. Groups that are not ready are nil.
// ok is false when no group is ready.
func (s *Smoothers) Query() (*Prediction, bool) {
	var p Prediction
	var seen bool
	if v, ok := s.Pose.Query(); ok {
		p.Pose, seen = v, true
	}
	if v, ok := s.LeftHand.Query(); ok {
		p.LeftHand, seen = v, true
	}
	if v, ok := s.RightHand.Query(); ok {
		p.RightHand, seen = v, true
	}
	if !seen {
		return nil, false
	}
	return &p, true
}

type result struct {
	gen  uint64
	pred *Prediction
	err  error
	took time.Duration
}

// InferenceHook observes every completed inference.
type InferenceHook func(took time.Duration, err error)

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithInferenceHook registers fn to be called on the frame goroutine for
// every inference result that is consumed.
func WithInferenceHook(fn InferenceHook) PipelineOption {
	return func(p *Pipeline) { p.hook = fn }
}

// WithSmootherOptions passes options to the pipeline's smoothers.
func WithSmootherOptions(opts ...smoother.Option) PipelineOption {
	return func(p *Pipeline) { p.smoothers = NewSmoothers(opts...) }
}

// Pipeline schedules body inference from the frame loop and smooths its
// results. All methods must be called from the one goroutine that owns it;
// only the detector call runs elsewhere.
type Pipeline struct {
	detector  Detector
	smoothers *Smoothers
	logger    zerolog.Logger
	hook      InferenceHook

	state   State
	gen     uint64
	stopped bool
	results chan result
}

// NewPipeline creates a running pipeline around d.
func NewPipeline(d Detector, logger zerolog.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		detector: d,
		logger:   logger.With().Str("component", "body").Logger(),
		results:  make(chan result, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.smoothers == nil {
		p.smoothers = NewSmoothers()
	}
	return p
}

// State reports whether an inference is in flight.
func (p *Pipeline) State() State { return p.state }

// Smoothers exposes the pipeline's smoothers.
func (p *Pipeline) Smoothers() *Smoothers { return p.smoothers }

// Tick advances the pipeline by one rendered frame. It consumes a finished
// inference if there is one, dispatches frame for inference when no other
// inference is in flight, and returns the current smoothed prediction.
func (p *Pipeline) Tick(ctx context.Context, frame Frame) (*Prediction, bool) {
	p.drain()
	if p.state == Idle && !p.stopped && p.online() {
		p.dispatch(ctx, frame)
	}
	if p.stopped {
		return nil, false
	}
	return p.smoothers.Query()
}

func (p *Pipeline) online() bool {
	c, ok := p.detector.(Connector)
	return !ok || c.IsConnected()
}

func (p *Pipeline) drain() {
	if p.state != AwaitingInference {
		return
	}
	select {
	case r := <-p.results:
		p.state = Idle
		if r.gen != p.gen {
			return
		}
		if p.hook != nil {
			p.hook(r.took, r.err)
		}
		if r.err != nil {
			p.logger.Debug().Err(r.err).Msg("Body inference failed")
			return
		}
		p.smoothers.Update(r.pred)
	default:
	}
}

func (p *Pipeline) dispatch(ctx context.Context, frame Frame) {
	p.state = AwaitingInference
	gen := p.gen
	go func() {
		start := time.Now()
		pred, err := p.detector.Detect(ctx, frame)
		p.results <- result{gen: gen, pred: pred, err: err, took: time.Since(start)}
	}()
}

// Stop stops scheduling inference and resets the smoothers. An inference
// already in flight is left to finish and its result is discarded.
func (p *Pipeline) Stop() {
	p.stopped = true
	p.gen++
	p.smoothers.Reset()
}

// Start resumes scheduling after Stop.
func (p *Pipeline) Start() {
	p.stopped = false
}
