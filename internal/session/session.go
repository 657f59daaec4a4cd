// Package session runs the per-frame tracking loop: it takes the latest
// detector output, smooths it and drives the avatar rig.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/normanking/hologram/internal/blendshape"
	"github.com/normanking/hologram/internal/body"
	"github.com/normanking/hologram/internal/bus"
	"github.com/normanking/hologram/internal/face"
	"github.com/normanking/hologram/internal/feed"
	"github.com/normanking/hologram/internal/landmark"
	"github.com/normanking/hologram/internal/metrics"
	"github.com/normanking/hologram/internal/retarget"
	"github.com/normanking/hologram/internal/rig"
	"github.com/normanking/hologram/internal/smoother"
)

// Config tunes the frame loop.
type Config struct {
	FrameInterval time.Duration
	// LostAfter is how long a face prediction stays valid without a newer one.
	LostAfter time.Duration
	// SmoothingInterval seeds the smoothers' interval estimate.
	SmoothingInterval time.Duration
	Expression        face.ExpressionRanges
	// FullBody forces leg tracking on regardless of the model options.
	FullBody bool
}

// Option configures a Session.
type Option func(*Session)

// WithBody enables body tracking through p.
func WithBody(p *body.Pipeline) Option {
	return func(s *Session) { s.pipeline = p }
}

// WithBus publishes tracking events on b.
func WithBus(b *bus.EventBus) Option {
	return func(s *Session) { s.bus = b }
}

// WithOptionChanges applies reloaded model options received on ch.
func WithOptionChanges(ch <-chan retarget.Options) Option {
	return func(s *Session) { s.optionChanges = ch }
}

// WithClock replaces time.Now for the face smoother and staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session owns the rig driver, the face smoother and estimators, and the
// body pipeline. Only the goroutine running Run or Step touches them; the
// detector feed hands over faces through PushFace and FaceLost.
type Session struct {
	ID string

	cfg     Config
	binding *rig.Binding
	tracker *body.Tracker
	driver  *retarget.Driver
	base    zerolog.Logger
	logger  zerolog.Logger
	now     func() time.Time

	pipeline      *body.Pipeline
	bus           *bus.EventBus
	optionChanges <-chan retarget.Options

	faceSmoother *smoother.Smoother
	expression   *face.LandmarkExpression

	mu       sync.Mutex
	incoming *feed.FaceEvent
	lost     bool

	current      *feed.FaceEvent
	faceTracking bool
	bodyTracking bool
}

// New creates a session driving avatar with opts.
func New(avatar *Avatar, opts retarget.Options, cfg Config, logger zerolog.Logger, options ...Option) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		cfg:        cfg,
		binding:    avatar.Binding,
		tracker:    body.NewTracker(),
		base:       logger,
		now:        time.Now,
		expression: face.NewLandmarkExpression(cfg.Expression),
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = logger.With().Str("component", "session").Str("session", s.ID).Logger()

	interval := cfg.SmoothingInterval
	if interval <= 0 {
		interval = smoother.DefaultInterval
	}
	s.faceSmoother = smoother.New(landmark.FaceCount, interval, smoother.WithClock(s.now))

	s.tracker.Init(avatar.Binding.Root, avatar.VRM)
	s.driver = retarget.NewDriver(avatar.Binding, s.withOverrides(opts), s.tracker, logger)
	return s
}

// withOverrides layers session settings over model options.
func (s *Session) withOverrides(opts retarget.Options) retarget.Options {
	if s.cfg.FullBody {
		opts.FullBody = true
	}
	return opts
}

// Driver returns the active rig driver.
func (s *Session) Driver() *retarget.Driver { return s.driver }

// PushFace hands over a new face prediction. Safe for concurrent use.
func (s *Session) PushFace(ev *feed.FaceEvent) {
	s.mu.Lock()
	s.incoming = ev
	s.lost = false
	s.mu.Unlock()
}

// FaceLost reports that the detector no longer sees a face. Safe for
// concurrent use.
func (s *Session) FaceLost() {
	s.mu.Lock()
	s.incoming = nil
	s.lost = true
	s.mu.Unlock()
}

func (s *Session) takeFace() (ev *feed.FaceEvent, lost bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, lost = s.incoming, s.lost
	s.incoming, s.lost = nil, false
	return ev, lost
}

// Run drives frames until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	interval := s.cfg.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()
	s.publish(bus.EventTypeSessionStarted, nil)
	s.logger.Info().Dur("interval", interval).Msg("Session started")

	for {
		select {
		case <-ctx.Done():
			if s.pipeline != nil {
				s.pipeline.Stop()
			}
			s.faceSmoother.Reset()
			s.publish(bus.EventTypeSessionStopped, nil)
			s.logger.Info().Msg("Session stopped")
			return nil
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// Step advances one frame.
func (s *Session) Step(ctx context.Context) {
	metrics.FramesTotal.Inc()
	s.applyOptionChanges()

	fp := s.faceFrame()

	var bp *body.Prediction
	if s.pipeline != nil {
		pred, ok := s.pipeline.Tick(ctx, body.Frame{Timestamp: s.now()})
		s.setBodyTracking(ok)
		if ok {
			bp = pred
		}
	}

	applied := s.driver.UpdateFrame(fp, bp)
	metrics.AppliedBlendshapes.Set(float64(applied))
}

func (s *Session) applyOptionChanges() {
	if s.optionChanges == nil {
		return
	}
	select {
	case opts := <-s.optionChanges:
		next := retarget.NewDriver(s.binding, s.withOverrides(opts), s.tracker, s.base)
		next.SetLipSync(s.driver.LipSync())
		s.driver = next
		s.logger.Info().Msg("Model options applied")
		s.publish(bus.EventTypeOptionsChanged, nil)
	default:
	}
}

// faceFrame turns the newest face input into a prediction for this frame,
// or nil when the face is lost.
func (s *Session) faceFrame() *retarget.FacePrediction {
	ev, lost := s.takeFace()
	now := s.now()

	switch {
	case lost:
		s.current = nil
	case ev != nil:
		s.current = ev
		metrics.InferenceCount.WithLabelValues(metrics.PipelineFace, "ok").Inc()
		if len(ev.Landmarks) > 0 {
			s.faceSmoother.Update(ev.Landmarks)
		}
	case s.current != nil && s.cfg.LostAfter > 0 && now.Sub(s.current.Received) > s.cfg.LostAfter:
		s.current = nil
	}

	if s.current == nil {
		s.setFaceTracking(false)
		return nil
	}
	s.setFaceTracking(true)

	cur := s.current
	fp := &retarget.FacePrediction{
		Blendshapes:   cur.Blendshapes,
		ImagePosition: cur.ImagePosition,
	}
	if cur.Rotation != nil {
		fp.Rotation = *cur.Rotation
	}

	// Landmark-only detectors: estimate from the smoothed landmarks.
	if smoothed, ok := s.faceSmoother.Query(); ok && len(cur.Landmarks) > 0 {
		if len(fp.Blendshapes) == 0 {
			fp.Blendshapes = blendshape.ToRig(s.expression.Estimate(smoothed))
		}
		if cur.Rotation == nil {
			fp.Rotation = s.expression.Rotation(smoothed)
		}
	}
	return fp
}

func (s *Session) setFaceTracking(on bool) {
	if on == s.faceTracking {
		return
	}
	s.faceTracking = on
	if on {
		s.logger.Debug().Msg("Face found")
		s.publish(bus.EventTypeFaceFound, nil)
		return
	}
	s.faceSmoother.Reset()
	s.expression.Reset()
	s.driver.Neutral()
	metrics.TrackingLost.WithLabelValues(metrics.PipelineFace).Inc()
	s.logger.Debug().Msg("Face lost")
	s.publish(bus.EventTypeFaceLost, nil)
}

func (s *Session) setBodyTracking(on bool) {
	if on == s.bodyTracking {
		return
	}
	s.bodyTracking = on
	if on {
		s.publish(bus.EventTypeBodyFound, nil)
		return
	}
	metrics.TrackingLost.WithLabelValues(metrics.PipelineBody).Inc()
	s.publish(bus.EventTypeBodyLost, nil)
}

func (s *Session) publish(t bus.EventType, data map[string]any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Type: t, Session: s.ID, Time: s.now(), Data: data})
}
