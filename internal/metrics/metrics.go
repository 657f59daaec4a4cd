package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pipelines observed by the inference metrics.
const (
	PipelineFace = "face"
	PipelineBody = "body"
)

var (
	FramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hologram_frames_total",
			Help: "Total number of frames driven by the session loop",
		},
	)

	InferenceCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hologram_inferences_total",
			Help: "Total number of detector inferences consumed",
		},
		[]string{"pipeline", "result"},
	)

	InferenceLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hologram_inference_latency_seconds",
			Help:    "Detector inference latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"pipeline"},
	)

	TrackingLost = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hologram_tracking_lost_total",
			Help: "Number of times tracking was lost and the smoothers reset",
		},
		[]string{"pipeline"},
	)

	AppliedBlendshapes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hologram_applied_blendshapes",
			Help: "Blendshapes that reached a morph target on the last frame",
		},
	)

	DetectorConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hologram_detector_connected",
			Help: "1 while the detector stream is connected",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hologram_active_sessions",
			Help: "Number of running tracking sessions",
		},
	)
)

// ObserveInference records one consumed inference.
func ObserveInference(pipeline string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	InferenceCount.WithLabelValues(pipeline, result).Inc()
	InferenceLatency.WithLabelValues(pipeline).Observe(took.Seconds())
}

// SetDetectorConnected sets the detector connection gauge.
func SetDetectorConnected(up bool) {
	if up {
		DetectorConnected.Set(1)
		return
	}
	DetectorConnected.Set(0)
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("component", "metrics").Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
