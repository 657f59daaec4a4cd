package face

// KalmanFilter is a one-dimensional Kalman filter for noisy scalar signals.
// R is the process noise and Q the measurement noise. The state model is
// x' = A*x + B*u, observed as z = C*x; the defaults A=1, B=0, C=1 describe a
// constant signal.
type KalmanFilter struct {
	R, Q    float64
	A, B, C float64

	x           float64
	cov         float64
	initialized bool
}

// NewKalmanFilter returns a filter with the given noise terms and the
// constant-signal model.
func NewKalmanFilter(r, q float64) *KalmanFilter {
	return &KalmanFilter{R: r, Q: q, A: 1, B: 0, C: 1}
}

// Filter folds measurement z into the estimate and returns the new estimate.
func (k *KalmanFilter) Filter(z float64) float64 {
	return k.FilterControl(z, 0)
}

// FilterControl is Filter with a control input u.
func (k *KalmanFilter) FilterControl(z, u float64) float64 {
	if !k.initialized {
		k.x = z / k.C
		k.cov = k.Q / (k.C * k.C)
		k.initialized = true
		return k.x
	}

	predX := k.A*k.x + k.B*u
	predCov := k.A*k.cov*k.A + k.R

	gain := predCov * k.C / (k.C*predCov*k.C + k.Q)
	k.x = predX + gain*(z-k.C*predX)
	k.cov = predCov - gain*k.C*predCov
	return k.x
}

// Estimate returns the last filtered value.
func (k *KalmanFilter) Estimate() float64 { return k.x }

// Reset forgets all history; the next measurement is taken as-is.
func (k *KalmanFilter) Reset() {
	k.x = 0
	k.cov = 0
	k.initialized = false
}
