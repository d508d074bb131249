// Package metrics exposes prometheus collectors for request signing.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mahdiidarabi/eosr1/pkg/eosr1"
)

// Metrics implements eosr1.Observer on top of prometheus collectors.
type Metrics struct {
	Signatures    *prometheus.CounterVec
	SignAttempts  prometheus.Histogram
	Verifications *prometheus.CounterVec
}

var _ eosr1.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eosr1",
			Name:      "signatures_total",
			Help:      "Signing requests by outcome.",
		}, []string{"result"}),
		SignAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eosr1",
			Name:      "sign_attempts",
			Help:      "Nonces drawn until a canonical signature was found.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eosr1",
			Name:      "verifications_total",
			Help:      "Signature verifications by outcome.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.Signatures, m.SignAttempts, m.Verifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSign records a signing outcome.
func (m *Metrics) ObserveSign(attempts int, err error) {
	m.SignAttempts.Observe(float64(attempts))
	m.Signatures.WithLabelValues(signResult(err)).Inc()
}

// ObserveVerify records a verification outcome.
func (m *Metrics) ObserveVerify(valid bool, err error) {
	result := "invalid"
	switch {
	case err != nil:
		result = "malformed"
	case valid:
		result = "valid"
	}
	m.Verifications.WithLabelValues(result).Inc()
}

func signResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, eosr1.ErrCanonicalSignatureUnattainable):
		return "not_canonical"
	case errors.Is(err, eosr1.ErrRecoveryIDNotFound):
		return "key_mismatch"
	default:
		return "error"
	}
}
