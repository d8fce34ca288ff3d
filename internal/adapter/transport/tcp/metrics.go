package tcp

import (
	"github.com/rcrowley/go-metrics"
)

type serverMetrics struct {
	issued    metrics.Counter
	accepted  metrics.Counter
	rejected  metrics.Counter
	replayed  metrics.Counter
	malformed metrics.Counter
}

func newServerMetrics(r metrics.Registry) serverMetrics {
	return serverMetrics{
		issued:    metrics.GetOrRegisterCounter("pow.challenges.issued", r),
		accepted:  metrics.GetOrRegisterCounter("pow.solutions.accepted", r),
		rejected:  metrics.GetOrRegisterCounter("pow.solutions.rejected", r),
		replayed:  metrics.GetOrRegisterCounter("pow.solutions.replayed", r),
		malformed: metrics.GetOrRegisterCounter("pow.solutions.malformed", r),
	}
}

func (m serverMetrics) logArgs() []any {
	return []any{
		"issued", m.issued.Count(),
		"accepted", m.accepted.Count(),
		"rejected", m.rejected.Count(),
		"replayed", m.replayed.Count(),
		"malformed", m.malformed.Count(),
	}
}
