package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the student module.
// Tracks registration outcomes and the duration of the critical path.
type Metrics struct {
	StudentsCreated    prometheus.Counter
	ValidationFailures prometheus.Counter
	Conflicts          *prometheus.CounterVec
	RegisterDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all student module metrics registered.
func New() *Metrics {
	return &Metrics{
		StudentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_students_created_total",
			Help: "Total number of students created",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_validation_failures_total",
			Help: "Total number of registrations rejected by validation",
		}),
		Conflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_conflicts_total",
			Help: "Registrations rejected by a uniqueness conflict, by key",
		}, []string{"key"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_register_duration_seconds",
			Help:    "Duration of Register operations (validation plus persistence)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementStudentsCreated records a successful registration.
func (m *Metrics) IncrementStudentsCreated() {
	m.StudentsCreated.Inc()
}

// IncrementValidationFailure records a registration rejected by validation.
func (m *Metrics) IncrementValidationFailure() {
	m.ValidationFailures.Inc()
}

// IncrementConflict records a registration rejected because the named unique
// key was already taken.
func (m *Metrics) IncrementConflict(key string) {
	m.Conflicts.WithLabelValues(key).Inc()
}

// ObserveRegister records the duration of a Register operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
