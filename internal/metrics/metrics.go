package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rootfind/internal/solver"
)

// Metrics — счётчики запусков решателей; у каждого сервера свой реестр
type Metrics struct {
	Registry *prometheus.Registry

	Runs       *prometheus.CounterVec
	Iterations *prometheus.HistogramVec
	Active     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		// Runs — число завершённых запусков по методу и виду результата
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootfind_runs_total",
				Help: "Завершённые запуски по методу и результату",
			},
			[]string{"method", "outcome"}, // outcome: root_found | ... | error | stopped
		),
		// Iterations — сколько итераций понадобилось
		Iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rootfind_iterations",
				Help:    "Число итераций до остановки",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 20, 30, 50, 100},
			},
			[]string{"method"},
		),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rootfind_active_runs",
			Help: "Запуски, которые сейчас выполняются",
		}),
	}
	m.Registry.MustRegister(m.Runs, m.Iterations, m.Active)
	return m
}

// Observe учитывает завершённый запуск
func (m *Metrics) Observe(method solver.Method, out solver.Outcome) {
	m.Runs.WithLabelValues(string(method), out.Kind.String()).Inc()
	m.Iterations.WithLabelValues(string(method)).Observe(float64(out.Iterations))
}

// Fail учитывает запуск, прерванный ошибкой или остановкой
func (m *Metrics) Fail(method solver.Method, reason string) {
	m.Runs.WithLabelValues(string(method), reason).Inc()
}

// Handler — эндпоинт /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
