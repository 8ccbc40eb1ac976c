package metrics

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "activity_report"

var (
	registerOnce      sync.Once
	reportSubmissions *prometheus.CounterVec
	reportLines       *prometheus.CounterVec
	dashboardDuration *prometheus.HistogramVec
	mailSends         *prometheus.CounterVec
)

// MustRegister registers the application collectors once. Call it at startup.
func MustRegister() {
	registerOnce.Do(func() {
		reportSubmissions = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "report",
				Name:      "submissions_total",
				Help:      "Report submissions by department code and result.",
			},
			[]string{"department", "result"},
		))
		reportLines = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "report",
				Name:      "lines_total",
				Help:      "Member lines stored by department code.",
			},
			[]string{"department"},
		))
		dashboardDuration = registerHistogramVec(prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dashboard",
				Name:      "build_duration_seconds",
				Help:      "Time spent aggregating a dashboard view.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"view"},
		))
		mailSends = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mail",
				Name:      "summary_sends_total",
				Help:      "Daily summary mail attempts by result.",
			},
			[]string{"result"},
		))

		registerRuntimeCollectors()
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordReportSubmit counts one submission and, on success, its lines.
func RecordReportSubmit(departmentCode, result string, lines int) {
	if reportSubmissions == nil {
		return
	}
	code := normalizeLabel(departmentCode, "unknown")
	reportSubmissions.WithLabelValues(code, normalizeLabel(result, "unknown")).Inc()
	if reportLines != nil && lines > 0 {
		reportLines.WithLabelValues(code).Add(float64(lines))
	}
}

func ObserveDashboard(view string, duration time.Duration) {
	if dashboardDuration == nil {
		return
	}
	dashboardDuration.WithLabelValues(normalizeLabel(view, "unknown")).Observe(duration.Seconds())
}

func RecordMailSend(result string) {
	if mailSends == nil {
		return
	}
	mailSends.WithLabelValues(normalizeLabel(result, "unknown")).Inc()
}

func normalizeLabel(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

// The default registry already carries these; re-registering is tolerated.
func registerRuntimeCollectors() {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := prometheus.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}
