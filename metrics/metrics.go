package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds the application collectors served on /metrics.
	Registry = prometheus.NewRegistry()

	classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focargo",
			Subsystem: "ledger",
			Name:      "classifications_total",
			Help:      "Classifications applied to a session, by material bucket.",
		},
		[]string{"material"},
	)

	ecoinsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focargo",
			Subsystem: "ledger",
			Name:      "ecoins_awarded_total",
			Help:      "Ecoins credited, by source.",
		},
		[]string{"source"},
	)

	quizAnswers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focargo",
			Subsystem: "quiz",
			Name:      "answers_total",
			Help:      "Quiz answers, by correctness.",
		},
		[]string{"correct"},
	)

	aiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focargo",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Generative AI calls, by call site and outcome.",
		},
		[]string{"call", "outcome"},
	)

	aiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "focargo",
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Duration of generative AI calls.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
		},
		[]string{"call"},
	)

	redemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focargo",
			Subsystem: "market",
			Name:      "redemptions_total",
			Help:      "Market redemption attempts, by item code and outcome.",
		},
		[]string{"code", "outcome"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "focargo",
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently held in memory.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		classifications,
		ecoinsAwarded,
		quizAnswers,
		aiRequests,
		aiDuration,
		redemptions,
		activeSessions,
	)
}

func RecordClassification(material string, ecoins int) {
	classifications.WithLabelValues(material).Inc()
	ecoinsAwarded.WithLabelValues("scan").Add(float64(ecoins))
}

func RecordQuizAnswer(correct bool, ecoins int) {
	label := "false"
	if correct {
		label = "true"
		ecoinsAwarded.WithLabelValues("quiz").Add(float64(ecoins))
	}
	quizAnswers.WithLabelValues(label).Inc()
}

func RecordAIRequest(call, outcome string, seconds float64) {
	aiRequests.WithLabelValues(call, outcome).Inc()
	aiDuration.WithLabelValues(call).Observe(seconds)
}

func RecordRedemption(code, outcome string) {
	redemptions.WithLabelValues(code, outcome).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
