package launch

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dataclassification/entity"
)

// Metrics holds the counters of one export run. They live on a private
// registry and are written out as a node_exporter textfile.
type Metrics struct {
	registry          *prometheus.Registry
	recordsClassified *prometheus.CounterVec
	fetchAttempts     *prometheus.CounterVec
	recordsFiltered   prometheus.Counter
	lastRunUnix       prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recordsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dataclassification",
				Name:      "records_classified_total",
				Help:      "Classified activity records partitioned by category and access type.",
			},
			[]string{"category", "access_type"},
		),
		fetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dataclassification",
				Name:      "fetch_attempts_total",
				Help:      "Activity query attempts partitioned by result.",
			},
			[]string{"result"},
		),
		recordsFiltered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "dataclassification",
				Name:      "records_filtered_total",
				Help:      "Records dropped by the user and process filters.",
			},
		),
		lastRunUnix: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "dataclassification",
				Name:      "last_run_unix",
				Help:      "Unix time of the most recent successful run.",
			},
		),
	}
}

func (m *Metrics) ObserveFetch(result string) {
	m.fetchAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFiltered(n int) {
	m.recordsFiltered.Add(float64(n))
}

// ObserveClassified counts records per category and access type.
func (m *Metrics) ObserveClassified(records []entity.ActivityRecord) {
	counts := make(map[entity.Classification]int)
	for i := range records {
		c := records[i].Classification
		counts[entity.Classification{Category: c.Category, AccessType: c.AccessType}]++
	}
	for c, n := range counts {
		m.recordsClassified.WithLabelValues(c.Category, c.AccessType).Add(float64(n))
	}
}

func (m *Metrics) MarkRun() {
	m.lastRunUnix.SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("WriteTextfile: %w", err)
	}
	return nil
}
