// Package metrics counts review lookups and translations for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder struct {
	lookups      *prometheus.CounterVec
	translations *prometheus.CounterVec
}

// New registers the review counters with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviereviews",
			Name:      "lookups_total",
			Help:      "Review lookups served, by filter kind.",
		}, []string{"filter"}),
		translations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviereviews",
			Name:      "translations_total",
			Help:      "Review content translations, by result.",
		}, []string{"result"}),
	}
}

func (r *Recorder) LookupServed(filter string) {
	r.lookups.WithLabelValues(filter).Inc()
}

func (r *Recorder) Translated(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.translations.WithLabelValues(result).Inc()
}
