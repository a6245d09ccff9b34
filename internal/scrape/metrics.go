package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scrapeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventnotify_scrape_total",
		Help: "Scrape attempts per source.",
	}, []string{"source"})

	scrapeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventnotify_scrape_errors_total",
		Help: "Scrape failures per source.",
	}, []string{"source"})

	rowsExtracted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "eventnotify_rows_extracted",
		Help: "Raw listing rows extracted in the last scrape per source.",
	}, []string{"source"})
)
