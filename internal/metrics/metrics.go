package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_uploads_total",
			Help: "Total sensor log uploads by outcome",
		},
		[]string{"source", "status"},
	)

	ReadingsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_readings_parsed_total",
			Help: "Total readings extracted from sensor logs",
		},
		[]string{"source"},
	)

	LinesIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_lines_ignored_total",
			Help: "Total log lines that matched neither the header nor the reading marker",
		},
		[]string{"source"},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airsense_parse_duration_seconds",
			Help:    "Time spent parsing a sensor log",
			Buckets: prometheus.DefBuckets,
		},
	)

	ChartBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airsense_chart_build_duration_seconds",
			Help:    "Time spent building the chart set for an upload",
			Buckets: prometheus.DefBuckets,
		},
	)
)
