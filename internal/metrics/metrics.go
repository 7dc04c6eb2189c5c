package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ufwatch_lines_ingested_total",
		Help: "Total number of raw lines received, labelled by input source.",
	}, []string{"source"})

	EventsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ufwatch_events_emitted_total",
		Help: "Total number of enriched block events written to sinks.",
	})

	ParseAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ufwatch_parse_anomalies_total",
		Help: "Total number of marker lines dropped because no fields were extracted.",
	})

	SinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ufwatch_sink_errors_total",
		Help: "Total number of sink write failures, labelled by sink name.",
	}, []string{"sink"})

	RegistryNetworks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ufwatch_registry_networks",
		Help: "Number of container networks in the active registry snapshot.",
	})

	RegistryRefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ufwatch_registry_refresh_failures_total",
		Help: "Total number of registry refresh attempts that failed.",
	})
)
