// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics defines the engine's Prometheus metrics, registered at
// package init via promauto so any importer gets them exposed on
// /metrics (internal/engine wires promhttp.Handler()).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Command Engine.
	CommandExecuteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlengine_command_execute_total",
			Help: "Total command executions by command type and outcome.",
		},
		[]string{"type", "result"},
	)

	CommandExecuteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tlengine_command_execute_duration_seconds",
			Help:    "Command execute pipeline latency by command type.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	CommandUndoTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlengine_command_undo_total",
			Help: "Total undo operations by outcome.",
		},
		[]string{"result"},
	)

	CommandRedoTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlengine_command_redo_total",
			Help: "Total redo operations by outcome.",
		},
		[]string{"result"},
	)

	SnapshotWriteTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tlengine_snapshot_write_total",
			Help: "Total snapshots written to the Timeline Store.",
		},
	)

	// Audio Engine (spec §4.5, C.7: the higher-level playback controller's
	// starvation/burst signal).
	AudioBurstTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tlengine_audio_burst_total",
			Help: "Total play_burst (jog/scrub) invocations.",
		},
	)

	AudioPumpStarvationTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tlengine_audio_pump_starvation_total",
			Help: "Total times the cooperative pump found the stretch engine starved and pulled fresh PCM.",
		},
	)

	// Timeline Store.
	StoreTxDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tlengine_store_tx_duration_seconds",
			Help:    "Timeline Store transaction duration by outcome.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
)

// Result label values, kept as constants so callers never typo a label.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
