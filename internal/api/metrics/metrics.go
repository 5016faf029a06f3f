// Package metrics defines the custom Prometheus metrics of the healthlog
// service. Request level metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "healthlog"

// EntriesRecordedTotal counts entries appended to the record store.
// Label:
//   - metric: bmi, water, sleep or calories
var EntriesRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_recorded_total",
		Help:      "Total number of health entries stored, by metric.",
	},
	[]string{"metric"},
)

// SubmissionsRejectedTotal counts submissions that did not produce an entry.
// Labels:
//   - metric: bmi, water, sleep or calories
//   - reason: "invalid_number", "out_of_range" or "duplicate"
var SubmissionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_rejected_total",
		Help:      "Total number of metric submissions that were not stored.",
	},
	[]string{"metric", "reason"},
)

// AuthAttemptsTotal counts register, login and logout outcomes.
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of account operations, by action and result.",
	},
	[]string{"action", "result"},
)

// BMICategoryTotal counts stored BMI entries by category.
var BMICategoryTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bmi_category_total",
		Help:      "Total number of stored BMI entries, by category.",
	},
	[]string{"category"},
)

const (
	ReasonInvalidNumber = "invalid_number"
	ReasonOutOfRange    = "out_of_range"
	ReasonDuplicate     = "duplicate"
)
