// Package metrics defines and registers all custom Prometheus metrics for the
// IAM service. It is the single source of truth for metric names, labels, and
// help strings; everything is registered with the default registry at import
// time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "iam"

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "disabled", "throttled", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// SignupsTotal counts self-registration attempts by outcome.
// Label:
//   - result: "created" or "rejected"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// AccessDecisionsTotal counts authorization gate decisions per module.
// Labels:
//   - module: the access module gating the route (e.g. "ROLE_CREATE")
//   - decision: "allow" or "deny"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of authorization gate decisions, by module and decision.",
	},
	[]string{"module", "decision"},
)

// BulkUsersUpdatedTotal counts users touched by bulk update operations.
// Label:
//   - mode: "same" (one patch for all) or "per_user" (row-level patches)
var BulkUsersUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_users_updated_total",
		Help:      "Total number of users targeted by bulk updates, by mode.",
	},
	[]string{"mode"},
)
