// Package metrics defines and registers all custom Prometheus metrics for the
// vidtube API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry at package init through
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidtube"

// ── Session metrics ───────────────────────────────────────────────────────────

// TokensIssuedTotal counts token pairs handed out.
// Label:
//   - reason: "login" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access/refresh token pairs issued.",
	},
	[]string{"reason"},
)

// TokenRejectionsTotal counts presented tokens that were refused.
// Label:
//   - reason: "missing", "invalid" or "reused"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of rejected access or refresh tokens, by reason.",
	},
	[]string{"reason"},
)

// LoginFailuresTotal counts failed password checks and unknown identifiers.
var LoginFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Total number of login attempts rejected for bad credentials.",
	},
)

// ThrottledRequestsTotal counts requests refused by a rate limiter.
// Label:
//   - limiter: "login" or "global"
var ThrottledRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "throttled_requests_total",
		Help:      "Total number of requests rejected by rate limiting.",
	},
	[]string{"limiter"},
)

// ── Ownership metrics ─────────────────────────────────────────────────────────

// OwnershipDenialsTotal counts mutations refused because the requester is not
// the owner.
// Label:
//   - resource: "video", "comment", "playlist" or "tweet"
var OwnershipDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ownership_denials_total",
		Help:      "Total number of mutations rejected by the ownership check.",
	},
	[]string{"resource"},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// MediaUploadsTotal counts uploads to the media store.
// Labels:
//   - folder: "avatars", "covers", "thumbnails" or "videos"
//   - result: "ok" or "error"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of media uploads, by folder and result.",
	},
	[]string{"folder", "result"},
)

// MediaCleanupQueueDepth tracks pending asset deletions per janitor worker.
var MediaCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "media_cleanup_queue_depth",
		Help:      "Current number of asset deletions pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

// MediaCleanupDuration measures how long a single asset deletion takes.
// Label:
//   - result: "ok" or "error"
var MediaCleanupDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_cleanup_duration_seconds",
		Help:      "Duration of a single asset deletion against the media store.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
