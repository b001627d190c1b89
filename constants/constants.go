package constants

import "time"

const (
	// Government-submission statuses for a StoredReport. These are
	// monotonic: a report moves from pending to submitted or failed
	// and never reverts.
	AgencyStatusPending   = "pending"
	AgencyStatusSubmitted = "submitted"
	AgencyStatusFailed    = "failed"

	// Terminal state for a queued agency submission that has exceeded
	// its retry ceiling. Kept in history, never retried.
	AgencyStatusExpired = "expired"

	// Webhook delivery statuses for confirmation notifications.
	WebhookStatusPending   = "pending"
	WebhookStatusDelivered = "delivered"
	WebhookStatusFailed    = "failed"

	// Where a StoredReport currently lives.
	StorageLocal  = "local"
	StorageRemote = "remote"

	// How the backend write was performed.
	WritePathMember    = "member"
	WritePathAnonymous = "anonymous"
	WritePathDeferred  = "deferred"
	WritePathAdopted   = "adopted"

	// Overall outcome of a submission, as reported to the caller.
	SubmissionSubmitted = "submitted"
	SubmissionDeferred  = "deferred"
	SubmissionRejected  = "rejected"
)

// Error classes. See models/common/errors.go for the classifier.
const (
	ErrClassConnectivity  = "connectivity"
	ErrClassAuthorization = "authorization"
	ErrClassConflict      = "conflict"
	ErrClassExhausted     = "exhausted"
	ErrClassSideEffect    = "side_effect"
	ErrClassUnknown       = "unknown"
)

// Species codes used in aggregate counts and itemized fish entries.
// These match the column names in the agency's reporting schema.
const (
	SpeciesRedDrum       = "red_drum"
	SpeciesFlounder      = "flounder"
	SpeciesSpeckledTrout = "speckled_trout"
	SpeciesStripedBass   = "striped_bass"
)

var Species = []string{
	SpeciesRedDrum,
	SpeciesFlounder,
	SpeciesSpeckledTrout,
	SpeciesStripedBass,
}

// Keys in the local state store. The queues are store-side lists
// mutated one entry at a time, so the intake worker and the sync
// daemon can touch them concurrently.
const (
	KeyReports         = "reports"
	KeyPendingQueue    = "queue:pending_reports"
	KeyAgencyQueue     = "queue:agency_retry"
	KeyAgencyHistory   = "agency:history"
	KeySyncDiagnostics = "sync:diagnostics"
	LocalIDPrefix      = "local-"
)

// Object storage providers for photo uploads.
const (
	StorageProviderAWS   = "AWS"
	StorageProviderLocal = "Local"
)

// NSQ topics.
const (
	TopicSubmissions   = "harvest_submissions"
	TopicConnectivity  = "connectivity_events"
	TopicConfirmations = "report_confirmations"
)

const (
	// ConnectivityMaxAttempts is the number of times a sync pass probes
	// for connectivity before giving up and leaving the pending queue
	// untouched.
	ConnectivityMaxAttempts = 3

	// ConnectivityBackoffBase is the initial delay between connectivity
	// probes. The delay doubles after each failed probe.
	ConnectivityBackoffBase = 2 * time.Second

	// DefaultAgencyMaxRetries is the retry ceiling for queued agency
	// submissions when the config does not specify one.
	DefaultAgencyMaxRetries = 5

	// DefaultWebhookMaxAttempts bounds confirmation webhook delivery.
	DefaultWebhookMaxAttempts = 3
)

// Gear methods accepted on a harvest report.
const (
	GearHookAndLine = "hook_and_line"
	GearGig         = "gig"
	GearOther       = "other"
)
