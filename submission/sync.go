package submission

import (
	"time"

	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/network"
)

// SyncManager drains the pending-persistence queue when connectivity
// returns. Passes are serialized: a Sync call that arrives while
// another pass is in flight is coalesced into a no-op rather than run
// in parallel, so two passes never race on the queue.
type SyncManager struct {
	Context  *common.Context
	Router   *PersistenceRouter
	Uploader *PhotoUploader

	// inFlight is the single-slot marker that serializes passes.
	inFlight chan struct{}

	// sleep is swapped out in tests so backoff runs without timers.
	sleep func(time.Duration)

	state SyncState
}

func NewSyncManager(context *common.Context, router *PersistenceRouter) *SyncManager {
	return &SyncManager{
		Context:  context,
		Router:   router,
		Uploader: NewPhotoUploader(context),
		inFlight: make(chan struct{}, 1),
		sleep:    time.Sleep,
		state:    SyncIdle,
	}
}

// State returns the current position of the sync state machine.
func (m *SyncManager) State() SyncState {
	return m.state
}

// Sync runs one connectivity-gated pass over the pending queue. If
// connectivity never shows up within the probe ceiling, the queue is
// left untouched and the zero result comes back; entries stay
// eligible for the next pass (typically triggered by a connectivity-
// regained signal).
func (m *SyncManager) Sync() *harvest.SyncPassResult {
	select {
	case m.inFlight <- struct{}{}:
	default:
		m.Context.Logger.Infof("Sync already in progress; coalescing this invocation")
		return &harvest.SyncPassResult{}
	}
	defer func() {
		m.state = SyncIdle
		<-m.inFlight
	}()

	if !m.waitForConnectivity() {
		m.Context.Logger.Infof("No connectivity after %d probes; sync pass skipped",
			m.Context.Config.ConnectivityMaxAttempts)
		return &harvest.SyncPassResult{}
	}
	m.state = SyncDraining
	return m.drain()
}

// waitForConnectivity probes up to the configured ceiling, backing
// off exponentially between probes.
func (m *SyncManager) waitForConnectivity() bool {
	m.state = SyncProbing
	maxAttempts := m.Context.Config.ConnectivityMaxAttempts
	base := m.Context.Config.ConnectivityBackoffBase
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if m.Context.Probe.IsReachable() {
			return true
		}
		if attempt < maxAttempts {
			delay := NextBackoff(attempt, base)
			m.Context.Logger.Infof("Connectivity probe %d failed; retrying in %s", attempt, delay)
			m.sleep(delay)
		}
	}
	return false
}

// drain processes pending queue entries in insertion order. One
// entry's failure never blocks or reorders the rest. Each resolved
// entry is removed from the queue individually, so ids the intake
// worker defers while this pass is running are never clobbered.
func (m *SyncManager) drain() *harvest.SyncPassResult {
	result := &harvest.SyncPassResult{}
	ids, err := m.Context.StateClient.PendingQueueGet()
	if err != nil {
		m.Context.Logger.Errorf("Could not read pending queue: %v", err)
		return result
	}
	if len(ids) == 0 {
		return result
	}
	m.Context.Logger.Infof("Sync pass starting with %d pending report(s)", len(ids))

	for _, id := range ids {
		report, err := m.Context.StateClient.StoredReportGet(id)
		if err != nil {
			if network.IsNotFound(err) {
				// Orphaned queue entry: its backing record was removed.
				// Drop it rather than failing the whole pass.
				m.Context.Logger.Warningf("Dropping orphaned queue entry %s", id)
				m.removeFromQueue(id)
			} else {
				// The record exists but would not load. Keep the entry
				// queued; evicting it here would strand the report.
				m.Context.Logger.Warningf("Could not load queued report %s: %v", id, err)
				result.Failed++
			}
			continue
		}
		if m.syncReport(report) {
			result.Synced++
			m.removeFromQueue(id)
		} else {
			result.Failed++
		}
	}

	m.Context.Logger.Infof("Sync pass complete: %d synced, %d failed", result.Synced, result.Failed)
	return result
}

func (m *SyncManager) removeFromQueue(id string) {
	if err := m.Context.StateClient.PendingQueueRemove(id); err != nil {
		m.Context.Logger.Errorf("Could not remove %s from pending queue: %v", id, err)
	}
}

// syncReport pushes one deferred report through the same write path
// the router uses online. Returns true if the report is now confirmed
// remote.
func (m *SyncManager) syncReport(report *harvest.StoredReport) bool {
	localID := report.ID

	if report.Report.PhotoPath != "" && report.PhotoURL == "" {
		url, err := m.Uploader.Upload(report)
		if err != nil {
			// Media failures never block the report itself.
			m.Context.Logger.Warningf(
				"Photo upload for report %s failed; syncing with null photo reference: %v",
				localID, err)
		} else {
			report.PhotoURL = url
		}
	}

	persistResult, _, err := m.Router.persistRemote(report)
	if err != nil {
		m.Context.Logger.Warningf("Sync of report %s failed: %v", localID, err)
		return false
	}

	m.writeDiagnostic(localID, report, persistResult.Path)
	return true
}

// writeDiagnostic records a best-effort sync diagnostic. Failure to
// write it never fails the sync.
func (m *SyncManager) writeDiagnostic(localID string, report *harvest.StoredReport, path string) {
	diag := &harvest.SyncDiagnostic{
		LocalID:  localID,
		RemoteID: report.ID,
		Path:     path,
		SyncedAt: time.Now().UTC(),
	}
	if err := m.Context.StateClient.SyncDiagnosticSave(diag); err != nil {
		m.Context.Logger.Warningf("Could not write sync diagnostic for %s: %v", localID, err)
	}
}
