package submission

import (
	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/network"
	"github.com/CatchLog/harvest-services/util"
)

// PersistResult describes how a report was persisted: which write
// path ran, the id the report now carries, and whether the write was
// deferred to a later sync pass.
type PersistResult struct {
	ReportID        string
	Path            string
	Deferred        bool
	AdoptedExisting bool
}

// PersistenceRouter saves one StoredReport to the backend, choosing
// the write path by present identity:
//
// 1. A rewards member with a live session gets the member-scoped
// write procedure.
// 2. An authorization-class failure there (or no live session) falls
// through to the device-scoped anonymous procedure.
// 3. A non-authorization failure on the member path surfaces
// directly; retrying anonymously would not fix a data conflict.
// 4. No connectivity, or both remote paths unreachable, defers the
// report locally: it keeps its local id, joins the pending-
// persistence queue, and the caller gets success-with-deferred.
//
// The IdempotencyGuard runs before either remote path; on a match the
// router skips straight to adopting the existing identifier.
type PersistenceRouter struct {
	Context *common.Context
	Guard   *IdempotencyGuard
	Session network.SessionValidator
}

func NewPersistenceRouter(context *common.Context, guard *IdempotencyGuard) *PersistenceRouter {
	return &PersistenceRouter{
		Context: context,
		Guard:   guard,
		Session: context.SessionClient,
	}
}

// Persist runs the full routing contract for one report. Exactly one
// of {remote write, local deferral} occurs per call; a surfaced error
// means the write was rejected and will not be retried automatically.
func (r *PersistenceRouter) Persist(report *harvest.StoredReport) (*PersistResult, error) {
	if !r.Context.Probe.IsReachable() {
		r.Context.Logger.Infof("No connectivity; deferring report %s", report.ID)
		return r.deferLocal(report)
	}
	result, deferrable, err := r.persistRemote(report)
	if err != nil {
		if deferrable {
			r.Context.Logger.Infof("Remote write for report %s failed (%v); deferring", report.ID, err)
			return r.deferLocal(report)
		}
		return nil, err
	}
	return result, nil
}

// persistRemote attempts the guard plus the member/anonymous write
// paths, assuming connectivity has already been confirmed. The
// deferrable flag tells the caller whether a failure should fall back
// to local deferral (connectivity-class trouble) or surface
// (conflicts, and any non-authorization member-path failure).
//
// The SyncManager drains the pending queue through this same method,
// so a deferred report takes the identical write path when it is
// finally synced.
func (r *PersistenceRouter) persistRemote(report *harvest.StoredReport) (*PersistResult, bool, error) {
	if remoteID, found := r.Guard.FindExisting(report); found {
		r.adoptRemote(report, remoteID)
		return &PersistResult{
			ReportID:        report.ID,
			Path:            constants.WritePathAdopted,
			AdoptedExisting: true,
		}, false, nil
	}

	wire := report.WithNormalizedEntries()

	if report.Report.IsMember() && r.sessionIsLive(report.Report.MemberID) {
		resp := r.Context.BackendClient.SaveAuthenticated(wire)
		if resp.Error == nil {
			r.adoptRemote(report, resp.ReportID)
			return &PersistResult{ReportID: report.ID, Path: constants.WritePathMember}, false, nil
		}
		if resp.Unreachable() {
			return nil, true, common.NewConnectivityError("member write path unreachable", resp.Error)
		}
		subErr := common.ClassifyRemoteFailure(resp.ErrorCode, resp.ErrorMessage, resp.Error)
		if !common.IsAuthorization(subErr) {
			// Conflicts and validation failures surface directly.
			// The anonymous path would hit the same wall.
			return nil, false, subErr
		}
		r.Context.Logger.Infof(
			"Member write for report %s rejected as unauthorized (%s); trying anonymous path",
			report.ID, subErr.Code)
	}

	resp := r.Context.BackendClient.SaveAnonymous(wire)
	if resp.Error == nil {
		r.adoptRemote(report, resp.ReportID)
		return &PersistResult{ReportID: report.ID, Path: constants.WritePathAnonymous}, false, nil
	}
	if resp.Unreachable() {
		return nil, true, common.NewConnectivityError("anonymous write path unreachable", resp.Error)
	}
	subErr := common.ClassifyRemoteFailure(resp.ErrorCode, resp.ErrorMessage, resp.Error)
	if common.IsConflict(subErr) {
		return nil, false, subErr
	}
	// Anything else on the anonymous path is retried on a later sync
	// pass; the guard makes that retry safe.
	return nil, true, subErr
}

func (r *PersistenceRouter) sessionIsLive(memberID string) bool {
	status, err := r.Session.IsSessionValid(memberID)
	if err != nil {
		r.Context.Logger.Warningf(
			"Session check for member %s failed (%v); using anonymous path", memberID, err)
		return false
	}
	if !status.Valid {
		r.Context.Logger.Infof(
			"Session for member %s is not valid (%s); using anonymous path",
			memberID, status.Reason)
	}
	return status.Valid
}

// adoptRemote swaps the report onto its backend-assigned id and
// updates local storage. Local bookkeeping failures are logged, never
// returned: the remote write already happened and must not look like
// it didn't.
func (r *PersistenceRouter) adoptRemote(report *harvest.StoredReport, remoteID string) {
	oldID := report.AdoptRemoteID(remoteID)
	if err := r.Context.StateClient.StoredReportSave(report); err != nil {
		r.Context.Logger.Errorf("Could not save report %s after remote write: %v", report.ID, err)
	}
	if oldID != report.ID {
		if err := r.Context.StateClient.StoredReportDelete(oldID); err != nil {
			r.Context.Logger.Errorf("Could not remove stale local record %s: %v", oldID, err)
		}
	}
}

// deferLocal keeps the report on its local id and adds it to the
// pending-persistence queue. The push is a single atomic append, safe
// against a sync pass draining the queue in another process. A report
// already queued is not queued twice; only this router defers a given
// report, so the contains check cannot race with another push of the
// same id.
func (r *PersistenceRouter) deferLocal(report *harvest.StoredReport) (*PersistResult, error) {
	if err := r.Context.StateClient.StoredReportSave(report); err != nil {
		return nil, err
	}
	ids, err := r.Context.StateClient.PendingQueueGet()
	if err != nil {
		return nil, err
	}
	if !util.StringListContains(ids, report.ID) {
		if err = r.Context.StateClient.PendingQueuePush(report.ID); err != nil {
			return nil, err
		}
	}
	return &PersistResult{
		ReportID: report.ID,
		Path:     constants.WritePathDeferred,
		Deferred: true,
	}, nil
}
