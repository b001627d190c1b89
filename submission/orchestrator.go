package submission

import (
	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/network"
)

// Orchestrator runs one harvest report through the full submission
// flow: government submission first, then backend persistence, then a
// single combined result. The two sides are independent: an agency
// failure queues the submission for retry but never blocks the local
// save, and a backend deferral never blocks the agency attempt.
type Orchestrator struct {
	Context *common.Context
	Agency  network.AgencySubmitter
	Router  *PersistenceRouter
	Queue   *AgencyQueue
}

// NewOrchestrator wires the submission flow. With AgencySimulator set
// in config, agency submissions succeed locally without touching the
// real reporting endpoint.
func NewOrchestrator(context *common.Context) *Orchestrator {
	var agency network.AgencySubmitter = context.AgencyClient
	if context.Config.AgencySimulator {
		context.Logger.Warningf("Using agency simulator; no reports will reach the agency")
		agency = network.NewAgencySimulator(context.Logger)
	}
	return &Orchestrator{
		Context: context,
		Agency:  agency,
		Router:  NewPersistenceRouter(context, NewIdempotencyGuard(context)),
		Queue:   NewAgencyQueue(context, agency),
	}
}

// Submit files input with the government agency and persists it to the
// backend. The confirmation number and agency object id are generated
// exactly once here; every later retry, queue entry and stored record
// reuses them, so the number the user sees never changes.
func (o *Orchestrator) Submit(input *harvest.HarvestReportInput) (*harvest.SubmissionResult, error) {
	payload := harvest.NewAgencyPayload(input)
	report := harvest.NewStoredReport(input)
	report.AgencyConfirmationNumber = payload.ConfirmationNumber
	report.AgencyObjectID = payload.ObjectID

	resp := o.Agency.SubmitReport(payload)
	agencySubmitted := resp.Error == nil
	if agencySubmitted {
		if err := report.MarkAgencySubmitted(payload.ConfirmationNumber, resp.ObjectID); err != nil {
			return nil, err
		}
	} else {
		o.Context.Logger.Warningf(
			"Agency submission %s failed; queueing for retry: %v",
			payload.ConfirmationNumber, resp.Error)
	}
	if err := o.Context.StateClient.StoredReportSave(report); err != nil {
		return nil, err
	}

	persistResult, persistErr := o.Router.Persist(report)

	// The retry queue entry carries the report's post-persistence id,
	// so a late agency success can find and update the right record.
	if !agencySubmitted {
		if err := o.Queue.Enqueue(report.ID, input, payload.ConfirmationNumber, payload.ObjectID); err != nil {
			o.Context.Logger.Errorf(
				"Could not queue agency submission %s for retry: %v",
				payload.ConfirmationNumber, err)
		}
	}
	if agencySubmitted {
		PublishConfirmation(o.Context, report.ID, payload.ConfirmationNumber, resp.ObjectID)
	}

	result := &harvest.SubmissionResult{
		ConfirmationNumber: payload.ConfirmationNumber,
		ReportID:           report.ID,
		AgencyStatus:       report.AgencyStatus,
		RemoteConfirmed:    report.IsConfirmedRemote(),
	}
	if persistErr != nil {
		// Rejected writes are kept locally for user display, but they
		// do not join the pending queue and will not retry on sync.
		if err := o.Context.StateClient.StoredReportSave(report); err != nil {
			o.Context.Logger.Errorf("Could not save rejected report %s: %v", report.ID, err)
		}
		result.Status = constants.SubmissionRejected
		result.Detail = persistErr.Error()
		return result, nil
	}
	if !agencySubmitted || persistResult.Deferred {
		result.Status = constants.SubmissionDeferred
	} else {
		result.Status = constants.SubmissionSubmitted
	}
	return result, nil
}
