package submission

import (
	"encoding/json"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/network"
	"github.com/google/uuid"
)

// AgencyQueue is the durable government-submission side of the local
// queue: reports whose submission to the agency failed and which are
// retried until they succeed or hit the retry ceiling. Terminal
// entries (submitted or expired) move to a history list for user
// display and are never retried again.
type AgencyQueue struct {
	Context    *common.Context
	Agency     network.AgencySubmitter
	MaxRetries int
}

func NewAgencyQueue(context *common.Context, agency network.AgencySubmitter) *AgencyQueue {
	return &AgencyQueue{
		Context:    context,
		Agency:     agency,
		MaxRetries: context.Config.AgencyMaxRetries,
	}
}

// Enqueue adds a failed submission to the retry queue, keeping the
// confirmation number and object id generated at first attempt. The
// agency treats a regenerated confirmation number as a duplicate
// filing, so retries must reuse these exact identifiers. The push is
// atomic on the store side; the intake worker can enqueue while the
// sync daemon is mid-retry-pass.
func (q *AgencyQueue) Enqueue(reportID string, input *harvest.HarvestReportInput, confirmationNumber, objectID string) error {
	return q.Context.StateClient.AgencyQueuePush(
		harvest.NewQueuedSubmission(reportID, input, confirmationNumber, objectID))
}

// RetryAll re-attempts every still-pending queued submission in
// insertion order. One entry's failure never blocks the next.
// Returns how many entries were submitted and how many expired on
// this pass. Queue updates are per-entry (remove, replace, append),
// so entries pushed by the intake worker mid-pass survive untouched.
func (q *AgencyQueue) RetryAll() (submitted, expired int, err error) {
	queue, err := q.Context.StateClient.AgencyQueueGet()
	if err != nil {
		return 0, 0, err
	}
	if len(queue) == 0 {
		return 0, 0, nil
	}

	for _, entry := range queue {
		// Snapshot before mutating: queue removal matches the stored
		// value byte for byte.
		original := *entry
		payload := harvest.NewAgencyPayloadWithIdentifiers(
			entry.Report, entry.ConfirmationNumber, entry.ObjectID)
		resp := q.Agency.SubmitReport(payload)
		if resp.Error == nil {
			entry.MarkSubmitted()
			q.resolve(&original, entry)
			submitted++
			q.recordAgencySuccess(entry, resp.ObjectID)
			continue
		}

		q.Context.Logger.Warningf(
			"Queued agency submission %s failed on retry %d: %v",
			entry.ConfirmationNumber, entry.RetryCount+1, resp.Error)
		entry.RetryCount++
		if entry.RetryCount >= q.MaxRetries {
			entry.Expire()
			q.resolve(&original, entry)
			expired++
			q.recordAgencyExpiry(entry)
		} else if err := q.Context.StateClient.AgencyQueueReplace(&original, entry); err != nil {
			q.Context.Logger.Errorf(
				"Could not update retry count for %s: %v", entry.ConfirmationNumber, err)
		}
	}
	return submitted, expired, nil
}

// resolve moves an entry from the retry queue to the terminal history
// list. Bookkeeping failures are logged; the submission outcome
// stands either way.
func (q *AgencyQueue) resolve(original, entry *harvest.QueuedSubmission) {
	if err := q.Context.StateClient.AgencyQueueRemove(original); err != nil {
		q.Context.Logger.Errorf(
			"Could not remove %s from agency queue: %v", entry.ConfirmationNumber, err)
	}
	if err := q.Context.StateClient.AgencyHistoryAdd(entry); err != nil {
		q.Context.Logger.Errorf(
			"Could not record %s in agency history: %v", entry.ConfirmationNumber, err)
	}
}

// Queue returns still-pending entries.
func (q *AgencyQueue) Queue() ([]*harvest.QueuedSubmission, error) {
	return q.Context.StateClient.AgencyQueueGet()
}

// History returns terminal entries: submitted to the agency, or
// expired past the retry ceiling. These stay visible to the user.
func (q *AgencyQueue) History() ([]*harvest.QueuedSubmission, error) {
	return q.Context.StateClient.AgencyHistoryGet()
}

// recordAgencySuccess updates the linked StoredReport and fires the
// confirmation notification. Both are best-effort: the queue entry is
// already resolved, and neither failure may un-resolve it.
func (q *AgencyQueue) recordAgencySuccess(entry *harvest.QueuedSubmission, agencyObjectID string) {
	if entry.ReportID != "" {
		report, err := q.Context.StateClient.StoredReportGet(entry.ReportID)
		if err == nil {
			if err = report.MarkAgencySubmitted(entry.ConfirmationNumber, agencyObjectID); err == nil {
				if err = q.Context.StateClient.StoredReportSave(report); err != nil {
					q.Context.Logger.Errorf("Could not save report %s after late agency success: %v",
						entry.ReportID, err)
				}
			}
		}
	}
	PublishConfirmation(q.Context, entry.ReportID, entry.ConfirmationNumber, agencyObjectID)
}

func (q *AgencyQueue) recordAgencyExpiry(entry *harvest.QueuedSubmission) {
	q.Context.Logger.Errorf(
		"Agency submission %s expired after %d attempts; report %s will not be retried",
		entry.ConfirmationNumber, entry.RetryCount, entry.ReportID)
	if entry.ReportID == "" {
		return
	}
	report, err := q.Context.StateClient.StoredReportGet(entry.ReportID)
	if err != nil {
		return
	}
	if err = report.SetAgencyStatus(constants.AgencyStatusFailed); err == nil {
		if err = q.Context.StateClient.StoredReportSave(report); err != nil {
			q.Context.Logger.Errorf("Could not save report %s after expiry: %v", entry.ReportID, err)
		}
	}
}

// ConfirmationEvent is the message published to the confirmations
// topic after a successful agency submission. The webhook worker
// delivers it; delivery failures never touch submission state.
type ConfirmationEvent struct {
	EventID            string `json:"event_id"`
	ReportID           string `json:"report_id"`
	ConfirmationNumber string `json:"confirmation_number"`
	AgencyObjectID     string `json:"agency_object_id"`
}

// PublishConfirmation fires the confirmation notification as a
// detached task: observed in the logs, never awaited.
func PublishConfirmation(context *common.Context, reportID, confirmationNumber, agencyObjectID string) *DetachedTask {
	event := ConfirmationEvent{
		EventID:            uuid.New().String(),
		ReportID:           reportID,
		ConfirmationNumber: confirmationNumber,
		AgencyObjectID:     agencyObjectID,
	}
	return Detach("confirmation notification", context.Logger, func() error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return context.NSQClient.Enqueue(constants.TopicConfirmations, string(data))
	})
}
