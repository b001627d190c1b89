package harvest

import (
	"encoding/json"
	"time"

	"github.com/CatchLog/harvest-services/constants"
)

// QueuedSubmission is a harvest report waiting for a successful
// government submission. It is created when a submission attempt fails
// and the report has not yet exceeded the retry ceiling.
//
// The confirmation number and object id are the ones generated at
// first attempt. Retries MUST reuse them; the agency treats a
// regenerated confirmation number as a duplicate filing.
type QueuedSubmission struct {
	Report             *HarvestReportInput `json:"report"`
	ConfirmationNumber string              `json:"confirmation_number"`
	ObjectID           string              `json:"object_id"`
	RetryCount         int                 `json:"retry_count"`
	QueuedAt           time.Time           `json:"queued_at"`

	// ReportID links back to the StoredReport so a late success or
	// expiry can update its government-submission status.
	ReportID string `json:"report_id,omitempty"`

	// Status is AgencyStatusPending while the submission is still
	// eligible for retry, AgencyStatusSubmitted or AgencyStatusExpired
	// once it reaches a terminal state and moves to history.
	Status string `json:"status"`

	// ResolvedAt is set when the submission reaches a terminal state.
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

// NewQueuedSubmission queues a report with its first-attempt
// identifiers and a zero retry count.
func NewQueuedSubmission(reportID string, report *HarvestReportInput, confirmationNumber, objectID string) *QueuedSubmission {
	return &QueuedSubmission{
		Report:             report,
		ConfirmationNumber: confirmationNumber,
		ObjectID:           objectID,
		RetryCount:         0,
		QueuedAt:           time.Now().UTC(),
		ReportID:           reportID,
		Status:             constants.AgencyStatusPending,
	}
}

// Expire moves this submission to its terminal expired state. The
// transition is one-way.
func (q *QueuedSubmission) Expire() {
	q.Status = constants.AgencyStatusExpired
	q.ResolvedAt = time.Now().UTC()
}

// MarkSubmitted moves this submission to its terminal submitted state.
func (q *QueuedSubmission) MarkSubmitted() {
	q.Status = constants.AgencyStatusSubmitted
	q.ResolvedAt = time.Now().UTC()
}

// IsPending returns true while the submission is still eligible for
// retry.
func (q *QueuedSubmission) IsPending() bool {
	return q.Status == constants.AgencyStatusPending
}

func (q *QueuedSubmission) ToJSON() (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func QueuedSubmissionFromJSON(jsonData string) (*QueuedSubmission, error) {
	q := &QueuedSubmission{}
	err := json.Unmarshal([]byte(jsonData), q)
	if err != nil {
		return nil, err
	}
	return q, nil
}
