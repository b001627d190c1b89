package harvest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CatchLog/harvest-services/constants"
)

// StoredReport is the backend-persisted form of a harvest report: the
// user's input plus the identifiers and statuses the sync engine
// maintains around it.
type StoredReport struct {
	// ID is "local-<nanos>" until the backend confirms the write,
	// then the backend-assigned identifier. See IsLocalID.
	ID string `json:"id"`

	Report *HarvestReportInput `json:"report"`

	// Government-submission state. AgencyStatus is monotonic:
	// pending -> submitted|failed, never back.
	AgencyStatus             string `json:"agency_status"`
	AgencyConfirmationNumber string `json:"agency_confirmation_number,omitempty"`
	AgencyObjectID           string `json:"agency_object_id,omitempty"`

	// Storage says whether this record is confirmed remote or still
	// local-only (and therefore in the pending-persistence queue).
	Storage string `json:"storage"`

	// PhotoURL is the object-storage URL of the catch photo, set
	// after a successful upload. The local path stays on the Report.
	PhotoURL string `json:"photo_url,omitempty"`

	// Confirmation webhook delivery state.
	WebhookStatus   string `json:"webhook_status,omitempty"`
	WebhookAttempts int    `json:"webhook_attempts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLocalID returns a locally assigned report identifier. The prefix
// marks the record as not yet confirmed by the backend.
func NewLocalID() string {
	return constants.LocalIDPrefix + strconv.FormatInt(time.Now().UnixNano(), 10)
}

// IsLocalID returns true if id was assigned locally rather than by
// the backend.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, constants.LocalIDPrefix)
}

// NewStoredReport wraps a report input in a StoredReport with a fresh
// local id and pending statuses.
func NewStoredReport(input *HarvestReportInput) *StoredReport {
	now := time.Now().UTC()
	return &StoredReport{
		ID:            NewLocalID(),
		Report:        input,
		AgencyStatus:  constants.AgencyStatusPending,
		Storage:       constants.StorageLocal,
		WebhookStatus: constants.WebhookStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SetAgencyStatus applies a government-submission status transition.
// The status is monotonic; any attempt to leave a terminal status is
// an error.
func (r *StoredReport) SetAgencyStatus(status string) error {
	if r.AgencyStatus == status {
		return nil
	}
	if r.AgencyStatus != constants.AgencyStatusPending {
		return fmt.Errorf("report %s: cannot change agency status from %s to %s",
			r.ID, r.AgencyStatus, status)
	}
	r.AgencyStatus = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkAgencySubmitted records a successful government submission.
func (r *StoredReport) MarkAgencySubmitted(confirmationNumber, objectID string) error {
	err := r.SetAgencyStatus(constants.AgencyStatusSubmitted)
	if err != nil {
		return err
	}
	r.AgencyConfirmationNumber = confirmationNumber
	r.AgencyObjectID = objectID
	return nil
}

// AdoptRemoteID replaces this report's local identifier with the
// backend-assigned one and marks the record confirmed remote. Returns
// the old id so callers can clean up records stored under it.
func (r *StoredReport) AdoptRemoteID(remoteID string) string {
	oldID := r.ID
	r.ID = remoteID
	r.Storage = constants.StorageRemote
	r.UpdatedAt = time.Now().UTC()
	return oldID
}

// WithNormalizedEntries returns a copy of this report whose input
// carries itemized fish entries, synthesizing them from aggregate
// counts when absent. Remote payloads always go out itemized; the
// original report and its input are left untouched.
func (r *StoredReport) WithNormalizedEntries() *StoredReport {
	wire := *r
	input := *r.Report
	input.FishEntries = NormalizeEntries(r.Report)
	wire.Report = &input
	return &wire
}

// IsConfirmedRemote returns true once the backend has confirmed this
// record.
func (r *StoredReport) IsConfirmedRemote() bool {
	return r.Storage == constants.StorageRemote
}

func (r *StoredReport) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func StoredReportFromJSON(jsonData string) (*StoredReport, error) {
	r := &StoredReport{}
	err := json.Unmarshal([]byte(jsonData), r)
	if err != nil {
		return nil, err
	}
	return r, nil
}
