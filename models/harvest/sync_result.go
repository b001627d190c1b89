package harvest

import (
	"encoding/json"
	"time"
)

// SyncPassResult summarizes one pass over the pending-persistence
// queue. A pass that never got connectivity returns the zero value.
type SyncPassResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// SyncDiagnostic is a best-effort record of one successful report
// sync. Failure to write a diagnostic never fails the sync itself.
type SyncDiagnostic struct {
	LocalID  string    `json:"local_id"`
	RemoteID string    `json:"remote_id"`
	Path     string    `json:"path"`
	SyncedAt time.Time `json:"synced_at"`
}

func (d *SyncDiagnostic) ToJSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SubmissionResult is the single combined outcome the orchestrator
// returns: what happened with the government submission, the stable
// confirmation number, and whether the backend copy is confirmed
// remote or only local.
//
// Status distinguishes "deferred for later retry" from "rejected,
// will not retry automatically" so callers can show the right
// affordance.
type SubmissionResult struct {
	Status             string `json:"status"`
	ConfirmationNumber string `json:"confirmation_number"`
	ReportID           string `json:"report_id"`
	AgencyStatus       string `json:"agency_status"`
	RemoteConfirmed    bool   `json:"remote_confirmed"`
	Detail             string `json:"detail,omitempty"`
}
