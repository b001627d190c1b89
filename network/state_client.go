package network

import (
	"errors"
	"fmt"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/go-redis/redis/v7"
)

// StateClient wraps the device's local durable store. Reports live in
// a hash keyed by report id; the pending-persistence queue, the agency
// retry queue and the agency history are native store lists.
//
// Queue mutations are per-entry (push one, remove one), never a
// whole-list overwrite. The intake worker and the sync daemon are
// separate processes, and a deferral pushed while a sync pass is
// draining must survive the pass.
type StateClient struct {
	client *redis.Client
}

// IsNotFound reports whether err means the key was absent from the
// store, as opposed to present but unreadable. Callers that evict
// state on a missing record must check this, not just err != nil.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}

func NewStateClient(address, password string, db int) *StateClient {
	return &StateClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *StateClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

// StoredReportSave writes a report record under its current id.
func (c *StateClient) StoredReportSave(report *harvest.StoredReport) error {
	jsonData, err := report.ToJSON()
	if err != nil {
		return err
	}
	_, err = c.client.HSet(constants.KeyReports, report.ID, jsonData).Result()
	return err
}

func (c *StateClient) StoredReportGet(id string) (*harvest.StoredReport, error) {
	data, err := c.client.HGet(constants.KeyReports, id).Result()
	if err != nil {
		return nil, fmt.Errorf("StoredReportGet (%s): %w", id, err)
	}
	return harvest.StoredReportFromJSON(data)
}

func (c *StateClient) StoredReportDelete(id string) error {
	_, err := c.client.HDel(constants.KeyReports, id).Result()
	return err
}

// StoredReportList returns every report record on the device, in no
// particular order.
func (c *StateClient) StoredReportList() ([]*harvest.StoredReport, error) {
	fields, err := c.client.HGetAll(constants.KeyReports).Result()
	if err != nil {
		return nil, err
	}
	reports := make([]*harvest.StoredReport, 0, len(fields))
	for _, data := range fields {
		report, err := harvest.StoredReportFromJSON(data)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// PendingQueueGet returns the ordered list of report ids awaiting
// backend persistence. A missing key is an empty queue.
func (c *StateClient) PendingQueueGet() ([]string, error) {
	ids, err := c.client.LRange(constants.KeyPendingQueue, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("PendingQueueGet: %w", err)
	}
	return ids, nil
}

// PendingQueuePush appends a report id to the pending queue. The push
// is atomic on the store side, so the intake worker can defer a new
// report while a sync pass is mid-drain without either side losing an
// entry.
func (c *StateClient) PendingQueuePush(id string) error {
	_, err := c.client.RPush(constants.KeyPendingQueue, id).Result()
	return err
}

// PendingQueueRemove removes every occurrence of id from the pending
// queue, leaving the rest of the queue in order.
func (c *StateClient) PendingQueueRemove(id string) error {
	_, err := c.client.LRem(constants.KeyPendingQueue, 0, id).Result()
	return err
}

// AgencyQueueGet returns still-pending government submissions.
func (c *StateClient) AgencyQueueGet() ([]*harvest.QueuedSubmission, error) {
	return c.getSubmissionList(constants.KeyAgencyQueue)
}

// AgencyQueuePush appends one submission to the retry queue.
func (c *StateClient) AgencyQueuePush(entry *harvest.QueuedSubmission) error {
	return c.pushSubmission(constants.KeyAgencyQueue, entry)
}

// AgencyQueueRemove deletes an entry from the retry queue by value.
// Pass the entry exactly as it was read, before any mutation, or the
// stored element will not match.
func (c *StateClient) AgencyQueueRemove(entry *harvest.QueuedSubmission) error {
	jsonData, err := entry.ToJSON()
	if err != nil {
		return err
	}
	_, err = c.client.LRem(constants.KeyAgencyQueue, 0, jsonData).Result()
	return err
}

// AgencyQueueReplace swaps a mutated entry in for its stored original.
// The updated entry lands at the tail, so entries retried on the same
// pass keep their relative order.
func (c *StateClient) AgencyQueueReplace(original, updated *harvest.QueuedSubmission) error {
	if err := c.AgencyQueueRemove(original); err != nil {
		return err
	}
	return c.AgencyQueuePush(updated)
}

// AgencyHistoryGet returns terminal submission records: submitted to
// the government, or expired past the retry ceiling.
func (c *StateClient) AgencyHistoryGet() ([]*harvest.QueuedSubmission, error) {
	return c.getSubmissionList(constants.KeyAgencyHistory)
}

// AgencyHistoryAdd appends one terminal submission record.
func (c *StateClient) AgencyHistoryAdd(entry *harvest.QueuedSubmission) error {
	return c.pushSubmission(constants.KeyAgencyHistory, entry)
}

// SyncDiagnosticSave records a best-effort sync diagnostic. Callers
// log and swallow any error from this.
func (c *StateClient) SyncDiagnosticSave(diag *harvest.SyncDiagnostic) error {
	jsonData, err := diag.ToJSON()
	if err != nil {
		return err
	}
	_, err = c.client.HSet(constants.KeySyncDiagnostics, diag.LocalID, jsonData).Result()
	return err
}

func (c *StateClient) getSubmissionList(key string) ([]*harvest.QueuedSubmission, error) {
	items, err := c.client.LRange(key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("getSubmissionList (%s): %w", key, err)
	}
	entries := make([]*harvest.QueuedSubmission, 0, len(items))
	for _, item := range items {
		entry, err := harvest.QueuedSubmissionFromJSON(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *StateClient) pushSubmission(key string, entry *harvest.QueuedSubmission) error {
	jsonData, err := entry.ToJSON()
	if err != nil {
		return err
	}
	_, err = c.client.RPush(key, jsonData).Result()
	return err
}
