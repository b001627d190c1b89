package workers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/submission"
	"github.com/nsqio/go-nsq"
)

// ConfirmationWebhook delivers confirmation events to the configured
// webhook endpoint. Delivery is bounded and best-effort: the report's
// webhook status records the outcome, and a delivery that exhausts its
// attempts never touches submission state.
type ConfirmationWebhook struct {
	*Base
	httpClient *http.Client
}

// NewConfirmationWebhook creates a new ConfirmationWebhook worker.
func NewConfirmationWebhook(bufSize int) *ConfirmationWebhook {
	context := common.NewContext()
	settings := &Settings{
		ChannelBufferSize: bufSize,
		MaxAttempts:       context.Config.WebhookMaxAttempts,
		NSQChannel:        constants.TopicConfirmations + "_worker_chan",
		NSQTopic:          constants.TopicConfirmations,
		NumberOfWorkers:   1,
		RequeueTimeout:    (30 * time.Second),
	}
	worker := &ConfirmationWebhook{
		Base: &Base{
			Context:  context,
			Settings: settings,
		},
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	worker.Base.ProcessMessage = worker.processMessage

	err := worker.RegisterAsNsqConsumer()
	if err != nil {
		panic(fmt.Sprintf("Cannot register NSQ consumer: %v", err))
	}
	return worker
}

func (w *ConfirmationWebhook) processMessage(message *nsq.Message) error {
	event := &submission.ConfirmationEvent{}
	if err := json.Unmarshal(message.Body, event); err != nil {
		w.Context.Logger.Errorf("Dropping unparseable confirmation event: %v", err)
		return nil
	}
	if w.Context.Config.WebhookURL == "" {
		w.Context.Logger.Infof(
			"No webhook endpoint configured; skipping confirmation %s",
			event.ConfirmationNumber)
		return nil
	}

	err := w.deliver(event)
	lastAttempt := int(message.Attempts) >= w.Settings.MaxAttempts
	w.recordAttempt(event, err, lastAttempt)
	if err != nil {
		w.Context.Logger.Warningf(
			"Webhook delivery for confirmation %s failed (attempt %d): %v",
			event.ConfirmationNumber, message.Attempts, err)
		return err
	}
	w.Context.Logger.Infof("Delivered confirmation %s to webhook", event.ConfirmationNumber)
	return nil
}

func (w *ConfirmationWebhook) deliver(event *submission.ConfirmationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, w.Context.Config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// recordAttempt updates the report's webhook delivery state. Failures
// here are logged only; delivery bookkeeping never fails a message.
func (w *ConfirmationWebhook) recordAttempt(event *submission.ConfirmationEvent, deliveryErr error, lastAttempt bool) {
	if event.ReportID == "" {
		return
	}
	report, err := w.Context.StateClient.StoredReportGet(event.ReportID)
	if err != nil {
		w.Context.Logger.Warningf(
			"No stored report %s for confirmation %s", event.ReportID, event.ConfirmationNumber)
		return
	}
	report.WebhookAttempts++
	if deliveryErr == nil {
		report.WebhookStatus = constants.WebhookStatusDelivered
	} else if lastAttempt {
		report.WebhookStatus = constants.WebhookStatusFailed
	}
	if err = w.Context.StateClient.StoredReportSave(report); err != nil {
		w.Context.Logger.Errorf("Could not save webhook state for report %s: %v", event.ReportID, err)
	}
}
