package workers

import (
	"fmt"
	"time"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/submission"
	"github.com/nsqio/go-nsq"
)

// ReportIntake consumes harvest report submissions from the intake
// topic and runs each through the submission orchestrator: agency
// filing, backend persistence, local record. Reports that cannot
// reach their remote destinations are deferred by the orchestrator,
// not requeued here, so a message is retried only when local
// bookkeeping itself fails.
type ReportIntake struct {
	*Base
	Orchestrator *submission.Orchestrator
}

// NewReportIntake creates a new ReportIntake worker.
func NewReportIntake(bufSize, numWorkers, maxAttempts int) *ReportIntake {
	context := common.NewContext()
	settings := &Settings{
		ChannelBufferSize: bufSize,
		MaxAttempts:       maxAttempts,
		NSQChannel:        constants.TopicSubmissions + "_worker_chan",
		NSQTopic:          constants.TopicSubmissions,
		NumberOfWorkers:   numWorkers,
		RequeueTimeout:    (1 * time.Minute),
	}
	worker := &ReportIntake{
		Base: &Base{
			Context:  context,
			Settings: settings,
		},
		Orchestrator: submission.NewOrchestrator(context),
	}
	worker.Base.ProcessMessage = worker.processMessage

	err := worker.RegisterAsNsqConsumer()
	if err != nil {
		panic(fmt.Sprintf("Cannot register NSQ consumer: %v", err))
	}
	return worker
}

func (w *ReportIntake) processMessage(message *nsq.Message) error {
	input, err := harvest.HarvestReportInputFromJSON(string(message.Body))
	if err != nil {
		// Poison message. Requeueing won't make it parse.
		w.Context.Logger.Errorf("Dropping unparseable submission message: %v", err)
		return nil
	}
	result, err := w.Orchestrator.Submit(input)
	if err != nil {
		return err
	}
	w.Context.Logger.Infof(
		"Report %s: status %s, confirmation number %s, agency status %s",
		result.ReportID, result.Status, result.ConfirmationNumber, result.AgencyStatus)
	return nil
}
