package workers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/submission"
	"github.com/CatchLog/harvest-services/util"
	"github.com/nsqio/go-nsq"
)

// ReportSync consumes connectivity events and runs one sync pass per
// event: drain the pending-persistence queue, then retry queued agency
// submissions. The SyncManager coalesces overlapping passes, and the
// pid file guarantees only one sync daemon per host. The intake
// worker still runs concurrently; queue mutations are per-entry store
// operations so the two never clobber each other.
type ReportSync struct {
	*Base
	Sync  *submission.SyncManager
	Queue *submission.AgencyQueue
}

// NewReportSync creates a new ReportSync worker. It refuses to start
// if another sync daemon already holds the pid file.
func NewReportSync(bufSize, maxAttempts int) *ReportSync {
	context := common.NewContext()
	pidFile := filepath.Join(context.Config.PidFileDir, "report_sync.pid")
	if util.IsRunningInOtherProcess(pidFile) {
		panic(fmt.Sprintf("Another sync daemon is running; pid file %s", pidFile))
	}
	if err := util.WritePidFile(pidFile); err != nil {
		panic(fmt.Sprintf("Cannot write pid file %s: %v", pidFile, err))
	}

	orchestrator := submission.NewOrchestrator(context)
	settings := &Settings{
		ChannelBufferSize: bufSize,
		MaxAttempts:       maxAttempts,
		NSQChannel:        constants.TopicConnectivity + "_worker_chan",
		NSQTopic:          constants.TopicConnectivity,
		NumberOfWorkers:   1,
		RequeueTimeout:    (1 * time.Minute),
	}
	worker := &ReportSync{
		Base: &Base{
			Context:  context,
			Settings: settings,
		},
		Sync:  submission.NewSyncManager(context, orchestrator.Router),
		Queue: orchestrator.Queue,
	}
	worker.Base.ProcessMessage = worker.processMessage

	err := worker.RegisterAsNsqConsumer()
	if err != nil {
		panic(fmt.Sprintf("Cannot register NSQ consumer: %v", err))
	}

	// Anything deferred while the daemon was down is still waiting.
	go worker.runPass()
	return worker
}

// processMessage runs one pass per connectivity event. The event body
// is informational only; the pass re-probes for itself.
func (w *ReportSync) processMessage(message *nsq.Message) error {
	w.Context.Logger.Infof("Connectivity event: %s", string(message.Body))
	w.runPass()
	return nil
}

func (w *ReportSync) runPass() {
	result := w.Sync.Sync()
	if result.Synced > 0 || result.Failed > 0 {
		w.Context.Logger.Infof("Sync pass: %d synced, %d failed", result.Synced, result.Failed)
	}
	submitted, expired, err := w.Queue.RetryAll()
	if err != nil {
		w.Context.Logger.Errorf("Agency retry pass failed: %v", err)
		return
	}
	if submitted > 0 || expired > 0 {
		w.Context.Logger.Infof("Agency retry pass: %d submitted, %d expired", submitted, expired)
	}
}

// RemovePidFile releases this daemon's single-instance lock. Called
// on shutdown.
func (w *ReportSync) RemovePidFile() {
	pidFile := filepath.Join(w.Context.Config.PidFileDir, "report_sync.pid")
	if util.ReadPidFile(pidFile) == os.Getpid() {
		if err := util.DeletePidFile(pidFile); err != nil {
			w.Context.Logger.Errorf("Could not remove pid file %s: %v", pidFile, err)
		}
	}
}
