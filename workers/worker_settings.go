package workers

import (
	"encoding/json"
	"time"
)

// Settings contains settings for a submission-engine worker.
type Settings struct {
	// ChannelBufferSize is the size of the NSQ in-flight window for
	// this worker.
	ChannelBufferSize int

	// MaxAttempts is the maximum number of times the worker should
	// attempt to process a single message before giving up. This
	// applies only to transient failures; poison messages are dropped
	// on first sight.
	MaxAttempts int

	// NSQChannel is the NSQ channel the worker should subscribe
	// to to receive messages.
	NSQChannel string

	// NSQTopic is the NSQ topic the worker should subscribe
	// to to receive messages.
	NSQTopic string

	// NumberOfWorkers is the number of go routines to spin up
	// to handle the worker's main task. Sync and webhook workers
	// run one, because their work must be serialized.
	NumberOfWorkers int

	// RequeueTimeout describes how long of a timeout to set
	// on the NSQ requeue after a message fails with a transient
	// error.
	RequeueTimeout time.Duration
}

func (settings *Settings) ToJSON() string {
	data, _ := json.Marshal(settings)
	return string(data)
}
