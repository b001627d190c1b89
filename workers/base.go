package workers

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/CatchLog/harvest-services/models/common"
	"github.com/nsqio/go-nsq"
)

// ServiceWorker defines the primary interface for service workers.
// Actual workers implement other methods in addition to these.
type ServiceWorker interface {
	RegisterAsNsqConsumer() error
	HandleMessage(*nsq.Message) error
}

// Base contains the fundamental structures common to all workers:
// the shared context, the worker's settings, and its NSQ consumer.
type Base struct {

	// Context contains info about the context in which the worker is
	// operating, including connections to NSQ, Redis, the backend,
	// the agency, and S3.
	Context *common.Context

	// Settings contains the worker's topic, channel and retry
	// settings.
	Settings *Settings

	// NSQConsumer implements HandleMessage to receive messages
	// from NSQ.
	NSQConsumer *nsq.Consumer

	// KillChannel handles SIGTERM and SIGINT.
	KillChannel chan os.Signal

	// ProcessMessage does the worker's actual work. This is not
	// implemented in Base itself. It MUST be set by structs that
	// derive from Base.
	ProcessMessage func(*nsq.Message) error
}

// RegisterAsNsqConsumer registers this worker as an NSQ consumer on
// Settings.NSQTopic and Settings.NSQChannel. Note that as soon as you
// call this, your worker will start handling messages if any are
// available.
func (b *Base) RegisterAsNsqConsumer() error {
	config := nsq.NewConfig()
	config.Set("heartbeat_interval", "10s")
	config.Set("max_in_flight", b.Settings.ChannelBufferSize)
	consumer, err := nsq.NewConsumer(b.Settings.NSQTopic, b.Settings.NSQChannel, config)
	if err != nil {
		return err
	}
	b.NSQConsumer = consumer
	b.NSQConsumer.AddHandler(b)
	b.NSQConsumer.ConnectToNSQLookupd(b.Context.Config.NsqLookupd)
	b.listenForSigTerm()
	b.Context.Logger.Info("Registered as NSQ consumer on topic ", b.Settings.NSQTopic)
	return nil
}

// HandleMessage passes the incoming message to the derived worker's
// ProcessMessage. A returned error tells NSQ to requeue; returning
// nil marks the message finished.
func (b *Base) HandleMessage(message *nsq.Message) error {
	err := b.ProcessMessage(message)
	if err != nil {
		if int(message.Attempts) >= b.Settings.MaxAttempts {
			b.Context.Logger.Errorf(
				"Dropping message after %d attempts on topic %s: %v",
				message.Attempts, b.Settings.NSQTopic, err)
			return nil
		}
		b.Context.Logger.Warningf(
			"Requeueing message on topic %s (attempt %d): %v",
			b.Settings.NSQTopic, message.Attempts, err)
		message.RequeueWithoutBackoff(b.Settings.RequeueTimeout)
		return nil
	}
	return nil
}

// listenForSigTerm disconnects this worker from nsqd on SIGTERM or
// SIGINT, so nsqd requeues whatever we were working on for other
// workers instead of waiting out the message timeout.
func (b *Base) listenForSigTerm() {
	b.KillChannel = make(chan os.Signal, 1)
	signal.Notify(b.KillChannel, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-b.KillChannel
		b.Context.Logger.Warning("Worker received SIGTERM. Starting graceful shutdown.")
		if b.NSQConsumer != nil {
			b.NSQConsumer.ChangeMaxInFlight(0)
			b.NSQConsumer.Stop()
			b.Context.Logger.Warning("Worker disconnected from nsqd due to SIGTERM.")
		}
	}()
}
