package main

import (
	"fmt"
	"os"

	"github.com/CatchLog/harvest-services/util/cli"
	"github.com/CatchLog/harvest-services/workers"
)

func main() {
	cli.Init()
	opts := cli.ParseOpts()
	if opts.PrintHelp {
		printHelp()
		cli.PrintDefaults()
		os.Exit(0)
	}

	// Panics if another sync daemon holds the pid file.
	worker := workers.NewReportSync(
		opts.ChannelBufferSize,
		opts.MaxAttempts,
	)
	defer worker.RemovePidFile()

	// This channel blocks until we get an interrupt,
	// so our program does not exit without Control-C
	// or other kill signal.
	<-worker.NSQConsumer.StopChan
}

func printHelp() {
	message := `
report_sync is the connectivity-gated sync daemon. It listens for
connectivity events, drains the pending-persistence queue when the
network returns, and retries queued government submissions until they
succeed or expire. Only one instance runs per host.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
