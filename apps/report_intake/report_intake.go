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

	// If anything goes wrong, this panics.
	// Otherwise, it starts handling NSQ messages immediately.
	worker := workers.NewReportIntake(
		opts.ChannelBufferSize,
		opts.NumWorkers,
		opts.MaxAttempts,
	)

	// This channel blocks until we get an interrupt,
	// so our program does not exit without Control-C
	// or other kill signal.
	<-worker.NSQConsumer.StopChan
}

func printHelp() {
	message := `
report_intake accepts harvest report submissions and runs each through
the full submission flow: government agency filing, backend
persistence, and the durable local record with its confirmation
number.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
