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

	worker := workers.NewConfirmationWebhook(opts.ChannelBufferSize)

	// This channel blocks until we get an interrupt,
	// so our program does not exit without Control-C
	// or other kill signal.
	<-worker.NSQConsumer.StopChan
}

func printHelp() {
	message := `
confirmation_webhook delivers report confirmation events to the
configured webhook endpoint. Delivery is bounded and best-effort;
it never touches submission state.`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
