package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerscan/internal/runner"
)

func main() {
	options := runner.ParseOptions()
	peerRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup close handler
	go func() {
		<-c
		gologger.Info().Msgf("Ctrl+C pressed in Terminal, Exiting...")
		cancel()
	}()

	err = peerRunner.Run(ctx)
	peerRunner.Close()
	if err != nil {
		gologger.Fatal().Msgf("Could not run peerscan: %s\n", err)
	}
}
