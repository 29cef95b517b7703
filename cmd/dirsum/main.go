package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/temirov/dirsum/internal/cli"
	"github.com/temirov/dirsum/internal/utils"
)

const (
	logLevelEnvironmentVariable             = "DIRSUM_LOG_LEVEL"
	loggerInitializationFailedMessageFormat = "failed to initialize logger: %v\n"
)

// main is the entry point for the dirsum command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(os.Getenv(logLevelEnvironmentVariable))
	if loggerInitializationError != nil {
		fmt.Fprintf(os.Stderr, loggerInitializationFailedMessageFormat, loggerInitializationError)
		os.Exit(1)
	}
	defer loggerInstance.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if applicationExecutionError := cli.Execute(ctx, loggerInstance); applicationExecutionError != nil {
		stop()
		loggerInstance.Fatal(fmt.Sprintf(utils.ErrorLogFormat, applicationExecutionError))
	}
}
