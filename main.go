package main

import (
	"context"
	"fmt"
	"os"

	logger "github.com/Easy-Infra-Ltd/easy-logger"

	"github.com/Easy-Infra-Ltd/policyrisk/src/cli"
)

func main() {
	log := logger.CreateLoggerFromEnv(nil, "blue").With("process", "policyrisk")

	if err := cli.NewRootCmd(log).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "policyrisk: %v\n", err)
		os.Exit(1)
	}
}
