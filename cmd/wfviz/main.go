package main

import (
	"fmt"
	"os"

	"github.com/example/wfviz/internal/cli"
	"github.com/example/wfviz/internal/log"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.GetLogger().Debugf("Command failed: %+v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
