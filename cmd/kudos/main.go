package main

import (
	"os"

	"github.com/mroshb/kudos/internal/cli"
	"github.com/mroshb/kudos/pkg/logger"
)

func main() {
	err := cli.NewRootCommand().Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
