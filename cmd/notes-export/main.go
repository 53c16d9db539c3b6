package main

import (
	"os"

	"github.com/rcliao/notes-export/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
