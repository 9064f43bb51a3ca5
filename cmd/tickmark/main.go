package main

import (
	"os"

	"github.com/tickmark-dev/tickmark/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
