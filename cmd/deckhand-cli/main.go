package main

import (
	"os"

	"github.com/marofny/deckhand/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
