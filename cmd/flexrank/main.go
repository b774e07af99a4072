package main

import (
	"os"

	"github.com/elementsenergies/flexrank/cmd/flexrank/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
