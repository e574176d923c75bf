package main

import (
	"os"

	"github.com/digiguide/digiguide/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
