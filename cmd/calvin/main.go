package main

import (
	"os"

	"github.com/calvin-dev/calvin/cmd/calvin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
