package main

import (
	"os"

	"github.com/mrsingh-rishi/vidscribe/cmd/vidscribe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
