package main

import (
	"os"

	"github.com/chess10kp/tuck/internal/console"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		console.Failure("%v", err)
		os.Exit(1)
	}
}
