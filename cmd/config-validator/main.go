package main

import (
	"fmt"
	"os"

	"github.com/chess10kp/tuck/internal/config"
	"github.com/chess10kp/tuck/internal/console"
)

func main() {
	configPath := config.DefaultPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	fmt.Printf("Validating config: %s\n", configPath)

	if err := config.ValidateConfig(configPath); err != nil {
		console.Failure("Config validation failed: %v", err)
		os.Exit(1)
	}

	console.Success("Config is valid!")
}
