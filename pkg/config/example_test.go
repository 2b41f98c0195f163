package config_test

import (
	"fmt"

	"github.com/wonny/fairvalue/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Provider: %s\n", cfg.IEX.BaseURL)
	fmt.Printf("Assumptions: %s\n", cfg.AssumptionsFile)
}
