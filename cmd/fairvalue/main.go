package main

import (
	"os"

	"github.com/wonny/fairvalue/cmd/fairvalue/commands"
)

// main is the entry point for the fairvalue CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fairvalue [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
