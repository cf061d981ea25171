package main

import (
	"os"

	"github.com/wonny/loancore/cmd/loancore/commands"
)

// main is the entry point for the LoanCore CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/loancore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
