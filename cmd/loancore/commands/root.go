package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "loancore",
	Short: "LoanCore - 대출 매입 파이프라인",
	Long: `LoanCore Unified CLI

주간 대출 매입 파이프라인: 입력 적재부터 rule 검증,
리포트 출력, run 영속화까지.

Usage:
  go run ./cmd/loancore [command]

Examples:
  go run ./cmd/loancore run
  go run ./cmd/loancore run --purchase-date 2026-09-01
  go run ./cmd/loancore api
  go run ./cmd/loancore scheduler
  go run ./cmd/loancore status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
