package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/loancore/pkg/config"
	"github.com/wonny/loancore/pkg/database"
	"github.com/wonny/loancore/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "최근 run 상태 조회",
	Long: `최근 파이프라인 run들의 상태를 표시합니다.

표시 정보:
- run id, 상태, 매입일
- 마지막 phase
- loan/예외 건수

Example:
  go run ./cmd/loancore status
  go run ./cmd/loancore status --limit 5`,
	RunE: runStatus,
}

var statusLimit int

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "표시할 run 수")
}

func runStatus(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Build service and query
	service, err := buildService(cfg, db, log)
	if err != nil {
		return err
	}

	runs, err := service.List(context.Background(), statusLimit)
	if err != nil {
		return err
	}

	fmt.Println("=== LoanCore Run Status ===")
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-32s %-10s %-12s %-18s %8s %8s\n",
		"RUN ID", "STATUS", "PURCHASE", "LAST PHASE", "LOANS", "EXCS")
	for _, run := range runs {
		fmt.Printf("%-32s %-10s %-12s %-18s %8d %8d\n",
			run.RunID,
			run.Status,
			run.PurchaseDate.Format("2006-01-02"),
			run.LastPhase,
			run.TotalLoans,
			run.ExceptionCount,
		)
	}
	return nil
}
