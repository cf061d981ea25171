package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/loancore/internal/pipeline"
	"github.com/wonny/loancore/pkg/config"
	"github.com/wonny/loancore/pkg/database"
	"github.com/wonny/loancore/pkg/logger"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "매입 파이프라인 실행",
	Long: `매입 파이프라인을 한 번 실행합니다.

이 명령어는:
- 기준 데이터/일별 입력 적재
- rule module 검증 (purchase price, underwriting, CoMAP, eligibility)
- 예외/적격성 리포트 출력
- run 결과 영속화 + 아카이브

Example:
  go run ./cmd/loancore run
  go run ./cmd/loancore run --purchase-date 2026-09-01 --target-yield 8.05`,
	RunE: runPipeline,
}

var (
	runPurchaseDate string
	runTargetYield  float64
	runTenantID     int64
	runInputPath    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runPurchaseDate, "purchase-date", "", "매입일 YYYY-MM-DD (default: 다음 화요일)")
	runCmd.Flags().Float64Var(&runTargetYield, "target-yield", 0, "목표 수익률 (default: 8.05)")
	runCmd.Flags().Int64Var(&runTenantID, "tenant", 0, "tenant scope (0 = none)")
	runCmd.Flags().StringVar(&runInputPath, "input-path", "", "입력 폴더 override (default: files_required)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== LoanCore Purchase Run ===")

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

	// 4. Build service
	service, err := buildService(cfg, db, log)
	if err != nil {
		return err
	}

	// 5. Resolve parameters
	params := pipeline.RunParams{
		TenantID:    runTenantID,
		TargetYield: runTargetYield,
		InputPath:   runInputPath,
	}
	if params.TargetYield == 0 {
		params.TargetYield = cfg.Pipeline.TargetYield
	}
	if runPurchaseDate != "" {
		date, err := time.Parse("2006-01-02", runPurchaseDate)
		if err != nil {
			return fmt.Errorf("invalid --purchase-date (expected YYYY-MM-DD): %w", err)
		}
		params.PurchaseDate = date
	}

	// 6. Execute
	outcome, err := service.StartRun(context.Background(), params)
	if err != nil {
		return err
	}

	run := outcome.Run
	fmt.Printf("\n✅ Run %s %s\n\n", run.RunID, run.Status)
	fmt.Printf("%-20s %s (%s)\n", "Purchase date:", run.PurchaseDate.Format("2006-01-02"), run.WeekdayName)
	fmt.Printf("%-20s %d\n", "Total loans:", run.TotalLoans)
	fmt.Printf("%-20s %.2f\n", "Total balance:", run.TotalBalance)
	fmt.Printf("%-20s %d\n", "Exceptions:", run.ExceptionCount)
	fmt.Printf("%-20s %d passed / %d failed\n", "Eligibility Prime:",
		outcome.EligibilityPrime.Passed(), outcome.EligibilityPrime.Failed())
	fmt.Printf("%-20s %d passed / %d failed\n", "Eligibility SFY:",
		outcome.EligibilitySFY.Passed(), outcome.EligibilitySFY.Failed())

	if len(outcome.Reports) > 0 {
		fmt.Println("\nReports:")
		for _, report := range outcome.Reports {
			fmt.Printf("  %s\n", report)
		}
	}
	return nil
}
