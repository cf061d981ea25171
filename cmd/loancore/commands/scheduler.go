package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/loancore/internal/scheduler"
	"github.com/wonny/loancore/internal/scheduler/jobs"
	"github.com/wonny/loancore/pkg/config"
	"github.com/wonny/loancore/pkg/database"
	"github.com/wonny/loancore/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 시작",
	Long: `주간 매입 run 스케줄러를 시작합니다.

이 명령어는:
- cron 기반 주간 매입 run 트리거 (default: 월요일 06:00)
- 실패 시 재시도

Example:
  go run ./cmd/loancore scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== LoanCore Scheduler ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled (set ENABLE_SCHEDULER=true)")
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

	// 5. Register jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewPurchaseRunJob(service, cfg, log)); err != nil {
		return err
	}

	// 6. Start
	sched.Start()
	fmt.Printf("\n✅ Scheduler running (spec: %s)\n", cfg.Scheduler.RunSpec)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
