package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/report"
	reportPostgres "github.com/nkaumov/kurs-zakat/internal/report/postgres"
	"github.com/nkaumov/kurs-zakat/internal/storage"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	archiveMonth int
	archiveYear  int
	archiveKind  string
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Write a monthly report to the configured report storage",
	Long: `Generate the hours or completed requests report for one month and store it
next to the reports archived when schedules are closed.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.LoggerWrapper()

		store, err := storage.New(cfg.Storage)
		if err != nil {
			log.Fatalf("failed to open report storage: %v", err)
		}
		if store == nil {
			log.Fatal("report storage is disabled, set storage.provider")
		}

		db, err := database.Open(cfg.Database, lg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		sqlxDB, err := database.NewSQLX(db, cfg.Database.Driver)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		reports := report.NewService(reportPostgres.NewReportRepository(sqlxDB), lg)
		archive := report.NewArchive(store, reports, cfg.Storage.Prefix, lg)

		ctx := context.Background()
		var rep *report.Report
		switch archiveKind {
		case report.KindHours:
			rep, err = reports.HoursReport(ctx, archiveMonth, archiveYear)
		case report.KindRequests:
			rep, err = reports.RequestsReport(ctx, archiveMonth, archiveYear)
		default:
			log.Fatalf("unknown report kind %q", archiveKind)
		}
		if err != nil {
			log.Fatalf("failed to build report: %v", err)
		}
		if err := archive.Store(rep); err != nil {
			log.Fatalf("failed to store report: %v", err)
		}
		fmt.Printf("Stored %s\n", rep.Filename)
	},
}

func init() {
	now := time.Now()
	archiveCmd.Flags().IntVarP(&archiveMonth, "month", "m", int(now.Month()), "report month (1-12)")
	archiveCmd.Flags().IntVarP(&archiveYear, "year", "y", now.Year(), "report year")
	archiveCmd.Flags().StringVarP(&archiveKind, "kind", "k", report.KindHours, "report kind: hours or requests")
}
