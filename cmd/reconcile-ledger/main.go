// reconcile-ledger builds a settlement ledger workbook from exports on disk.
//
// Usage:
//
//	go run ./cmd/reconcile-ledger -platform xiaohongshu -year 2024 -month 3 -out ledger.xlsx settlement.xlsx orders.xlsx
//
// Files may be given in any order; they are classified by their header row.
// Exit status is 1 on error and 2 when the platform is not available yet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/config"
	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/Wawaweaa/fitax-steamlit-mvp/workflow"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("reconcile-ledger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	platform := fs.String("platform", config.PlatformXiaohongshu, "Platform key or display name")
	year := fs.Int("year", 0, "Required: settlement year (e.g. 2024)")
	month := fs.Int("month", 0, "Required: settlement month (1-12)")
	out := fs.String("out", "", "Optional: output path (default <platform>_<year>年<month>月结算账单.xlsx)")
	strict := fs.Bool("strict", false, "Require every column marker when classifying files")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.Load()
	config.SetLogLevel(cfg.App.LogLevel)

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "at least one input file is required")
		return 1
	}
	period := models.Period{Year: *year, Month: *month}
	if err := period.Validate(); err != nil {
		fmt.Fprintf(stderr, "--year and --month are required: %v\n", err)
		return 1
	}

	files := make([]models.RawFile, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "failed to read %s: %v\n", path, err)
			return 1
		}
		files = append(files, models.RawFile{Name: filepath.Base(path), Data: data})
	}

	result, err := workflow.ProcessPlatformData(context.Background(), *platform, files, period, workflow.PlatformOptions{
		Classifier: workflow.ClassifierOptions{RequireAllMarkers: *strict || cfg.Classifier.Strict},
	})
	if result != nil && result.Classification != nil {
		for _, d := range result.Classification.Diagnostics {
			fmt.Fprintf(stderr, "skipped %s: %s (settlement %d, orders %d)\n", d.File, d.Reason, d.SettlementScore, d.OrdersScore)
		}
	}
	if err != nil {
		var notImplemented *models.NotImplementedError
		if errors.As(err, &notImplemented) {
			fmt.Fprintln(stderr, err.Error())
			return 2
		}
		fmt.Fprintf(stderr, "reconciliation failed: %v\n", err)
		return 1
	}

	path := strings.TrimSpace(*out)
	if path == "" {
		path = result.FileName
	}
	if err := os.WriteFile(path, result.Workbook, 0o644); err != nil {
		fmt.Fprintf(stderr, "failed to write %s: %v\n", path, err)
		return 1
	}

	stats := result.Ledger.Stats
	fmt.Fprintf(stdout, "settlement file:        %s\n", result.Classification.Settlement.File.Name)
	fmt.Fprintf(stdout, "orders file:            %s\n", result.Classification.Orders.File.Name)
	fmt.Fprintf(stdout, "lines:                  %d\n", stats.TotalLines)
	fmt.Fprintf(stdout, "orders:                 %d\n", stats.DistinctOrders)
	fmt.Fprintf(stdout, "unmatched lines:        %d\n", stats.UnmatchedLines)
	fmt.Fprintf(stdout, "sold quantity:          %d\n", stats.TotalSoldQuantity)
	fmt.Fprintf(stdout, "customer receivable:    %s\n", stats.CustomerReceivableWithFreight.StringFixed(2))
	fmt.Fprintf(stdout, "net receivable:         %s\n", stats.TotalNetReceivable.StringFixed(2))
	fmt.Fprintf(stdout, "written:                %s\n", path)
	return 0
}
