package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/Wawaweaa/fitax-steamlit-mvp/config"
	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/Wawaweaa/fitax-steamlit-mvp/models/reports"
	"github.com/Wawaweaa/fitax-steamlit-mvp/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fitax-settlement/workflow")

type ReconcileResult struct {
	Workbook []byte
	Ledger   *models.Ledger
}

type PlatformOptions struct {
	Classifier ClassifierOptions
	// Enabled restricts which platforms may run; nil allows every implemented platform.
	Enabled *config.PlatformConfig
}

type PlatformResult struct {
	Platform       config.PlatformInfo
	Classification *Classification
	Ledger         *models.Ledger
	Workbook       []byte
	FileName       string
}

// LedgerFileName is the download name of a ledger workbook, e.g. "小红书_2024年3月结算账单.xlsx".
func LedgerFileName(platform config.PlatformInfo, period models.Period) string {
	return fmt.Sprintf("%s_%d年%d月结算账单.xlsx", platform.DisplayName, period.Year, period.Month)
}

// BuildLedger runs the settlement rules without rendering: parse both tables, keep the requested
// month, join to orders and derive every line.
func BuildLedger(settlement, orders *models.Table, period models.Period) (*models.Ledger, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	settlementRecords, err := models.ParseSettlementTable(settlement)
	if err != nil {
		return nil, err
	}
	orderRecords, err := models.ParseOrderTable(orders)
	if err != nil {
		return nil, err
	}

	inPeriod, err := FilterPeriod(settlementRecords, period)
	if err != nil {
		return nil, err
	}

	index := BuildOrderIndex(orderRecords)
	lines := ReconcileLines(inPeriod, index)

	ledger := AssembleLedger(period, lines)
	ledger.Platform = config.PlatformXiaohongshu
	ledger.SourceFiles = []string{settlement.Name, orders.Name}
	return ledger, nil
}

// Reconcile builds the ledger for one month and renders it as a workbook.
// Nothing is returned on error.
func Reconcile(settlement, orders *models.Table, period models.Period) (*ReconcileResult, error) {
	start := time.Now()
	logger := config.GetLogger()

	ledger, err := BuildLedger(settlement, orders, period)
	if err != nil {
		return nil, err
	}

	workbook, err := reports.ExportLedger(ledger)
	if err != nil {
		config.LogError(logger, "mainWorkflow.go", "Reconcile", "ExportLedger", period, err)
		return nil, fmt.Errorf("failed to render ledger workbook: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"field":           "Reconcile",
		"period":          period.String(),
		"settlement_rows": settlement.Len(),
		"order_rows":      orders.Len(),
		"lines":           ledger.Stats.TotalLines,
		"orders":          ledger.Stats.DistinctOrders,
		"unmatched_lines": ledger.Stats.UnmatchedLines,
		"net_receivable":  ledger.Stats.TotalNetReceivable.StringFixed(2),
		"elapsed_ms":      time.Since(start).Milliseconds(),
	}).Info("settlement ledger reconciled")

	return &ReconcileResult{Workbook: workbook, Ledger: ledger}, nil
}

// ResolvePlatform maps a requested platform to one the engine can run.
// Known platforms without rules, or disabled by configuration, return NotImplementedError.
func ResolvePlatform(platform string, enabled *config.PlatformConfig) (config.PlatformInfo, error) {
	info, ok := config.LookupPlatform(platform)
	if !ok {
		return config.PlatformInfo{}, &models.UnsupportedPlatformError{Platform: platform}
	}
	if info.Key != config.PlatformXiaohongshu {
		return info, &models.NotImplementedError{Platform: info.DisplayName}
	}
	if enabled != nil && !enabled.IsEnabled(info.Key) {
		return info, &models.NotImplementedError{Platform: info.DisplayName}
	}
	info.Enabled = true
	return info, nil
}

// ClassifyAndLoad classifies the uploads and parses the chosen settlement and orders files.
func ClassifyAndLoad(ctx context.Context, files []models.RawFile, opts ClassifierOptions) (*Classification, *models.Table, *models.Table, error) {
	_, span := tracer.Start(ctx, "workflow.ClassifyFiles")
	defer span.End()

	classification, err := ClassifyFiles(files, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := config.GetLogger()
	for _, d := range classification.Diagnostics {
		logger.WithFields(logrus.Fields{
			"field":            "ClassifyFiles",
			"correlation_id":   correlationId(ctx),
			"platform":         platformKey(ctx),
			"file":             d.File,
			"settlement_score": d.SettlementScore,
			"orders_score":     d.OrdersScore,
		}).Warn("file not used: " + d.Reason)
	}
	if err := classification.Require(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return classification, nil, nil, err
	}

	settlement, err := models.ReadTable(classification.Settlement.File)
	if err != nil {
		return classification, nil, nil, err
	}
	orders, err := models.ReadTable(classification.Orders.File)
	if err != nil {
		return classification, nil, nil, err
	}
	span.SetAttributes(
		attribute.String("settlement.file", settlement.Name),
		attribute.String("orders.file", orders.Name),
	)
	return classification, settlement, orders, nil
}

// ProcessPlatformData is the single entry point for a reconciliation request: platform dispatch,
// classification, reconciliation and rendering.
func ProcessPlatformData(ctx context.Context, platform string, files []models.RawFile, period models.Period, opts PlatformOptions) (*PlatformResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.ProcessPlatformData")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", platform),
		attribute.String("period", period.String()),
		attribute.Int("files", len(files)),
	)

	info, err := ResolvePlatform(platform, opts.Enabled)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ctx = utils.SetPlatformInContext(ctx, info.Key)
	if err := period.Validate(); err != nil {
		return nil, err
	}

	classification, settlement, orders, err := ClassifyAndLoad(ctx, files, opts.Classifier)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &PlatformResult{Platform: info, Classification: classification}, err
	}

	_, reconcileSpan := tracer.Start(ctx, "workflow.Reconcile")
	result, err := Reconcile(settlement, orders, period)
	reconcileSpan.End()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		config.GetLogger().WithFields(logrus.Fields{
			"field":          "ProcessPlatformData",
			"correlation_id": correlationId(ctx),
			"platform":       platformKey(ctx),
			"period":         period.String(),
		}).Warn("reconciliation rejected: " + err.Error())
		return &PlatformResult{Platform: info, Classification: classification}, err
	}
	result.Ledger.Platform = info.Key

	return &PlatformResult{
		Platform:       info,
		Classification: classification,
		Ledger:         result.Ledger,
		Workbook:       result.Workbook,
		FileName:       LedgerFileName(info, period),
	}, nil
}

func correlationId(ctx context.Context) string {
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	return cid
}

func platformKey(ctx context.Context) string {
	p, _ := utils.GetPlatformFromContext(ctx)
	return p
}
