package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/config"
	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/Wawaweaa/fitax-steamlit-mvp/utils"
	"github.com/Wawaweaa/fitax-steamlit-mvp/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	accessPasswordHeader = "X-Access-Password"

	headerLedgerLines              = "X-Ledger-Lines"
	headerLedgerOrders             = "X-Ledger-Orders"
	headerLedgerSoldQuantity       = "X-Ledger-Sold-Quantity"
	headerLedgerNetReceivable      = "X-Ledger-Net-Receivable"
	headerLedgerCustomerReceivable = "X-Ledger-Customer-Receivable"
	headerLedgerUnmatched          = "X-Ledger-Unmatched-Lines"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	previewLineLimit = 20
)

// accessGate requires the shared access password when a bcrypt hash is configured.
func accessGate(passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if passwordHash == "" {
			c.Next()
			return
		}
		password := c.GetHeader(accessPasswordHeader)
		if password == "" || utils.ComparePassword(passwordHash, password) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrorUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

func platformsHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"platforms": cfg.Platforms.Platforms()})
	}
}

type reconcileRequest struct {
	Platform string
	Period   models.Period
}

func parseReconcileRequest(c *gin.Context) (*reconcileRequest, map[string]string) {
	req := &reconcileRequest{Platform: strings.TrimSpace(c.PostForm("platform"))}
	if req.Platform == "" {
		req.Platform = config.PlatformXiaohongshu
	}

	problems := map[string]string{}
	year, err := strconv.Atoi(strings.TrimSpace(c.PostForm("year")))
	if err != nil {
		problems["Year"] = "number"
	}
	month, err := strconv.Atoi(strings.TrimSpace(c.PostForm("month")))
	if err != nil {
		problems["Month"] = "number"
	}
	if len(problems) > 0 {
		return nil, problems
	}

	req.Period = models.Period{Year: year, Month: month}
	if err := utils.ValidateStruct(req.Period); err != nil {
		return nil, utils.ProcessValidationErrors(err)
	}
	return req, nil
}

// runReconcile reads the request and runs the workflow. It writes the error response itself
// and returns nil when the request cannot be served.
func runReconcile(c *gin.Context, cfg *config.Config) *workflow.PlatformResult {
	ctx, span := tracer.Start(c.Request.Context(), "http.reconcile")
	defer span.End()

	req, problems := parseReconcileRequest(c)
	if problems != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parameters", "fields": problems})
		return nil
	}
	span.SetAttributes(
		attribute.String("platform", req.Platform),
		attribute.String("period", req.Period.String()),
	)

	// Unknown or unavailable platforms are refused before reading any upload.
	if _, err := workflow.ResolvePlatform(req.Platform, &cfg.Platforms); err != nil {
		writeReconcileError(c, req.Platform, nil, err)
		return nil
	}

	files, err := readUploadedFiles(c, cfg.App.MaxUploadMB<<20)
	if err != nil {
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		logUploadError(config.GetLogger(), err, cid)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil
	}

	result, err := workflow.ProcessPlatformData(ctx, req.Platform, files, req.Period, workflow.PlatformOptions{
		Classifier: workflow.ClassifierOptions{RequireAllMarkers: cfg.Classifier.Strict},
		Enabled:    &cfg.Platforms,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeReconcileError(c, req.Platform, result, err)
		return nil
	}

	reconcileRunsTotal.WithLabelValues(result.Platform.Key, "ok").Inc()
	reconcileLinesTotal.WithLabelValues(result.Platform.Key).Add(float64(result.Ledger.Stats.TotalLines))
	reconcileUnmatchedLinesTotal.WithLabelValues(result.Platform.Key).Add(float64(result.Ledger.Stats.UnmatchedLines))
	return result
}

func writeReconcileError(c *gin.Context, platform string, result *workflow.PlatformResult, err error) {
	var (
		unsupported    *models.UnsupportedPlatformError
		notImplemented *models.NotImplementedError
	)
	body := gin.H{"error": err.Error()}
	if result != nil && result.Classification != nil {
		body["classified"] = result.Classification.Names()
		body["diagnostics"] = result.Classification.Diagnostics
	}

	switch {
	case errors.As(err, &unsupported):
		reconcileRunsTotal.WithLabelValues("unknown", "unsupported").Inc()
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &notImplemented):
		reconcileRunsTotal.WithLabelValues(config.NormalizePlatform(platform), "not_implemented").Inc()
		body["status"] = "not yet available"
		c.JSON(http.StatusNotImplemented, body)
	case models.IsUserError(err):
		reconcileRunsTotal.WithLabelValues(config.NormalizePlatform(platform), "rejected").Inc()
		c.JSON(http.StatusBadRequest, body)
	default:
		reconcileRunsTotal.WithLabelValues(config.NormalizePlatform(platform), "error").Inc()
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
	}
}

func setLedgerHeaders(c *gin.Context, stats models.Stats) {
	c.Header(headerLedgerLines, strconv.Itoa(stats.TotalLines))
	c.Header(headerLedgerOrders, strconv.Itoa(stats.DistinctOrders))
	c.Header(headerLedgerSoldQuantity, strconv.FormatInt(stats.TotalSoldQuantity, 10))
	c.Header(headerLedgerNetReceivable, stats.TotalNetReceivable.StringFixed(2))
	c.Header(headerLedgerCustomerReceivable, stats.CustomerReceivableWithFreight.StringFixed(2))
	c.Header(headerLedgerUnmatched, strconv.Itoa(stats.UnmatchedLines))
}

// contentDisposition carries an ASCII fallback plus the UTF-8 name for the Chinese file name.
func contentDisposition(fileName string) string {
	return fmt.Sprintf(`attachment; filename="ledger.xlsx"; filename*=UTF-8''%s`, url.PathEscape(fileName))
}

func reconcileHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := runReconcile(c, cfg)
		if result == nil {
			return
		}
		setLedgerHeaders(c, result.Ledger.Stats)
		c.Header("Content-Disposition", contentDisposition(result.FileName))
		c.Data(http.StatusOK, xlsxContentType, result.Workbook)
	}
}

type previewLine struct {
	OrderId                         string          `json:"orderId"`
	VariantId                       string          `json:"variantId"`
	ProductName                     string          `json:"productName"`
	OrderLineCount                  int             `json:"orderLineCount"`
	OrderLineIndex                  int             `json:"orderLineIndex"`
	PlatformProductCode             string          `json:"platformProductCode"`
	ProductCode                     string          `json:"productCode"`
	SoldQuantity                    int64           `json:"soldQuantity"`
	CustomerReceivable              decimal.Decimal `json:"customerReceivable"`
	PlatformReceivable              decimal.Decimal `json:"platformReceivable"`
	ExtraFee                        decimal.Decimal `json:"extraFee"`
	CommissionDeduction             decimal.Decimal `json:"commissionDeduction"`
	DistributionCommissionDeduction decimal.Decimal `json:"distributionCommissionDeduction"`
	OtherDeduction                  decimal.Decimal `json:"otherDeduction"`
	NetReceivable                   decimal.Decimal `json:"netReceivable"`
	Matched                         bool            `json:"matched"`
}

func toPreviewLines(lines []*models.ReconciledLine, limit int) []previewLine {
	if len(lines) > limit {
		lines = lines[:limit]
	}
	out := make([]previewLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, previewLine{
			OrderId:                         l.OrderId,
			VariantId:                       l.VariantId,
			ProductName:                     l.ProductName,
			OrderLineCount:                  l.OrderLineCount,
			OrderLineIndex:                  l.OrderLineIndex,
			PlatformProductCode:             l.PlatformProductCode,
			ProductCode:                     l.ProductCode,
			SoldQuantity:                    l.SoldQuantity,
			CustomerReceivable:              l.CustomerReceivable,
			PlatformReceivable:              l.PlatformReceivable,
			ExtraFee:                        l.ExtraFee,
			CommissionDeduction:             l.CommissionDeduction,
			DistributionCommissionDeduction: l.DistributionCommissionDeduction,
			OtherDeduction:                  l.OtherDeduction,
			NetReceivable:                   l.NetReceivable,
			Matched:                         l.Matched,
		})
	}
	return out
}

func previewHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := runReconcile(c, cfg)
		if result == nil {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"platform":    result.Platform,
			"period":      result.Ledger.Period,
			"fileName":    result.FileName,
			"stats":       result.Ledger.Stats,
			"classified":  result.Classification.Names(),
			"diagnostics": result.Classification.Diagnostics,
			"preview":     toPreviewLines(result.Ledger.Lines, previewLineLimit),
		})
	}
}
