package workflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var settlementTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日 15:04:05",
	"2006年1月2日",
	time.RFC3339,
}

// ParseSettlementTime accepts the common export layouts and Excel serial dates.
func ParseSettlementTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range settlementTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterPeriod keeps the settlement rows settled in the requested month, in their original order.
// Rows without a settlement time are dropped.
func FilterPeriod(records []*models.SettlementRecord, period models.Period) ([]*models.SettlementRecord, error) {
	kept := make([]*models.SettlementRecord, 0, len(records))
	for _, rec := range records {
		if rec.SettlementTimeText == "" {
			continue
		}
		t, ok := ParseSettlementTime(rec.SettlementTimeText)
		if !ok {
			return nil, &models.MalformedTimestampError{
				Row:    rec.SourceRow,
				Column: models.ColSettlementTime,
				Value:  rec.SettlementTimeText,
			}
		}
		if t.Year() == period.Year && int(t.Month()) == period.Month {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

// AssembleLedger stamps the period on every line and computes the summary.
func AssembleLedger(period models.Period, lines []*models.ReconciledLine) *models.Ledger {
	for _, l := range lines {
		l.Year = period.Year
		l.Month = period.Month
	}
	return &models.Ledger{
		Period: period,
		Lines:  lines,
		Stats:  ComputeStats(lines),
	}
}

func ComputeStats(lines []*models.ReconciledLine) models.Stats {
	stats := models.Stats{
		TotalLines:                    len(lines),
		TotalCustomerReceivable:       decimal.Zero,
		TotalExtraFee:                 decimal.Zero,
		TotalNetReceivable:            decimal.Zero,
		CustomerReceivableWithFreight: decimal.Zero,
	}
	orders := make(map[string]struct{})
	for _, l := range lines {
		orders[strings.TrimSpace(l.OrderId)] = struct{}{}
		if !l.Matched {
			stats.UnmatchedLines++
		}
		stats.TotalSoldQuantity += l.SoldQuantity
		stats.TotalCustomerReceivable = stats.TotalCustomerReceivable.Add(l.CustomerReceivable)
		stats.TotalExtraFee = stats.TotalExtraFee.Add(l.ExtraFee)
		stats.TotalNetReceivable = stats.TotalNetReceivable.Add(l.NetReceivable)
	}
	stats.DistinctOrders = len(orders)
	stats.CustomerReceivableWithFreight = stats.TotalCustomerReceivable.Add(stats.TotalExtraFee)
	return stats
}
