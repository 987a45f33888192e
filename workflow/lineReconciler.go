package workflow

import (
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/shopspring/decimal"
)

// QuantityDeadBand: a ratio with smaller magnitude is treated as no unit sold (price-adjustment lines).
var QuantityDeadBand = decimal.RequireFromString("0.15")

// ExtractPrefix returns the product code before the first "-", or the whole code when there is none.
func ExtractPrefix(code string) string {
	if i := strings.Index(code, "-"); i >= 0 {
		return code[:i]
	}
	return code
}

// SoldQuantity rounds a paid-to-unit-price ratio away from zero, except inside the dead band.
func SoldQuantity(ratio decimal.Decimal) int64 {
	if ratio.Abs().LessThan(QuantityDeadBand) {
		return 0
	}
	if ratio.IsPositive() {
		return ratio.Ceil().IntPart()
	}
	return ratio.Floor().IntPart()
}

// DeriveLine computes the per-row columns of one settlement record. It reads index and nothing else.
// Order-group columns (line count, line index, freight share, net) are left for AllocateOrderGroups.
func DeriveLine(rec *models.SettlementRecord, index *OrderIndex) *models.ReconciledLine {
	line := &models.ReconciledLine{
		SettlementRecord: rec,
		ActualAmount:     rec.PaidOrRefunded.Add(rec.MerchantDiscount).Add(rec.PlatformSubsidy),

		CustomerReceivable:              rec.PaidOrRefunded,
		PlatformReceivable:              rec.PlatformSubsidy,
		CommissionDeduction:             rec.Commission.Neg(),
		DistributionCommissionDeduction: rec.DistributionCommission.Neg(),
		OtherDeduction:                  decimal.Zero,
	}

	match, ok := index.Lookup(rec.OrderId, rec.VariantId)
	line.Matched = ok
	if ok {
		line.PlatformProductCode = match.MerchantCode
		line.ProductCode = ExtractPrefix(match.MerchantCode)
	}

	if ok && !match.UnitCount.IsZero() && !match.TotalPrice.IsZero() {
		line.UnitPrice = match.TotalPrice.Div(match.UnitCount)
		line.Ratio = line.ActualAmount.Mul(match.UnitCount).Div(match.TotalPrice)
		line.SoldQuantity = SoldQuantity(line.Ratio)
	}

	line.ComputeNet()
	return line
}

// AllocateOrderGroups fills the columns that depend on the other lines of the same order:
// line count and position, and the order's freight split. Row order is preserved.
//
// The order's freight is the freight on its first line. A refund line (negative quantity) carries
// the full freight; sale lines share it evenly at 2 decimals with the last sale line taking the
// remainder; zero-quantity lines get nothing.
func AllocateOrderGroups(lines []*models.ReconciledLine) {
	type group struct {
		lines   []*models.ReconciledLine
		freight decimal.Decimal
	}

	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, l := range lines {
		key := strings.TrimSpace(l.OrderId)
		g, ok := groups[key]
		if !ok {
			g = &group{freight: l.Freight}
			groups[key] = g
			order = append(order, key)
		}
		g.lines = append(g.lines, l)
	}

	for _, key := range order {
		g := groups[key]

		positive := 0
		for i, l := range g.lines {
			l.OrderLineCount = len(g.lines)
			l.OrderLineIndex = i + 1
			if l.SoldQuantity > 0 {
				positive++
			}
		}

		var share decimal.Decimal
		if positive > 0 {
			share = g.freight.Div(decimal.NewFromInt(int64(positive))).Round(2)
		}

		seen := 0
		for _, l := range g.lines {
			switch {
			case l.SoldQuantity < 0:
				l.ExtraFee = g.freight
			case l.SoldQuantity > 0:
				seen++
				if seen == positive {
					l.ExtraFee = g.freight.Sub(share.Mul(decimal.NewFromInt(int64(positive - 1))))
				} else {
					l.ExtraFee = share
				}
			default:
				l.ExtraFee = decimal.Zero
			}
			l.ComputeNet()
		}
	}
}

// ReconcileLines runs both passes over the settlement records in their original order.
func ReconcileLines(records []*models.SettlementRecord, index *OrderIndex) []*models.ReconciledLine {
	lines := make([]*models.ReconciledLine, 0, len(records))
	for _, rec := range records {
		lines = append(lines, DeriveLine(rec, index))
	}
	AllocateOrderGroups(lines)
	return lines
}
