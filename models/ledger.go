package models

import (
	"fmt"

	"github.com/Wawaweaa/fitax-steamlit-mvp/utils"
	"github.com/shopspring/decimal"
)

type Period struct {
	Year  int `json:"year" validate:"gte=2000,lte=2100"`
	Month int `json:"month" validate:"gte=1,lte=12"`
}

func (p Period) Validate() error {
	if err := utils.ValidateStruct(p); err != nil {
		return fmt.Errorf("invalid period %d-%02d: %w", p.Year, p.Month, err)
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// OrderMatch is what the order export contributes to a settlement line.
type OrderMatch struct {
	MerchantCode string
	TotalPrice   decimal.Decimal
	UnitCount    decimal.Decimal
}

// ReconciledLine is one settlement row with its derived columns.
type ReconciledLine struct {
	*SettlementRecord

	Year  int
	Month int

	Matched             bool
	PlatformProductCode string
	ProductCode         string
	OrderLineCount      int
	OrderLineIndex      int

	UnitPrice    decimal.Decimal
	ActualAmount decimal.Decimal
	Ratio        decimal.Decimal
	SoldQuantity int64

	ExtraFee                        decimal.Decimal
	CustomerReceivable              decimal.Decimal
	PlatformReceivable              decimal.Decimal
	CommissionDeduction             decimal.Decimal
	DistributionCommissionDeduction decimal.Decimal
	OtherDeduction                  decimal.Decimal
	NetReceivable                   decimal.Decimal
}

// ComputeNet sets NetReceivable from the receivable and deduction columns.
func (l *ReconciledLine) ComputeNet() {
	l.NetReceivable = l.CustomerReceivable.
		Add(l.PlatformReceivable).
		Add(l.ExtraFee).
		Sub(l.CommissionDeduction).
		Sub(l.DistributionCommissionDeduction).
		Sub(l.OtherDeduction)
}

type Stats struct {
	TotalLines                    int             `json:"totalLines"`
	DistinctOrders                int             `json:"distinctOrders"`
	UnmatchedLines                int             `json:"unmatchedLines"`
	TotalSoldQuantity             int64           `json:"totalSoldQuantity"`
	TotalCustomerReceivable       decimal.Decimal `json:"totalCustomerReceivable"`
	TotalExtraFee                 decimal.Decimal `json:"totalExtraFee"`
	TotalNetReceivable            decimal.Decimal `json:"totalNetReceivable"`
	CustomerReceivableWithFreight decimal.Decimal `json:"customerReceivableWithFreight"`
}

type Ledger struct {
	Platform    string
	Period      Period
	SourceFiles []string
	Lines       []*ReconciledLine
	Stats       Stats
}
