package workflow

import (
	"testing"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var settlementHeader = []string{
	models.ColOrderId,
	models.ColAfterSaleId,
	models.ColSettlementTime,
	models.ColVariantId,
	models.ColProductName,
	models.ColPaidOrRefunded,
	models.ColFreight,
	models.ColMerchantDiscount,
	models.ColPlatformSubsidy,
	models.ColCommission,
	models.ColDistributionCommission,
}

var ordersHeader = []string{
	models.ColOrderId,
	models.ColVariantId,
	models.ColMerchantCode,
	models.ColTotalPrice,
	models.ColSkuCount,
	models.ColOrderTime,
}

// settlementRow lists values in settlementHeader order.
type settlementRow struct {
	orderId, afterSale, settledAt, variantId, name string
	paid, freight, discount, subsidy, commission, distribution string
}

func (r settlementRow) cells() []string {
	return []string{r.orderId, r.afterSale, r.settledAt, r.variantId, r.name,
		r.paid, r.freight, r.discount, r.subsidy, r.commission, r.distribution}
}

func settlementTable(rows ...settlementRow) *models.Table {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, r.cells())
	}
	return models.NewTable("settlement.xlsx", settlementHeader, data, nil)
}

func ordersTable(rows ...[]string) *models.Table {
	return models.NewTable("orders.xlsx", ordersHeader, rows, nil)
}

func buildXlsx(t *testing.T, name string, header []string, rows [][]string) models.RawFile {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return models.RawFile{Name: name, Data: buf.Bytes()}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
