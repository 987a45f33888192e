package reports

import (
	"bytes"
	"testing"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLine(orderId, code string, paid, commission, distribution, extraFee int64, qty int64, note string) *models.ReconciledLine {
	rec := &models.SettlementRecord{
		OrderId: orderId,
		Raw: map[string]string{
			models.ColOrderId:                orderId,
			models.ColPaidOrRefunded:         decimal.NewFromInt(paid).String(),
			models.ColPlatformSubsidy:        "",
			models.ColCommission:             decimal.NewFromInt(commission).String(),
			models.ColDistributionCommission: decimal.NewFromInt(distribution).String(),
			"备注":                             note,
		},
		Amounts: map[string]decimal.Decimal{
			models.ColPaidOrRefunded:         decimal.NewFromInt(paid),
			models.ColPlatformSubsidy:        decimal.Zero,
			models.ColCommission:             decimal.NewFromInt(commission),
			models.ColDistributionCommission: decimal.NewFromInt(distribution),
		},
	}
	return &models.ReconciledLine{
		SettlementRecord:    rec,
		Year:                2024,
		Month:               3,
		PlatformProductCode: code,
		SoldQuantity:        qty,
		ExtraFee:            decimal.NewFromInt(extraFee),
		OtherDeduction:      decimal.Zero,
	}
}

func openExport(t *testing.T, ledger *models.Ledger) (*excelize.File, string) {
	t.Helper()
	data, err := ExportLedger(ledger)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, LedgerSheetName(ledger.Platform)
}

func TestExportLedgerLayout(t *testing.T) {
	ledger := &models.Ledger{
		Platform:    "xiaohongshu",
		Period:      models.Period{Year: 2024, Month: 3},
		SourceFiles: []string{"settlement.xlsx", "orders.xlsx"},
		Lines: []*models.ReconciledLine{
			testLine("O1", "ABC-1", 100, 10, 2, 6, 1, ""),
			testLine("O1", "XYZ", 50, 5, 0, 0, 0, "=HYPERLINK(\"x\")"),
		},
		Stats: models.Stats{TotalLines: 2, DistinctOrders: 1},
	}
	f, sheet := openExport(t, ledger)

	assert.Equal(t, "小红书结算明细", sheet)
	assert.Equal(t, []string{"小红书结算明细"}, f.GetSheetList())

	meta, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Contains(t, meta, "2024年3月")
	assert.Contains(t, meta, "settlement.xlsx")

	headers := map[string]string{
		"A2": "年份", "B2": "月份", "C2": "订单号", "D2": "订单计数", "E2": "订单序号",
		"F2": "平台商品编码", "G2": "商品编码", "H2": "销售数量", "I2": "应收客户", "J2": "应收平台",
		"K2": "额外费用", "L2": "佣金扣除", "M2": "分销佣金扣除", "N2": "其他扣除", "O2": "应到账金额",
		"P2": "", "Q2": "订单号",
	}
	for cell, want := range headers {
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	formulas := map[string]string{
		"C3": "Q3",
		"D3": "COUNTIF($C$3:$C$4,C3)",
		"E4": "COUNTIF($C$3:$C4,C4)",
		"G3": `IFERROR(LEFT(F3,FIND("-",F3)-1),F3)`,
		"O3": "I3+J3+K3-L3-M3-N3",
	}
	for cell, want := range formulas {
		got, err := f.GetCellFormula(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	paid, err := f.GetCellFormula(sheet, "I3")
	require.NoError(t, err)
	commission, err := f.GetCellFormula(sheet, "L3")
	require.NoError(t, err)
	assert.NotEmpty(t, paid)
	assert.Equal(t, "-", commission[:1])
}

func TestExportLedgerFormulasEvaluate(t *testing.T) {
	ledger := &models.Ledger{
		Period: models.Period{Year: 2024, Month: 3},
		Lines: []*models.ReconciledLine{
			testLine("O1", "ABC-1", 100, 10, 2, 6, 1, ""),
			testLine("O1", "XYZ", 50, 5, 0, 0, 0, ""),
			testLine("O2", "", 30, 0, 0, 0, 1, ""),
		},
	}
	f, sheet := openExport(t, ledger)

	cases := map[string]string{
		"C3": "O1",
		"D3": "2",
		"E4": "2",
		"D5": "1",
		"G3": "ABC",
		"G4": "XYZ",
		"O3": "118",
		"O4": "55",
	}
	for cell, want := range cases {
		got, err := f.CalcCellValue(sheet, cell)
		require.NoError(t, err, cell)
		assert.Equal(t, want, got, cell)
	}
}

func TestExportLedgerKeepsFormulaLikeText(t *testing.T) {
	cases := []struct {
		name        string
		code        string
		productCode string
		afterSale   string
		note        string
	}{
		{name: "leading dash code", code: "-SKU", productCode: "", afterSale: "-", note: "=HYPERLINK(\"http://x\")"},
		{name: "plus code", code: "+code", productCode: "+code", afterSale: "@sum", note: "=1+1"},
		{name: "plain code", code: "ABC-1", productCode: "ABC", afterSale: "", note: "a=b"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			line := testLine("O1", c.code, 1, 0, 0, 0, 1, c.note)
			line.ProductCode = c.productCode
			line.Raw[models.ColAfterSaleId] = c.afterSale
			f, sheet := openExport(t, &models.Ledger{
				Period: models.Period{Year: 2024, Month: 3},
				Lines:  []*models.ReconciledLine{line},
			})

			texts := map[string]string{"F3": c.code}
			texts[rawCell(t, "备注")] = c.note
			texts[rawCell(t, models.ColAfterSaleId)] = c.afterSale
			for cell, want := range texts {
				got, err := f.GetCellValue(sheet, cell)
				require.NoError(t, err)
				assert.Equal(t, want, got, cell)
				formula, err := f.GetCellFormula(sheet, cell)
				require.NoError(t, err)
				assert.Empty(t, formula, cell)
			}

			got, err := f.CalcCellValue(sheet, "G3")
			require.NoError(t, err)
			assert.Equal(t, line.ProductCode, got)
		})
	}
}

func rawCell(t *testing.T, header string) string {
	t.Helper()
	for i, c := range LedgerColumns() {
		if c.Header != header || c.Kind != columnRaw {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, LedgerFirstDataRow)
		require.NoError(t, err)
		return cell
	}
	t.Fatalf("no raw column %s", header)
	return ""
}

func TestExportLedgerEmpty(t *testing.T) {
	f, sheet := openExport(t, &models.Ledger{Period: models.Period{Year: 2024, Month: 1}})
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
