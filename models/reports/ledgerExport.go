package reports

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/config"
	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	LedgerMetaRow      = 1
	LedgerHeaderRow    = 2
	LedgerFirstDataRow = 3
)

type ledgerColumnKind int

const (
	columnLiteral ledgerColumnKind = iota
	columnFormula
	columnBlank
	columnRaw
)

// ledgerColumn describes one output column.
//
// Formula templates reference other columns by key in braces and are expanded per row:
// {key} is the column letter, {r} the current row, {first} and {last} the data row bounds.
// Formulas are stored without the leading "=".
type ledgerColumn struct {
	Key     string
	Header  string
	Kind    ledgerColumnKind
	Formula string
	Value   func(l *models.ReconciledLine) any
	Raw     models.RawColumn
	Width   float64
}

func rawKey(name string) string {
	return "raw:" + name
}

var derivedLedgerColumns = []ledgerColumn{
	{Key: "year", Header: "年份", Kind: columnLiteral, Width: 8,
		Value: func(l *models.ReconciledLine) any { return l.Year }},
	{Key: "month", Header: "月份", Kind: columnLiteral, Width: 6,
		Value: func(l *models.ReconciledLine) any { return l.Month }},
	{Key: "orderId", Header: "订单号", Kind: columnFormula, Width: 24,
		Formula: "{" + rawKey(models.ColOrderId) + "}{r}"},
	{Key: "orderLineCount", Header: "订单计数", Kind: columnFormula, Width: 10,
		Formula: "COUNTIF(${orderId}${first}:${orderId}${last},{orderId}{r})"},
	{Key: "orderLineIndex", Header: "订单序号", Kind: columnFormula, Width: 10,
		Formula: "COUNTIF(${orderId}${first}:${orderId}{r},{orderId}{r})"},
	{Key: "platformProductCode", Header: "平台商品编码", Kind: columnLiteral, Width: 18,
		Value: func(l *models.ReconciledLine) any { return l.PlatformProductCode }},
	{Key: "productCode", Header: "商品编码", Kind: columnFormula, Width: 14,
		Formula: `IFERROR(LEFT({platformProductCode}{r},FIND("-",{platformProductCode}{r})-1),{platformProductCode}{r})`},
	{Key: "soldQuantity", Header: "销售数量", Kind: columnLiteral, Width: 10,
		Value: func(l *models.ReconciledLine) any { return l.SoldQuantity }},
	{Key: "customerReceivable", Header: "应收客户", Kind: columnFormula, Width: 12,
		Formula: "{" + rawKey(models.ColPaidOrRefunded) + "}{r}"},
	{Key: "platformReceivable", Header: "应收平台", Kind: columnFormula, Width: 12,
		Formula: "{" + rawKey(models.ColPlatformSubsidy) + "}{r}"},
	{Key: "extraFee", Header: "额外费用", Kind: columnLiteral, Width: 12,
		Value: func(l *models.ReconciledLine) any { return l.ExtraFee }},
	{Key: "commissionDeduction", Header: "佣金扣除", Kind: columnFormula, Width: 12,
		Formula: "-{" + rawKey(models.ColCommission) + "}{r}"},
	{Key: "distributionDeduction", Header: "分销佣金扣除", Kind: columnFormula, Width: 14,
		Formula: "-{" + rawKey(models.ColDistributionCommission) + "}{r}"},
	{Key: "otherDeduction", Header: "其他扣除", Kind: columnLiteral, Width: 10,
		Value: func(l *models.ReconciledLine) any { return l.OtherDeduction }},
	{Key: "netReceivable", Header: "应到账金额", Kind: columnFormula, Width: 14,
		Formula: "{customerReceivable}{r}+{platformReceivable}{r}+{extraFee}{r}-{commissionDeduction}{r}-{distributionDeduction}{r}-{otherDeduction}{r}"},
	{Key: "spacer", Kind: columnBlank, Width: 3},
}

// LedgerColumns is the full output layout: the derived block, a spacer, then every raw settlement column.
func LedgerColumns() []ledgerColumn {
	cols := make([]ledgerColumn, 0, len(derivedLedgerColumns)+len(models.SettlementRawColumns))
	cols = append(cols, derivedLedgerColumns...)
	for _, raw := range models.SettlementRawColumns {
		width := 14.0
		if raw.Kind == models.ColumnKindText {
			width = 20
		}
		cols = append(cols, ledgerColumn{
			Key:    rawKey(raw.Name),
			Header: raw.Name,
			Kind:   columnRaw,
			Raw:    raw,
			Width:  width,
		})
	}
	return cols
}

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

type coordinateMap struct {
	letters map[string]string
	first   int
	last    int
}

func newCoordinateMap(cols []ledgerColumn, lineCount int) (*coordinateMap, error) {
	m := &coordinateMap{
		letters: make(map[string]string, len(cols)),
		first:   LedgerFirstDataRow,
		last:    LedgerFirstDataRow + lineCount - 1,
	}
	if m.last < m.first {
		m.last = m.first
	}
	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		m.letters[c.Key] = name
	}
	return m, nil
}

func (m *coordinateMap) expand(template string, row int) (string, error) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		switch key {
		case "r":
			return strconv.Itoa(row)
		case "first":
			return strconv.Itoa(m.first)
		case "last":
			return strconv.Itoa(m.last)
		}
		letter, ok := m.letters[key]
		if !ok {
			missing = key
		}
		return letter
	})
	if missing != "" {
		return "", fmt.Errorf("formula %q references unknown column %q", template, missing)
	}
	return out, nil
}

// platformDisplay falls back to the only live platform for ledgers built without one.
func platformDisplay(platform string) string {
	if p, ok := config.LookupPlatform(platform); ok {
		return p.DisplayName
	}
	p, _ := config.LookupPlatform(config.PlatformXiaohongshu)
	return p.DisplayName
}

func LedgerSheetName(platform string) string {
	return platformDisplay(platform) + "结算明细"
}

func ledgerMetadata(ledger *models.Ledger, display string) string {
	parts := []string{
		"平台: " + display,
		fmt.Sprintf("期间: %d年%d月", ledger.Period.Year, ledger.Period.Month),
		fmt.Sprintf("行数: %d", ledger.Stats.TotalLines),
		fmt.Sprintf("订单数: %d", ledger.Stats.DistinctOrders),
	}
	if len(ledger.SourceFiles) > 0 {
		parts = append(parts, "源文件: "+strings.Join(ledger.SourceFiles, ", "))
	}
	return strings.Join(parts, " | ")
}

func setCell(f *excelize.File, sheet, cell string, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		// A shared-string cell is never evaluated, so text like "=1+1" stays literal.
		return f.SetCellStr(sheet, cell, v)
	case decimal.Decimal:
		return f.SetCellFloat(sheet, cell, v.InexactFloat64(), -1, 64)
	case int64:
		return f.SetCellInt(sheet, cell, int(v))
	case int:
		return f.SetCellInt(sheet, cell, v)
	default:
		return f.SetCellValue(sheet, cell, v)
	}
}

func rawCellValue(l *models.ReconciledLine, col models.RawColumn) any {
	text, present := l.Raw[col.Name]
	if !present {
		return nil
	}
	if col.Kind == models.ColumnKindAmount {
		if d, ok := l.Amount(col.Name); ok {
			return d
		}
	}
	if text == "" {
		return nil
	}
	return text
}

// ExportLedger renders the ledger as an xlsx workbook whose derived columns are live formulas
// over the raw settlement columns copied alongside them.
func ExportLedger(ledger *models.Ledger) ([]byte, error) {
	cols := LedgerColumns()
	coords, err := newCoordinateMap(cols, len(ledger.Lines))
	if err != nil {
		return nil, err
	}

	display := platformDisplay(ledger.Platform)
	sheet := LedgerSheetName(ledger.Platform)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	if err := f.SetCellStr(sheet, fmt.Sprintf("A%d", LedgerMetaRow), ledgerMetadata(ledger, display)); err != nil {
		return nil, err
	}

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, LedgerHeaderRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheet, cell, c.Header); err != nil {
			return nil, err
		}
		letter := coords.letters[c.Key]
		if err := f.SetColWidth(sheet, letter, letter, c.Width); err != nil {
			return nil, err
		}
	}

	for n, line := range ledger.Lines {
		row := LedgerFirstDataRow + n
		for i, c := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, err
			}
			switch c.Kind {
			case columnLiteral:
				err = setCell(f, sheet, cell, c.Value(line))
			case columnRaw:
				err = setCell(f, sheet, cell, rawCellValue(line, c.Raw))
			case columnFormula:
				var formula string
				formula, err = coords.expand(c.Formula, row)
				if err == nil {
					err = f.SetCellFormula(sheet, cell, formula)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", row, c.Header, err)
			}
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, LedgerHeaderRow, LedgerHeaderRow, headerStyle); err != nil {
		return nil, err
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      LedgerHeaderRow,
		TopLeftCell: fmt.Sprintf("A%d", LedgerFirstDataRow),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
