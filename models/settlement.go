package models

import (
	"github.com/Wawaweaa/fitax-steamlit-mvp/utils"
	"github.com/shopspring/decimal"
)

// Column names used by the settlement and order exports.
const (
	ColOrderId                = "订单号"
	ColAfterSaleId            = "售后单号"
	ColOrderTime              = "下单时间"
	ColSettlementTime         = "结算时间"
	ColProductName            = "商品名称"
	ColSpecName               = "规格名称"
	ColVariantId              = "规格ID"
	ColSkuCount               = "SKU件数"
	ColPaidOrRefunded         = "商品实付/实退"
	ColFreight                = "运费"
	ColMerchantDiscount       = "商家优惠"
	ColPlatformSubsidy        = "平台优惠补贴"
	ColCommission             = "佣金总额"
	ColDistributionCommission = "分销佣金"

	ColMerchantCode = "商家编码"
	ColTotalPrice   = "商品总价(元)"
)

type RawColumn struct {
	Name string
	Kind ColumnKind
}

// SettlementRawColumns is the fixed order in which settlement columns are copied into the ledger.
// Columns absent from an export are emitted blank.
var SettlementRawColumns = []RawColumn{
	{ColOrderId, ColumnKindText},
	{ColAfterSaleId, ColumnKindText},
	{ColOrderTime, ColumnKindText},
	{ColSettlementTime, ColumnKindText},
	{"结算类型", ColumnKindText},
	{"结算状态", ColumnKindText},
	{"店铺ID", ColumnKindText},
	{"店铺名称", ColumnKindText},
	{"商品ID", ColumnKindText},
	{ColProductName, ColumnKindText},
	{ColVariantId, ColumnKindText},
	{ColSpecName, ColumnKindText},
	{ColSkuCount, ColumnKindAmount},
	{"商品单价", ColumnKindAmount},
	{ColPaidOrRefunded, ColumnKindAmount},
	{ColFreight, ColumnKindAmount},
	{ColMerchantDiscount, ColumnKindAmount},
	{ColPlatformSubsidy, ColumnKindAmount},
	{"商家运费优惠", ColumnKindAmount},
	{ColCommission, ColumnKindAmount},
	{"佣金比例", ColumnKindText},
	{ColDistributionCommission, ColumnKindAmount},
	{"支付渠道费", ColumnKindAmount},
	{"代运营服务商佣金", ColumnKindAmount},
	{"花呗分期手续费", ColumnKindAmount},
	{"运费险", ColumnKindAmount},
	{"其他费用", ColumnKindAmount},
	{"结算金额", ColumnKindAmount},
	{"结算账户", ColumnKindText},
	{"支付方式", ColumnKindText},
	{"收货省份", ColumnKindText},
	{"交易流水号", ColumnKindText},
	{"备注", ColumnKindText},
}

// SettlementRequiredColumns must all be present for a full parse.
var SettlementRequiredColumns = []string{
	ColOrderId,
	ColVariantId,
	ColSettlementTime,
	ColPaidOrRefunded,
	ColFreight,
	ColMerchantDiscount,
	ColPlatformSubsidy,
	ColCommission,
	ColDistributionCommission,
}

type SettlementRecord struct {
	SourceRow int

	OrderId            string
	VariantId          string
	ProductName        string
	SpecName           string
	AfterSaleId        string
	SettlementTimeText string

	PaidOrRefunded         decimal.Decimal
	Freight                decimal.Decimal
	MerchantDiscount       decimal.Decimal
	PlatformSubsidy        decimal.Decimal
	Commission             decimal.Decimal
	DistributionCommission decimal.Decimal

	// Raw holds the text of every SettlementRawColumns entry present in the export;
	// Amounts holds the parsed value of the Amount-kind ones.
	Raw     map[string]string
	Amounts map[string]decimal.Decimal
}

func (r *SettlementRecord) RawValue(column string) string {
	return r.Raw[column]
}

// Amount returns the parsed value of an Amount-kind raw column; false when the column is absent.
func (r *SettlementRecord) Amount(column string) (decimal.Decimal, bool) {
	d, ok := r.Amounts[column]
	return d, ok
}

func requireColumns(t *Table, role FileRole, columns []string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &MissingColumnError{Table: role, Column: c}
		}
	}
	return nil
}

func parseAmountCell(t *Table, role FileRole, row int, column string) (decimal.Decimal, error) {
	text := t.Value(row, column)
	d, err := utils.ParseAmount(text)
	if err != nil {
		return decimal.Zero, &MalformedAmountError{
			Table:  role,
			Row:    t.RowNumber(row),
			Column: column,
			Value:  text,
		}
	}
	return d, nil
}

// ParseSettlementTable converts every settlement row, keeping the table's row order.
func ParseSettlementTable(t *Table) ([]*SettlementRecord, error) {
	if err := requireColumns(t, FileRoleSettlement, SettlementRequiredColumns); err != nil {
		return nil, err
	}

	records := make([]*SettlementRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec := &SettlementRecord{
			SourceRow:          t.RowNumber(i),
			OrderId:            t.Value(i, ColOrderId),
			VariantId:          t.Value(i, ColVariantId),
			ProductName:        t.Value(i, ColProductName),
			SpecName:           t.Value(i, ColSpecName),
			AfterSaleId:        t.Value(i, ColAfterSaleId),
			SettlementTimeText: t.Value(i, ColSettlementTime),
			Raw:                make(map[string]string, len(SettlementRawColumns)),
			Amounts:            make(map[string]decimal.Decimal),
		}

		for _, col := range SettlementRawColumns {
			if !t.HasColumn(col.Name) {
				continue
			}
			rec.Raw[col.Name] = t.Value(i, col.Name)
			if col.Kind != ColumnKindAmount {
				continue
			}
			d, err := parseAmountCell(t, FileRoleSettlement, i, col.Name)
			if err != nil {
				return nil, err
			}
			rec.Amounts[col.Name] = d
		}

		rec.PaidOrRefunded = rec.Amounts[ColPaidOrRefunded]
		rec.Freight = rec.Amounts[ColFreight]
		rec.MerchantDiscount = rec.Amounts[ColMerchantDiscount]
		rec.PlatformSubsidy = rec.Amounts[ColPlatformSubsidy]
		rec.Commission = rec.Amounts[ColCommission]
		rec.DistributionCommission = rec.Amounts[ColDistributionCommission]

		records = append(records, rec)
	}
	return records, nil
}
