package models

import "github.com/shopspring/decimal"

var OrderRequiredColumns = []string{
	ColOrderId,
	ColVariantId,
	ColMerchantCode,
	ColTotalPrice,
	ColSkuCount,
}

type OrderRecord struct {
	SourceRow    int
	OrderId      string
	VariantId    string
	MerchantCode string
	TotalPrice   decimal.Decimal
	UnitCount    decimal.Decimal
}

func ParseOrderTable(t *Table) ([]*OrderRecord, error) {
	if err := requireColumns(t, FileRoleOrders, OrderRequiredColumns); err != nil {
		return nil, err
	}

	records := make([]*OrderRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		totalPrice, err := parseAmountCell(t, FileRoleOrders, i, ColTotalPrice)
		if err != nil {
			return nil, err
		}
		unitCount, err := parseAmountCell(t, FileRoleOrders, i, ColSkuCount)
		if err != nil {
			return nil, err
		}
		records = append(records, &OrderRecord{
			SourceRow:    t.RowNumber(i),
			OrderId:      t.Value(i, ColOrderId),
			VariantId:    t.Value(i, ColVariantId),
			MerchantCode: t.Value(i, ColMerchantCode),
			TotalPrice:   totalPrice,
			UnitCount:    unitCount,
		})
	}
	return records, nil
}
