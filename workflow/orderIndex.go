package workflow

import (
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
)

// OrderIndex maps (order id, variant id) to the order line the settlement row refers to.
// It is built once per run and only read afterwards.
type OrderIndex struct {
	matches map[string]models.OrderMatch
}

// OrderKey joins the trimmed order and variant ids with "_".
func OrderKey(orderId, variantId string) string {
	return strings.TrimSpace(orderId) + "_" + strings.TrimSpace(variantId)
}

// BuildOrderIndex indexes the order records; a later row overwrites an earlier one with the same key.
func BuildOrderIndex(records []*models.OrderRecord) *OrderIndex {
	idx := &OrderIndex{matches: make(map[string]models.OrderMatch, len(records))}
	for _, r := range records {
		idx.matches[OrderKey(r.OrderId, r.VariantId)] = models.OrderMatch{
			MerchantCode: r.MerchantCode,
			TotalPrice:   r.TotalPrice,
			UnitCount:    r.UnitCount,
		}
	}
	return idx
}

// Lookup reports the order line for the pair. A miss is not an error.
func (idx *OrderIndex) Lookup(orderId, variantId string) (models.OrderMatch, bool) {
	if idx == nil {
		return models.OrderMatch{}, false
	}
	m, ok := idx.matches[OrderKey(orderId, variantId)]
	return m, ok
}

// Len is the number of distinct keys.
func (idx *OrderIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.matches)
}
