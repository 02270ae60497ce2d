package service

import (
	"log"

	"github.com/ordini-app/api/internal/database"
)

// MergeItems folds an order's line items into a batch aggregate, keyed by
// menu-item id. Returns a new map; the input aggregate is not modified.
func MergeItems(agg database.ConsolidatedItems, items []database.LineItem) database.ConsolidatedItems {
	merged := agg.Clone()
	if merged == nil {
		merged = database.ConsolidatedItems{}
	}
	for _, it := range items {
		entry, ok := merged[it.ID]
		if !ok {
			entry = database.ConsolidatedItem{
				Name:  it.Name,
				Price: it.Price,
			}
		}
		entry.Quantity += it.Quantity
		merged[it.ID] = entry
	}
	return merged
}

// SubtractItems removes an order's line items from a batch aggregate, the
// exact inverse of MergeItems. Entries that reach zero or below are dropped.
// A line item with no matching entry indicates drifted state; it is logged
// and skipped so the rest of the removal still applies.
func SubtractItems(agg database.ConsolidatedItems, items []database.LineItem) database.ConsolidatedItems {
	remaining := agg.Clone()
	if remaining == nil {
		remaining = database.ConsolidatedItems{}
	}
	for _, it := range items {
		entry, ok := remaining[it.ID]
		if !ok {
			log.Printf("WARN: subtract: item %q not in batch aggregate, skipping", it.ID)
			continue
		}
		entry.Quantity -= it.Quantity
		if entry.Quantity <= 0 {
			delete(remaining, it.ID)
			continue
		}
		remaining[it.ID] = entry
	}
	return remaining
}

// subtractUtensils clamps at zero so drifted counters never go negative.
func subtractUtensils(current, sub int32) int32 {
	if current < sub {
		return 0
	}
	return current - sub
}
