package service

import (
	"sort"

	"github.com/ordini-app/api/internal/database"
	"github.com/shopspring/decimal"
)

// DishStat aggregates one dish across a set of orders.
type DishStat struct {
	Name     string          `json:"name"`
	Quantity int32           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Statistics summarizes ordering activity.
type Statistics struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Dishes       []DishStat      `json:"dishes"`
}

// ComputeStatistics folds orders into per-dish quantity and revenue totals,
// most ordered dish first.
func ComputeStatistics(orders []database.Order) Statistics {
	stats := Statistics{
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
	}

	byName := map[string]DishStat{}
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalPrice)
		for _, it := range o.Items {
			d := byName[it.Name]
			d.Name = it.Name
			d.Quantity += it.Quantity
			d.Revenue = d.Revenue.Add(it.Price.Mul(decimal.NewFromInt32(it.Quantity)))
			byName[it.Name] = d
		}
	}

	stats.Dishes = make([]DishStat, 0, len(byName))
	for _, d := range byName {
		stats.Dishes = append(stats.Dishes, d)
	}
	sort.Slice(stats.Dishes, func(i, j int) bool {
		if stats.Dishes[i].Quantity != stats.Dishes[j].Quantity {
			return stats.Dishes[i].Quantity > stats.Dishes[j].Quantity
		}
		return stats.Dishes[i].Name < stats.Dishes[j].Name
	})

	return stats
}
