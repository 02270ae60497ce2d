package service

import (
	"testing"

	"github.com/ordini-app/api/internal/database"
	"github.com/shopspring/decimal"
)

func TestComputeStatistics_AggregatesAcrossOrders(t *testing.T) {
	orders := []database.Order{
		{
			TotalPrice: decimal.RequireFromString("9.00"),
			Items: []database.LineItem{
				lineItem("pri-1", "Riso bianco", "2.50", 2),
				lineItem("ant-2", "Ravioli al vapore", "4.00", 1),
			},
		},
		{
			TotalPrice: decimal.RequireFromString("5.00"),
			Items: []database.LineItem{
				lineItem("pri-1", "Riso bianco", "2.50", 2),
			},
		},
	}

	stats := ComputeStatistics(orders)

	if stats.TotalOrders != 2 {
		t.Errorf("total orders: got %d, want 2", stats.TotalOrders)
	}
	if got := stats.TotalRevenue.StringFixed(2); got != "14.00" {
		t.Errorf("total revenue: got %v, want 14.00", got)
	}
	if len(stats.Dishes) != 2 {
		t.Fatalf("dishes: got %d, want 2", len(stats.Dishes))
	}
	// Most ordered dish first.
	if stats.Dishes[0].Name != "Riso bianco" || stats.Dishes[0].Quantity != 4 {
		t.Errorf("top dish: got %+v", stats.Dishes[0])
	}
	if got := stats.Dishes[0].Revenue.StringFixed(2); got != "10.00" {
		t.Errorf("top dish revenue: got %v, want 10.00", got)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil)

	if stats.TotalOrders != 0 {
		t.Errorf("total orders: got %d, want 0", stats.TotalOrders)
	}
	if !stats.TotalRevenue.IsZero() {
		t.Errorf("total revenue: got %v, want 0", stats.TotalRevenue)
	}
	if len(stats.Dishes) != 0 {
		t.Errorf("dishes: got %d, want 0", len(stats.Dishes))
	}
}
