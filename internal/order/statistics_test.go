package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
)

func TestComputeStatistics(t *testing.T) {
	orders := []order.Order{
		{
			ID:            1,
			Day:           "Monday",
			Name:          "Ana",
			BasePrice:     decimal.NewFromInt(2400),
			ShippingPrice: decimal.NewFromInt(500),
			Paid:          true,
			Items:         []order.OrderItem{{Flavor: "Rocher", Quantity: 2}},
		},
		{
			ID:            2,
			Day:           "Monday",
			Name:          "Bruno",
			BasePrice:     decimal.NewFromInt(1200),
			ShippingPrice: decimal.Zero,
			Items:         []order.OrderItem{{Flavor: "Sweet", Quantity: 1}},
		},
		{
			ID:            3,
			Day:           "Tuesday",
			Name:          "Carla",
			BasePrice:     decimal.RequireFromString("100.50"),
			ShippingPrice: decimal.RequireFromString("0.25"),
			Paid:          true,
		},
	}

	stats := order.ComputeStatistics(orders)
	require.NotNil(t, stats)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.PaidOrders)
	assert.Equal(t, 1, stats.UnpaidOrders)
	assert.Equal(t, 3, stats.TotalItems)
	assert.True(t, decimal.RequireFromString("4200.75").Equal(stats.TotalRevenue), "got %s", stats.TotalRevenue)
	assert.Equal(t, map[string]int{"Rocher": 2, "Sweet": 1}, stats.ProductionByFlavor)
	assert.Equal(t, map[string]map[string]int{
		"Monday":  {"Rocher": 2, "Sweet": 1},
		"Tuesday": {},
	}, stats.ProductionByDay)
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := order.ComputeStatistics(nil)

	assert.Equal(t, 0, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.NotNil(t, stats.ProductionByFlavor)
	assert.NotNil(t, stats.ProductionByDay)
	assert.Empty(t, stats.ProductionByDay)
}

func TestComputeStatistics_Idempotent(t *testing.T) {
	orders := []order.Order{
		{Day: "Lunes 3", BasePrice: decimal.NewFromInt(10), Items: []order.OrderItem{{Flavor: "Coco", Quantity: 4}}},
	}

	first := order.ComputeStatistics(orders)
	second := order.ComputeStatistics(orders)
	assert.Equal(t, first, second)
}

func TestOrder_Total(t *testing.T) {
	o := order.Order{
		BasePrice:     decimal.NewFromInt(2400),
		ShippingPrice: decimal.NewFromInt(500),
	}
	assert.Equal(t, "2900", o.Total().String())

	o = order.Order{
		BasePrice:     decimal.RequireFromString("0.1"),
		ShippingPrice: decimal.RequireFromString("0.2"),
	}
	assert.Equal(t, "0.3", o.Total().String())
}
