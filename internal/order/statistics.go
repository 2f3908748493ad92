package order

import "github.com/shopspring/decimal"

type Statistics struct {
	TotalRevenue       decimal.Decimal           `json:"total_revenue"`
	TotalOrders        int                       `json:"total_orders"`
	PaidOrders         int                       `json:"paid_orders"`
	UnpaidOrders       int                       `json:"unpaid_orders"`
	TotalItems         int                       `json:"total_items"`
	ProductionByFlavor map[string]int            `json:"production_by_flavor"`
	ProductionByDay    map[string]map[string]int `json:"production_by_day"`
}

// ComputeStatistics aggregates a full order set. Every day label that has at
// least one order gets an entry in ProductionByDay, even when none of its
// orders carry items.
func ComputeStatistics(orders []Order) *Statistics {
	stats := &Statistics{
		TotalRevenue:       decimal.Zero,
		TotalOrders:        len(orders),
		ProductionByFlavor: make(map[string]int),
		ProductionByDay:    make(map[string]map[string]int),
	}

	for i := range orders {
		o := &orders[i]

		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total())
		if o.Paid {
			stats.PaidOrders++
		} else {
			stats.UnpaidOrders++
		}

		byFlavor, ok := stats.ProductionByDay[o.Day]
		if !ok {
			byFlavor = make(map[string]int)
			stats.ProductionByDay[o.Day] = byFlavor
		}

		for _, item := range o.Items {
			stats.ProductionByFlavor[item.Flavor] += item.Quantity
			byFlavor[item.Flavor] += item.Quantity
			stats.TotalItems += item.Quantity
		}
	}

	return stats
}
