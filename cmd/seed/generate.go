package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
)

var (
	customers = []string{"María González", "Juan Pérez", "Lucía Fernández", "Carlos Rodríguez", "Ana López", "Sofía Martínez"}
	weekdays  = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
	addresses = []string{"Av. Siempre Viva 123", "Centro", "Retiro por local", "Belgrano 1200"}
	shipping  = []int64{0, 500, 1000}
)

var pricePerCookie = decimal.NewFromInt(1200)

// randomOrder builds a plausible order: one to four lines over the catalog,
// priced per cookie.
func randomOrder(rng *rand.Rand) *order.Order {
	flavors := order.Flavors()

	o := &order.Order{
		Day:           fmt.Sprintf("%s %d", pick(rng, weekdays), rng.IntN(30)+1),
		Name:          pick(rng, customers),
		Address:       pick(rng, addresses),
		TimeWindow:    "14:00-18:00",
		ShippingPrice: decimal.NewFromInt(pick(rng, shipping)),
		Paid:          rng.IntN(2) == 1,
		BasePrice:     decimal.Zero,
	}

	lines := rng.IntN(4) + 1
	for i := 0; i < lines; i++ {
		qty := rng.IntN(6) + 1
		o.Items = append(o.Items, order.OrderItem{Flavor: pick(rng, flavors), Quantity: qty})
		o.BasePrice = o.BasePrice.Add(pricePerCookie.Mul(decimal.NewFromInt(int64(qty))))
	}

	return o
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.IntN(len(from))]
}
