package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID       int64  `json:"id" db:"id"`
	OrderID  int64  `json:"order_id" db:"order_id"`
	Flavor   string `json:"flavor" db:"flavor"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// Order is one customer order. Day is a free-text delivery label such as
// "Lunes 12", not a calendar date.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	Day           string          `json:"day" db:"day"`
	Name          string          `json:"name" db:"name"`
	BasePrice     decimal.Decimal `json:"base_price" db:"base_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price" db:"shipping_price"`
	Address       string          `json:"address" db:"address"`
	TimeWindow    string          `json:"time_window" db:"time_window"`
	Paid          bool            `json:"paid" db:"paid"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Items         []OrderItem     `json:"items" db:"-"` // loaded from order_items
}

// Total is the amount due for the order. It is never stored.
func (o *Order) Total() decimal.Decimal {
	return o.BasePrice.Add(o.ShippingPrice)
}

// ItemCount is the sum of all item quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
