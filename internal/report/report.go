package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	StatusPaid    = "Paid"
	StatusPending = "Pending"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var header = []string{"ID", "Created", "Day", "Customer", "Address", "Total", "Status", "Items"}

// Row is one order flattened for a spreadsheet.
type Row struct {
	OrderID   int64
	CreatedAt time.Time
	Day       string
	Customer  string
	Address   string
	Total     decimal.Decimal
	Status    string
	Items     string
}

// Rows flattens orders, newest first.
func Rows(orders []order.Order) []Row {
	rows := make([]Row, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		status := StatusPending
		if o.Paid {
			status = StatusPaid
		}
		rows = append(rows, Row{
			OrderID:   o.ID,
			CreatedAt: o.CreatedAt,
			Day:       o.Day,
			Customer:  o.Name,
			Address:   o.Address,
			Total:     o.Total(),
			Status:    status,
			Items:     ItemSummary(o.Items),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].OrderID > rows[j].OrderID
	})

	return rows
}

// ItemSummary renders items as "2x Rocher, 1x Sweet".
func ItemSummary(items []order.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Flavor))
	}
	return strings.Join(parts, ", ")
}

type Exporter interface {
	ContentType() string
	FileExtension() string
	Export(w io.Writer, rows []Row) error
}

// ExporterFor picks an exporter by format name. An empty format means XLSX.
func ExporterFor(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatXLSX:
		return XLSXExporter{}, nil
	case FormatCSV:
		return CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileName builds the attachment name for an export taken at t.
func FileName(e Exporter, t time.Time) string {
	return fmt.Sprintf("orders_%s.%s", t.Format("20060102_150405"), e.FileExtension())
}

func formatCreated(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
