package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type CSVExporter struct{}

func (CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVExporter) FileExtension() string { return FormatCSV }

func (CSVExporter) Export(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.OrderID, 10),
			formatCreated(r.CreatedAt),
			r.Day,
			r.Customer,
			r.Address,
			r.Total.StringFixed(2),
			r.Status,
			r.Items,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("report: failed to write csv row for order %d: %w", r.OrderID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
