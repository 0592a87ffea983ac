package order

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

var csvHeader = []string{"رقم الطلب", "الاسم", "الهاتف", "العنوان", "الحالة", "التاريخ", "الملاحظات"}

// WriteCSV writes orders with a localized header row. Dates are rendered in loc.
func WriteCSV(w io.Writer, orders []Order, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: failed to write header: %w", err)
	}

	for _, o := range orders {
		record := []string{
			o.ID.String(),
			o.CustomerName,
			o.CustomerPhone,
			o.CustomerAddress,
			o.Status.Label(),
			o.CreatedAt.In(loc).Format(dateLayout),
			o.CustomerNotes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: failed to write order %s: %w", o.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
