package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	delimiter  = ';'
	timeLayout = "2006-01-02 15:04:05"
)

var (
	hoursHeader    = []string{"employee_id", "full_name", "total_hours"}
	requestsHeader = []string{"request_id", "request_number", "created_at", "items"}
)

func encodeHours(rows []HoursRow) ([]byte, error) {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.EmployeeID, 10),
			r.FullName,
			strconv.FormatInt(r.TotalHours, 10),
		})
	}
	return encode(hoursHeader, records)
}

func encodeRequests(rows []RequestRow, loc *time.Location) ([]byte, error) {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.ID, 10),
			r.RequestNumber,
			r.CreatedAt.In(loc).Format(timeLayout),
			joinItems(r.Items),
		})
	}
	return encode(requestsHeader, records)
}

// joinItems renders "name (qty), name (qty)".
func joinItems(items []ItemRow) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%d)", it.ProductName, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func encode(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter

	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
