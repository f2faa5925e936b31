package schedule

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/transport/formkeys"
)

const hoursKey = "hours"

// ParseHours turns hours[<employee_id>][<day>] form fields into entries.
// Blank cells are skipped. Keys outside the hours grid are ignored.
func ParseHours(values url.Values) ([]Entry, error) {
	var entries []Entry
	for _, f := range formkeys.Collect(values, hoursKey, 2) {
		raw := strings.TrimSpace(f.Value)
		if raw == "" {
			continue
		}

		employeeID, err := strconv.ParseInt(f.Segments[0], 10, 64)
		if err != nil || employeeID <= 0 {
			return nil, internal.NewValidationError(fmt.Sprintf("Invalid employee in field hours[%s][%s]", f.Segments[0], f.Segments[1]), internal.ErrCodeValidationFailed)
		}
		day, err := strconv.Atoi(f.Segments[1])
		if err != nil {
			return nil, internal.NewValidationError(fmt.Sprintf("Invalid day in field hours[%s][%s]", f.Segments[0], f.Segments[1]), internal.ErrCodeInvalidDay)
		}
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 0 {
			return nil, internal.NewValidationError(fmt.Sprintf("Hours must be a whole non-negative number, got %q for day %d", raw, day), internal.ErrCodeInvalidHours)
		}

		entries = append(entries, Entry{EmployeeID: employeeID, Day: day, Hours: hours})
	}
	return entries, nil
}

// ParseScheduleID reads the schedule_id form field.
func ParseScheduleID(values url.Values) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(values.Get("schedule_id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("Invalid schedule id", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// ParsePeriod reads month and year query values. Missing values fall back
// to the given defaults; anything else must be a number.
func ParsePeriod(values url.Values, defaultMonth, defaultYear int) (int, int, error) {
	month, err := intOrDefault(values.Get("month"), defaultMonth)
	if err != nil {
		return 0, 0, internal.NewValidationError("Month must be a number", internal.ErrCodeInvalidPeriod)
	}
	year, err := intOrDefault(values.Get("year"), defaultYear)
	if err != nil {
		return 0, 0, internal.NewValidationError("Year must be a number", internal.ErrCodeInvalidPeriod)
	}
	return month, year, nil
}

func intOrDefault(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
