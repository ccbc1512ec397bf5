package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/twgov-calendar/internal/schema"
	"github.com/username/twgov-calendar/pkg/dateutil"
)

const (
	// uidPrefix keeps event identifiers deterministic across regenerations
	// of the same date.
	uidPrefix = "gov-calendar-"

	// makeupMarker flags a make-up workday notice in the remark field.
	makeupMarker = "補班"
	makeupTitle  = "補班"

	// genericTitle is the summary for rows with neither category nor remark.
	genericTitle = "行事曆"

	categoryLinePrefix = "類型："
)

// Event is one all-day calendar event. End is exclusive (start + 1 day).
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
}

// CoerceDate normalizes a raw date cell to an exact 8-digit YYYYMMDD
// string. CSV parsers hand back numeric cells like "20240101.0"; those go
// through a float-safe integer conversion and zero padding. Values that do
// not end up as a valid calendar date are rejected.
func CoerceDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		v = fmt.Sprintf("%08d", int64(f))
	}
	if _, err := dateutil.ParseYYYYMMDD(v); err != nil {
		return "", false
	}
	return v, true
}

// BuildEvent turns one filtered row into an event. hasCategory reports
// whether the source table carried a category column at all; it gates the
// "類型：" description line so remark-only sources do not repeat the remark.
// Returns false for rows whose date cannot be normalized; such rows are
// skipped without failing the resource.
func BuildEvent(row schema.Row, hasCategory bool) (Event, bool) {
	dateStr, ok := CoerceDate(row.Date)
	if !ok {
		return Event{}, false
	}
	day, err := dateutil.ParseYYYYMMDD(dateStr)
	if err != nil {
		return Event{}, false
	}

	title := row.Category
	if title == "" {
		title = row.Remark
	}
	if title == "" {
		title = genericTitle
	}
	// The make-up workday marker overrides even a category-derived title.
	if strings.Contains(row.Remark, makeupMarker) {
		title = makeupTitle
	}

	var lines []string
	if hasCategory && row.Category != "" {
		lines = append(lines, categoryLinePrefix+row.Category)
	}
	if row.Remark != "" {
		lines = append(lines, row.Remark)
	}

	return Event{
		UID:         uidPrefix + dateStr,
		Start:       day,
		End:         dateutil.NextDay(day),
		Summary:     title,
		Description: strings.Join(lines, "\n"),
	}, true
}
