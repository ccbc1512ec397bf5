package schema

import "strings"

// RestDayLabel is the category value for an ordinary weekend rest day,
// the only kind of row the filter removes.
const RestDayLabel = "例假日"

// Field identifies one canonical column of a source table.
type Field string

const (
	FieldDate     Field = "date"
	FieldCategory Field = "category"
	FieldRemark   Field = "remark"
)

// FieldMapping maps a canonical field to the column names that government
// sources have been observed to use for it. First match wins.
type FieldMapping struct {
	Field   Field
	Aliases []string
}

// DefaultMappings returns the alias table for the data.gov.tw office
// calendar datasets. New naming variants extend the alias lists here
// without touching the normalization logic.
func DefaultMappings() []FieldMapping {
	return []FieldMapping{
		{Field: FieldDate, Aliases: []string{"西元日期", "Date", "日期"}},
		{Field: FieldCategory, Aliases: []string{"假日類別", "類別", "假日类别"}},
		{Field: FieldRemark, Aliases: []string{"備註", "备注", "Remark", "Note"}},
	}
}

// Shape describes which canonical columns a source table actually carries,
// computed once per table so that filtering and labeling dispatch on the
// same fact.
type Shape int

const (
	// ShapeUnclassifiable means neither category nor remark is present;
	// the resource cannot be filtered and is skipped.
	ShapeUnclassifiable Shape = iota
	// ShapeHasCategory means the authoritative category column is present.
	ShapeHasCategory
	// ShapeRemarksOnly means only the remark column is present.
	ShapeRemarksOnly
)

// Row is one parsed calendar record with canonical fields.
type Row struct {
	Date     string // raw date value, possibly "20240101.0"
	Category string
	Remark   string
}

// Table is one source resource after schema normalization.
type Table struct {
	Shape Shape
	Rows  []Row
}

// Normalize resolves inconsistent column names into canonical fields.
// records is raw CSV output with the header in the first row. Empty input
// yields an empty unclassifiable table, not an error.
func Normalize(records [][]string, mappings []FieldMapping) *Table {
	if len(records) == 0 {
		return &Table{Shape: ShapeUnclassifiable}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = canonicalHeader(h)
	}

	idx := map[Field]int{FieldDate: -1, FieldCategory: -1, FieldRemark: -1}
	for _, m := range mappings {
		for _, alias := range m.Aliases {
			if i := indexOf(headers, alias); i >= 0 {
				idx[m.Field] = i
				break
			}
		}
	}

	t := &Table{Shape: shapeFor(idx)}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, Row{
			Date:     cell(rec, idx[FieldDate]),
			Category: cell(rec, idx[FieldCategory]),
			Remark:   cell(rec, idx[FieldRemark]),
		})
	}
	return t
}

// FilterRestDays returns the rows worth emitting as calendar events.
//
// With a category column, only rows labeled exactly as ordinary rest days
// are dropped; holidays, adjusted workdays and everything else survive.
// Without one, rows with a non-empty remark are assumed meaningful and the
// rest dropped. An unclassifiable table yields nil; the caller logs it and
// moves on to the next resource.
func (t *Table) FilterRestDays() []Row {
	var kept []Row
	switch t.Shape {
	case ShapeHasCategory:
		for _, r := range t.Rows {
			if r.Category != RestDayLabel {
				kept = append(kept, r)
			}
		}
	case ShapeRemarksOnly:
		for _, r := range t.Rows {
			if r.Remark != "" {
				kept = append(kept, r)
			}
		}
	}
	return kept
}

// canonicalHeader strips the encoding noise seen in government CSV headers:
// a UTF-8 BOM artifact, surrounding whitespace, and full-width spaces.
func canonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	h = strings.ReplaceAll(h, "　", " ")
	return strings.TrimSpace(h)
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func shapeFor(idx map[Field]int) Shape {
	switch {
	case idx[FieldCategory] >= 0:
		return ShapeHasCategory
	case idx[FieldRemark] >= 0:
		return ShapeRemarksOnly
	default:
		return ShapeUnclassifiable
	}
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
