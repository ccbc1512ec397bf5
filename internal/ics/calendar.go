package ics

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DefaultProdID identifies this generator in emitted documents.
const DefaultProdID = "-//twgov-calendar//Taiwan Government Office Calendar//ZH"

const (
	dateLayout  = "20060102"
	stampLayout = "20060102T150405Z"
)

// Calendar holds the document-level properties of one emitted iCalendar
// file. Name, Description and Timezone are fixed configuration values, not
// user-supplied row text, so they are written unescaped.
type Calendar struct {
	ProdID      string
	Name        string
	Description string
	Timezone    string
}

// Encode writes a complete VCALENDAR document. now is taken once and its
// UTC form stamps DTSTAMP, CREATED and LAST-MODIFIED of every event, so a
// single run produces internally consistent creation metadata.
func (c Calendar) Encode(w io.Writer, events []Event, now time.Time) error {
	stamp := now.UTC().Format(stampLayout)

	prodID := c.ProdID
	if prodID == "" {
		prodID = DefaultProdID
	}

	b := bufio.NewWriter(w)
	lines := []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + prodID,
		"VERSION:2.0",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + c.Name,
		"X-WR-TIMEZONE:" + c.Timezone,
		"X-WR-CALDESC:" + c.Description,
	}
	for _, l := range lines {
		writeLine(b, l)
	}

	for _, e := range events {
		writeLine(b, "BEGIN:VEVENT")
		writeLine(b, "DTSTART;VALUE=DATE:"+e.Start.Format(dateLayout))
		writeLine(b, "DTEND;VALUE=DATE:"+e.End.Format(dateLayout))
		writeLine(b, "DTSTAMP:"+stamp)
		writeLine(b, "UID:"+e.UID)
		writeLine(b, "CREATED:"+stamp)
		writeLine(b, "LAST-MODIFIED:"+stamp)
		writeLine(b, "SEQUENCE:0")
		writeLine(b, "STATUS:CONFIRMED")
		writeLine(b, "TRANSP:TRANSPARENT")
		writeLine(b, "SUMMARY:"+EscapeText(e.Summary))
		if e.Description != "" {
			writeLine(b, "DESCRIPTION:"+EscapeText(e.Description))
		}
		writeLine(b, "END:VEVENT")
	}

	writeLine(b, "END:VCALENDAR")
	return b.Flush()
}

// WriteFile encodes the document to path, creating the parent directory if
// needed and overwriting any existing file.
func (c Calendar) WriteFile(path string, events []Event, now time.Time) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := c.Encode(f, events, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeLine emits one content line with the CRLF terminator the format
// requires. Write errors surface on the final Flush.
func writeLine(b *bufio.Writer, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}
