package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
}

func TestSelectCurrent_ROCYearBeatsGregorian(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "114.ics", "2025.ics", "basic.ics")
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) // ROC 114

	got, err := SelectCurrent(dir, "taiwan_gov_calendar_no_weekend.ics", now)
	if err != nil {
		t.Fatalf("SelectCurrent() error = %v", err)
	}

	if filepath.Base(got) != "114.ics" {
		t.Errorf("SelectCurrent() = %q, want 114.ics", filepath.Base(got))
	}
}

func TestSelectCurrent_GregorianFallback(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "2025.ics", "basic.ics")
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := SelectCurrent(dir, "latest.ics", now)
	if err != nil {
		t.Fatalf("SelectCurrent() error = %v", err)
	}

	if filepath.Base(got) != "2025.ics" {
		t.Errorf("SelectCurrent() = %q, want 2025.ics", filepath.Base(got))
	}
}

func TestSelectCurrent_ModTimeFallback(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "old.ics", "new.ics")
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "old.ics"), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := SelectCurrent(dir, "latest.ics", now)
	if err != nil {
		t.Fatalf("SelectCurrent() error = %v", err)
	}

	if filepath.Base(got) != "new.ics" {
		t.Errorf("SelectCurrent() = %q, want new.ics", filepath.Base(got))
	}
}

func TestSelectCurrent_ExcludesLatestCopy(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "114.ics", "taiwan_gov_calendar_no_weekend.ics")
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := SelectCurrent(dir, "taiwan_gov_calendar_no_weekend.ics", now)
	if err != nil {
		t.Fatalf("SelectCurrent() error = %v", err)
	}

	if filepath.Base(got) != "114.ics" {
		t.Errorf("SelectCurrent() = %q, want 114.ics", filepath.Base(got))
	}
}

func TestSelectCurrent_NoCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	if _, err := SelectCurrent(dir, "latest.ics", time.Now()); err == nil {
		t.Error("SelectCurrent() with no candidates succeeded, want error")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.ics")
	dst := filepath.Join(dir, "dst.ics")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading dst: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("dst content = %q, want %q", data, "payload")
	}
}
