package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/username/twgov-calendar/pkg/dateutil"
)

// SelectCurrent picks the calendar file in dir most likely to represent the
// current year. Government filenames usually carry the ROC year, so that
// match wins over a Gregorian-year match; with neither, the most recently
// modified file is taken. exclude names the latest-copy file itself, which
// must never be its own candidate.
func SelectCurrent(dir, exclude string, now time.Time) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading output dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".ics") || name == exclude {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no calendar files in %s", dir)
	}

	rocYear := strconv.Itoa(dateutil.ROCYear(now))
	gregorianYear := strconv.Itoa(now.Year())

	// ReadDir returns entries sorted by filename, so first match is
	// deterministic across platforms.
	for _, name := range names {
		if strings.Contains(name, rocYear) {
			return filepath.Join(dir, name), nil
		}
	}
	for _, name := range names {
		if strings.Contains(name, gregorianYear) {
			return filepath.Join(dir, name), nil
		}
	}

	newest := names[0]
	var newestMod time.Time
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if info.ModTime().After(newestMod) {
			newest = name
			newestMod = info.ModTime()
		}
	}
	return filepath.Join(dir, newest), nil
}

// CopyFile copies src to dst, overwriting dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
