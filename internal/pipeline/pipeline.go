package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/twgov-calendar/internal/config"
	"github.com/username/twgov-calendar/internal/dataset"
	"github.com/username/twgov-calendar/internal/ics"
	"github.com/username/twgov-calendar/internal/schema"
	"github.com/username/twgov-calendar/internal/textenc"
	"github.com/username/twgov-calendar/pkg/dateutil"
)

// Source provides the dataset catalog and resource payloads.
type Source interface {
	Resources(ctx context.Context) ([]dataset.Resource, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Summary reports what one run produced.
type Summary struct {
	Resources        int
	Processed        int
	SkippedResources int
	Events           int
	SkippedRows      int
	LatestPath       string
}

// Runner drives the whole pipeline: resolve, then per resource fetch,
// decode, normalize, filter and emit; finally select the current-year file.
type Runner struct {
	cfg      *config.Config
	source   Source
	logger   *zap.Logger
	mappings []schema.FieldMapping
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg *config.Config, source Source, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		source:   source,
		logger:   logger,
		mappings: schema.DefaultMappings(),
	}
}

// Run executes the pipeline once. Catalog or download failures abort the
// run; everything else recovers locally (skipped rows or resources) and is
// only logged.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	resources, err := r.source.Resources(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Starting calendar generation",
		zap.Int("resources", len(resources)),
		zap.String("output_dir", r.cfg.Output.Dir))

	summary := &Summary{Resources: len(resources)}

	for _, res := range resources {
		raw, err := r.source.Download(ctx, res.URL)
		if err != nil {
			return summary, err
		}
		if err := r.processResource(res, raw, summary); err != nil {
			summary.SkippedResources++
			r.logger.Warn("Resource skipped",
				zap.String("name", res.Name),
				zap.String("url", res.URL),
				zap.Error(err))
		}
	}

	r.selectLatest(summary)

	r.logger.Info("Calendar generation finished",
		zap.Int("resources", summary.Resources),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped_resources", summary.SkippedResources),
		zap.Int("events", summary.Events),
		zap.Int("skipped_rows", summary.SkippedRows))

	return summary, nil
}

// processResource transforms one downloaded CSV into one calendar file.
func (r *Runner) processResource(res dataset.Resource, raw []byte, summary *Summary) error {
	decoded := textenc.Decode(raw)
	if decoded.Lossy {
		r.logger.Warn("Resource decoded lossily",
			zap.String("name", res.Name))
	}

	reader := csv.NewReader(strings.NewReader(decoded.Text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parsing CSV: %w", err)
	}

	table := schema.Normalize(records, r.mappings)
	if table.Shape == schema.ShapeUnclassifiable {
		return fmt.Errorf("no category or remark column present")
	}

	var events []ics.Event
	hasCategory := table.Shape == schema.ShapeHasCategory
	for _, row := range table.FilterRestDays() {
		ev, ok := ics.BuildEvent(row, hasCategory)
		if !ok {
			summary.SkippedRows++
			continue
		}
		events = append(events, ev)
	}

	cal := ics.Calendar{
		Name:        r.cfg.Calendar.Name,
		Description: r.cfg.Calendar.Description,
		Timezone:    r.cfg.Calendar.Timezone,
	}
	path := filepath.Join(r.cfg.Output.Dir, SanitizeFileName(res.Name)+".ics")
	if err := cal.WriteFile(path, events, time.Now()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	summary.Processed++
	summary.Events += len(events)
	r.logger.Info("Calendar written",
		zap.String("path", path),
		zap.String("encoding", decoded.Encoding),
		zap.Int("events", len(events)))

	return nil
}

// selectLatest copies the file that best represents the current year to
// the fixed top-level path. Failures here are diagnostics only; the
// per-resource outputs are already on disk.
func (r *Runner) selectLatest(summary *Summary) {
	src, err := SelectCurrent(r.cfg.Output.Dir, filepath.Base(r.cfg.Output.LatestFile), dateutil.Today())
	if err != nil {
		r.logger.Warn("No current-year calendar selected", zap.Error(err))
		return
	}

	if err := CopyFile(src, r.cfg.Output.LatestFile); err != nil {
		r.logger.Warn("Failed to copy current-year calendar",
			zap.String("src", src),
			zap.String("dst", r.cfg.Output.LatestFile),
			zap.Error(err))
		return
	}

	summary.LatestPath = r.cfg.Output.LatestFile
	r.logger.Info("Current-year calendar selected",
		zap.String("src", src),
		zap.String("dst", r.cfg.Output.LatestFile))
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeFileName derives a safe output name from a resource description:
// the .csv suffix goes, filesystem-unsafe characters become underscores,
// and an empty result falls back to a fixed name.
func SanitizeFileName(name string) string {
	if n := len(name) - len(".csv"); n >= 0 && strings.EqualFold(name[n:], ".csv") {
		name = name[:n]
	}
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "calendar"
	}
	return name
}
