package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/snapshot"
)

// Report names used as the metrics label.
const (
	ReportJurisdictions = "jurisdictions"
	ReportSubUnits      = "sub_units"
	ReportStages        = "stages"
	ReportPeriods       = "periods"
	ReportTimeSeries    = "timeseries"
	ReportWeekly        = "weekly"
	ReportStatutes      = "statutes"
)

const monthsPerYear = 12

// ErrValidation marks a request rejected before any work was done.
var ErrValidation = errors.New("validation failed")

// SnapshotProvider hands out the current snapshot.
type SnapshotProvider interface {
	Current(ctx context.Context) (*snapshot.Snapshot, error)
}

// MetricsRecorder records report timings.
type MetricsRecorder interface {
	ObserveReport(report string, took time.Duration)
}

// Result wraps a report payload with the time its data was fetched. When the
// snapshot could not be loaded, Data is computed from an empty snapshot and
// FetchError says why.
type Result[T any] struct {
	Data       T         `json:"data"`
	FetchedAt  time.Time `json:"fetched_at"`
	FetchError string    `json:"fetch_error,omitempty"`
}

// SubChapterResult answers whether a chapter is split into sub-chapters.
type SubChapterResult struct {
	HasSubChapters bool     `json:"has_sub_chapters"`
	SubChapters    []string `json:"sub_chapters"`
}

// ReportService runs the aggregators over the current snapshot.
type ReportService struct {
	snapshots SnapshotProvider
	metrics   MetricsRecorder
	logger    infralogger.Logger
}

// NewReportService creates a new report service. metrics may be nil.
func NewReportService(snapshots SnapshotProvider, metrics MetricsRecorder, logger infralogger.Logger) *ReportService {
	return &ReportService{
		snapshots: snapshots,
		metrics:   metrics,
		logger:    logger,
	}
}

// run loads the snapshot and applies fn to it, degrading to an empty snapshot
// when loading fails.
func run[T any](ctx context.Context, s *ReportService, name string, fn func(*snapshot.Snapshot) T) Result[T] {
	start := time.Now()

	var result Result[T]
	snap, loadErr := s.snapshots.Current(ctx)
	if loadErr != nil || snap == nil {
		if loadErr == nil {
			loadErr = errors.New("no snapshot available")
		}
		s.logger.Warn("Serving report without data",
			infralogger.String("report", name),
			infralogger.Error(loadErr),
		)
		snap = snapshot.Empty()
		result.FetchError = loadErr.Error()
	}

	result.Data = fn(snap)
	result.FetchedAt = snap.FetchedAt

	took := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveReport(name, took)
	}
	s.logger.Debug("Report computed",
		infralogger.String("report", name),
		infralogger.Int("cases", len(snap.Cases)),
		infralogger.Duration("took", took),
	)

	return result
}

// Jurisdictions returns the reference jurisdiction list.
func (s *ReportService) Jurisdictions(ctx context.Context) Result[[]string] {
	return run(ctx, s, ReportJurisdictions, func(snap *snapshot.Snapshot) []string {
		return snap.Jurisdictions
	})
}

// Vocabulary returns the stage vocabulary in reference order.
func (s *ReportService) Vocabulary(ctx context.Context) Result[[]domain.Stage] {
	return run(ctx, s, ReportStages, func(snap *snapshot.Snapshot) []domain.Stage {
		return snap.Stages
	})
}

// JurisdictionReport counts cases per reference jurisdiction.
func (s *ReportService) JurisdictionReport(ctx context.Context) Result[report.JurisdictionReport] {
	return run(ctx, s, ReportJurisdictions, func(snap *snapshot.Snapshot) report.JurisdictionReport {
		return report.ByJurisdiction(snap.Cases, snap.Jurisdictions)
	})
}

// SubUnits counts cases in stage per sub-unit, grouped by jurisdiction. An
// empty stage counts every case.
func (s *ReportService) SubUnits(ctx context.Context, stage domain.Stage) Result[[]report.SubUnitReport] {
	return run(ctx, s, ReportSubUnits, func(snap *snapshot.Snapshot) []report.SubUnitReport {
		return report.BySubUnit(snap.Cases, snap.Directory, stage)
	})
}

// Stages builds the stage cross-tab grouped by district or police station.
func (s *ReportService) Stages(ctx context.Context, group report.GroupBy) Result[report.StageReport] {
	return run(ctx, s, ReportStages, func(snap *snapshot.Snapshot) report.StageReport {
		return report.StageTable(snap.Cases, snap.Stages, group)
	})
}

// Periods compares pending work across the months of a window.
func (s *ReportService) Periods(ctx context.Context, q report.PeriodQuery) (Result[report.PeriodReport], error) {
	if validateErr := ValidatePeriodQuery(&q); validateErr != nil {
		return Result[report.PeriodReport]{}, validateErr
	}

	return run(ctx, s, ReportPeriods, func(snap *snapshot.Snapshot) report.PeriodReport {
		return report.ComparePeriods(snap.Cases, q)
	}), nil
}

// ValidatePeriodQuery checks the reference month and fills in the default window.
func ValidatePeriodQuery(q *report.PeriodQuery) error {
	if q.Window == 0 {
		q.Window = report.DefaultWindow
	}
	if !report.ValidWindow(q.Window) {
		return fmt.Errorf("%w: window must be %d, %d or %d months", ErrValidation,
			report.WindowQuarter, report.WindowHalfYear, report.WindowYear)
	}
	if q.Month < 0 || q.Month >= monthsPerYear {
		return fmt.Errorf("%w: month must be between 0 and 11", ErrValidation)
	}
	if q.Year <= 0 {
		return fmt.Errorf("%w: year is required", ErrValidation)
	}
	return nil
}

// TimeSeries counts matching cases per incident month.
func (s *ReportService) TimeSeries(ctx context.Context, filter report.SeriesFilter) Result[report.Series] {
	return run(ctx, s, ReportTimeSeries, func(snap *snapshot.Snapshot) report.Series {
		return report.MonthlySeries(snap.Cases, filter)
	})
}

// Weekly counts cases per week of month across every known sub-unit.
func (s *ReportService) Weekly(ctx context.Context) Result[report.WeeklyReport] {
	return run(ctx, s, ReportWeekly, func(snap *snapshot.Snapshot) report.WeeklyReport {
		return report.WeeklyBreakdown(snap.Cases, snap.SubUnits())
	})
}

// Chapters lists the distinct statute chapters.
func (s *ReportService) Chapters(ctx context.Context) Result[[]string] {
	return run(ctx, s, ReportStatutes, func(snap *snapshot.Snapshot) []string {
		return report.Chapters(snap.Statutes)
	})
}

// SubChapters lists the sub-chapters of chapter.
func (s *ReportService) SubChapters(ctx context.Context, chapter string) Result[SubChapterResult] {
	return run(ctx, s, ReportStatutes, func(snap *snapshot.Snapshot) SubChapterResult {
		return SubChapterResult{
			HasSubChapters: report.HasSubChapters(snap.Statutes, chapter),
			SubChapters:    report.SubChapters(snap.Statutes, chapter),
		}
	})
}

// Sections lists the selectable sections of a chapter and sub-chapter.
func (s *ReportService) Sections(ctx context.Context, chapter, subChapter string) Result[[]report.SectionOption] {
	return run(ctx, s, ReportStatutes, func(snap *snapshot.Snapshot) []report.SectionOption {
		return report.SectionsFor(snap.Statutes, chapter, subChapter)
	})
}

// LookupSection finds a statute entry by section number. A miss yields a
// blank entry.
func (s *ReportService) LookupSection(ctx context.Context, section string) Result[domain.StatuteEntry] {
	return run(ctx, s, ReportStatutes, func(snap *snapshot.Snapshot) domain.StatuteEntry {
		return report.LookupSection(snap.Statutes, section)
	})
}
