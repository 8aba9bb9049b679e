package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// dateLayout is the calendar-date form accepted alongside RFC 3339.
const dateLayout = time.DateOnly

// CaseRepository stores new cases.
type CaseRepository interface {
	InsertCase(ctx context.Context, c *domain.CaseRecord) error
}

// SnapshotInvalidator drops the cached snapshot after a write.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}

// PriorityClassifier maps a marker onto priority categories.
type PriorityClassifier interface {
	Classify(marker string) domain.Priority
}

// CaseMetrics counts stored cases.
type CaseMetrics interface {
	CaseCreated()
}

// CaseEntryRequest is the body of a case-entry submission. Dates are
// YYYY-MM-DD or RFC 3339; blank dates are stored as NULL. SubUnitBreakdown maps
// a district to a comma-separated list of its sub-units.
type CaseEntryRequest struct {
	District             string            `json:"district"`
	Thana                string            `json:"thana"`
	IO                   string            `json:"io"`
	Act                  string            `json:"act"`
	Section              string            `json:"section"`
	PrimarySection       string            `json:"primary_section"`
	ChargeType           string            `json:"charge_type"`
	CrimeNumber          string            `json:"crime_number"`
	IncidentDate         string            `json:"incident_date"`
	FIRDate              string            `json:"fir_date"`
	DateOfArrest         string            `json:"date_of_arrest"`
	ChargeSheetReadyDate string            `json:"charge_sheet_ready_date"`
	ChargeSheetFileDate  string            `json:"charge_sheet_file_date"`
	TotalAccused         int               `json:"total_accused"`
	TotalArrested        int               `json:"total_arrested"`
	Stage                string            `json:"stage"`
	Marker               string            `json:"marker"`
	SubUnitBreakdown     map[string]string `json:"sub_unit_breakdown"`
}

// CaseService validates and stores case entries.
type CaseService struct {
	repo        CaseRepository
	invalidator SnapshotInvalidator
	classifier  PriorityClassifier
	metrics     CaseMetrics
	logger      infralogger.Logger
}

// NewCaseService creates a new case service. classifier and metrics may be nil.
func NewCaseService(
	repo CaseRepository,
	invalidator SnapshotInvalidator,
	classifier PriorityClassifier,
	metrics CaseMetrics,
	logger infralogger.Logger,
) *CaseService {
	return &CaseService{
		repo:        repo,
		invalidator: invalidator,
		classifier:  classifier,
		metrics:     metrics,
		logger:      logger,
	}
}

// Create validates req, stores it and invalidates the snapshot so the next
// report sees the new case. Validation failures wrap ErrValidation.
func (s *CaseService) Create(ctx context.Context, req *CaseEntryRequest) (*domain.CaseRecord, error) {
	record, buildErr := buildRecord(req)
	if buildErr != nil {
		return nil, buildErr
	}

	if s.classifier != nil {
		record.Priority = s.classifier.Classify(record.Marker)
	}

	if insertErr := s.repo.InsertCase(ctx, record); insertErr != nil {
		return nil, fmt.Errorf("insert case: %w", insertErr)
	}

	if s.metrics != nil {
		s.metrics.CaseCreated()
	}

	// The row is committed; a stale snapshot expires on its own.
	if invalidateErr := s.invalidator.Invalidate(ctx); invalidateErr != nil {
		s.logger.Warn("Failed to invalidate snapshot after insert",
			infralogger.Int64("case_id", record.ID),
			infralogger.Error(invalidateErr),
		)
	}

	s.logger.Info("Case created",
		infralogger.Int64("case_id", record.ID),
		infralogger.String("district", record.Jurisdiction),
		infralogger.String("crime_number", record.CaseNumber),
	)

	return record, nil
}

func buildRecord(req *CaseEntryRequest) (*domain.CaseRecord, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrValidation)
	}

	required := []struct{ field, value string }{
		{"district", req.District},
		{"thana", req.Thana},
		{"crime_number", req.CrimeNumber},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrValidation, r.field)
		}
	}

	if req.TotalAccused < 0 || req.TotalArrested < 0 {
		return nil, fmt.Errorf("%w: counts must not be negative", ErrValidation)
	}
	if req.TotalArrested > req.TotalAccused {
		return nil, fmt.Errorf("%w: total_arrested exceeds total_accused", ErrValidation)
	}

	record := &domain.CaseRecord{
		Jurisdiction:         strings.TrimSpace(req.District),
		SubJurisdiction:      strings.TrimSpace(req.Thana),
		InvestigatingOfficer: strings.TrimSpace(req.IO),
		Act:                  strings.TrimSpace(req.Act),
		Section:              strings.TrimSpace(req.Section),
		PrimarySection:       strings.TrimSpace(req.PrimarySection),
		ChargeType:           strings.TrimSpace(req.ChargeType),
		CaseNumber:           strings.TrimSpace(req.CrimeNumber),
		TotalAccused:         req.TotalAccused,
		TotalArrested:        req.TotalArrested,
		TotalRemaining:       req.TotalAccused - req.TotalArrested,
		Stage:                domain.Stage(strings.TrimSpace(req.Stage)),
		Marker:               strings.TrimSpace(req.Marker),
		SubUnitBreakdown:     breakdown(req.SubUnitBreakdown),
	}

	dates := []struct {
		field string
		raw   string
		dst   **time.Time
	}{
		{"incident_date", req.IncidentDate, &record.IncidentDate},
		{"fir_date", req.FIRDate, &record.FIRDate},
		{"date_of_arrest", req.DateOfArrest, &record.ArrestDate},
		{"charge_sheet_ready_date", req.ChargeSheetReadyDate, &record.ChargeSheetReadyDate},
		{"charge_sheet_file_date", req.ChargeSheetFileDate, &record.ChargeSheetFiledDate},
	}
	for _, d := range dates {
		parsed, parseErr := ParseDate(d.raw)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrValidation, d.field, parseErr)
		}
		*d.dst = parsed
	}

	return record, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. A blank value yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil //nolint:nilnil // a blank date is a valid absent value
	}

	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}

	t, parseErr := time.Parse(time.RFC3339, raw)
	if parseErr != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	t = t.UTC()

	return &t, nil
}

func breakdown(raw map[string]string) domain.SubUnitBreakdown {
	if len(raw) == 0 {
		return nil
	}

	values := make(map[string]any, len(raw))
	for jurisdiction, list := range raw {
		values[strings.TrimSpace(jurisdiction)] = list
	}

	b := domain.BreakdownFromRaw(values)
	if len(b) == 0 {
		return nil
	}
	return b
}
