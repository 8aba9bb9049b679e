package service

import (
	"context"
	"errors"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/database"
	"github.com/lib/pq"
)

// Postgres error codes for references to missing relations and columns.
const (
	pqUndefinedTable  pq.ErrorCode = "42P01"
	pqUndefinedColumn pq.ErrorCode = "42703"
)

// ErrNotFound is returned when a table, column or page has no rows to show.
var ErrNotFound = errors.New("not found")

// TableRepository is the read access the table browser needs.
type TableRepository interface {
	TablePage(ctx context.Context, table string, page int) (*database.TablePage, error)
	TableRows(ctx context.Context, table string) ([]map[string]any, error)
	ColumnValues(ctx context.Context, table, column string) ([]string, error)
}

// Pagination describes where a page sits in its table.
type Pagination struct {
	Page           int `json:"page"`
	TotalPages     int `json:"total_pages"`
	TotalRecords   int `json:"total_records"`
	RecordsPerPage int `json:"records_per_page"`
}

// TablePageResult is one page of rows with its column names.
type TablePageResult struct {
	Fields     []string         `json:"fields"`
	Data       []map[string]any `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// TableService browses the allow-listed tables.
type TableService struct {
	repo   TableRepository
	logger infralogger.Logger
}

// NewTableService creates a new table service.
func NewTableService(repo TableRepository, logger infralogger.Logger) *TableService {
	return &TableService{repo: repo, logger: logger}
}

// Page returns one page of table. Pages below 1 mean the first page.
func (s *TableService) Page(ctx context.Context, table string, page int) (*TablePageResult, error) {
	result, pageErr := s.repo.TablePage(ctx, table, page)
	if pageErr != nil {
		return nil, s.translate("page", table, pageErr)
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows in %s on page %d", ErrNotFound, table, result.Page)
	}

	return &TablePageResult{
		Fields: result.Fields,
		Data:   result.Rows,
		Pagination: Pagination{
			Page:           result.Page,
			TotalPages:     result.TotalPages,
			TotalRecords:   result.TotalRecords,
			RecordsPerPage: database.RecordsPerPage,
		},
	}, nil
}

// All returns every row of table.
func (s *TableService) All(ctx context.Context, table string) ([]map[string]any, error) {
	rows, rowsErr := s.repo.TableRows(ctx, table)
	if rowsErr != nil {
		return nil, s.translate("rows", table, rowsErr)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows in %s", ErrNotFound, table)
	}
	return rows, nil
}

// Column returns the non-null values of one column.
func (s *TableService) Column(ctx context.Context, table, column string) ([]string, error) {
	values, valuesErr := s.repo.ColumnValues(ctx, table, column)
	if valuesErr != nil {
		return nil, s.translate("column", table+"."+column, valuesErr)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values in %s.%s", ErrNotFound, table, column)
	}
	return values, nil
}

// translate maps repository failures onto the service sentinels.
func (s *TableService) translate(op, target string, err error) error {
	switch {
	case errors.Is(err, database.ErrInvalidIdentifier):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, database.ErrTableNotAllowed):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code == pqUndefinedTable || pqErr.Code == pqUndefinedColumn) {
		return fmt.Errorf("%w: %s", ErrNotFound, pqErr.Message)
	}

	s.logger.Error("Table browser query failed",
		infralogger.String("op", op),
		infralogger.String("target", target),
		infralogger.Error(err),
	)
	return fmt.Errorf("%s %s: %w", op, target, err)
}
