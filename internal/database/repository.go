package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// RecordsPerPage is the table browser page size.
const RecordsPerPage = 100

const caseColumns = `id, district, thana, io, act, section, primary_section, charge_type,
	crime_number, incident_date, fir_date, date_of_arrest, charge_sheet_ready_date,
	charge_sheet_file_date, total_accused, total_arrested, total_left, stage, marker,
	sub_unit_breakdown`

// Repository reads and writes case-tracker tables. Table names are checked
// against an allow-list before they reach SQL.
type Repository struct {
	db         *sqlx.DB
	casesTable string
	allowed    []string
}

// NewRepository returns a Repository over db. casesTable must be in allowed.
func NewRepository(db *sqlx.DB, casesTable string, allowed []string) *Repository {
	return &Repository{db: db, casesTable: casesTable, allowed: allowed}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type caseRow struct {
	ID                   int64          `db:"id"`
	District             sql.NullString `db:"district"`
	Thana                sql.NullString `db:"thana"`
	IO                   sql.NullString `db:"io"`
	Act                  sql.NullString `db:"act"`
	Section              sql.NullString `db:"section"`
	PrimarySection       sql.NullString `db:"primary_section"`
	ChargeType           sql.NullString `db:"charge_type"`
	CrimeNumber          sql.NullString `db:"crime_number"`
	IncidentDate         sql.NullTime   `db:"incident_date"`
	FIRDate              sql.NullTime   `db:"fir_date"`
	ArrestDate           sql.NullTime   `db:"date_of_arrest"`
	ChargeSheetReadyDate sql.NullTime   `db:"charge_sheet_ready_date"`
	ChargeSheetFiledDate sql.NullTime   `db:"charge_sheet_file_date"`
	TotalAccused         sql.NullInt64  `db:"total_accused"`
	TotalArrested        sql.NullInt64  `db:"total_arrested"`
	TotalLeft            sql.NullInt64  `db:"total_left"`
	Stage                sql.NullString `db:"stage"`
	Marker               sql.NullString `db:"marker"`
	SubUnitBreakdown     []byte         `db:"sub_unit_breakdown"`
}

func (row caseRow) record() domain.CaseRecord {
	return domain.CaseRecord{
		ID:                   row.ID,
		Jurisdiction:         row.District.String,
		SubJurisdiction:      row.Thana.String,
		InvestigatingOfficer: row.IO.String,
		Act:                  row.Act.String,
		Section:              row.Section.String,
		PrimarySection:       row.PrimarySection.String,
		ChargeType:           row.ChargeType.String,
		CaseNumber:           row.CrimeNumber.String,
		IncidentDate:         timePtr(row.IncidentDate),
		FIRDate:              timePtr(row.FIRDate),
		ArrestDate:           timePtr(row.ArrestDate),
		ChargeSheetReadyDate: timePtr(row.ChargeSheetReadyDate),
		ChargeSheetFiledDate: timePtr(row.ChargeSheetFiledDate),
		TotalAccused:         int(row.TotalAccused.Int64),
		TotalArrested:        int(row.TotalArrested.Int64),
		TotalRemaining:       int(row.TotalLeft.Int64),
		Stage:                domain.Stage(row.Stage.String),
		Marker:               row.Marker.String,
		SubUnitBreakdown:     parseBreakdown(row.SubUnitBreakdown),
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// parseBreakdown decodes the JSONB sub-unit column. Malformed JSON yields no
// sub-units rather than failing the whole load.
func parseBreakdown(raw []byte) domain.SubUnitBreakdown {
	if len(raw) == 0 {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return domain.BreakdownFromRaw(values)
}

// ListCases returns every case ordered by id. Priority is left unset.
func (r *Repository) ListCases(ctx context.Context) ([]domain.CaseRecord, error) {
	table, tableErr := quoteTable(r.casesTable, r.allowed)
	if tableErr != nil {
		return nil, tableErr
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", caseColumns, table) //nolint:gosec // table is validated and quoted

	var rows []caseRow
	if selectErr := r.db.SelectContext(ctx, &rows, query); selectErr != nil {
		return nil, fmt.Errorf("list cases: %w", selectErr)
	}

	cases := make([]domain.CaseRecord, len(rows))
	for i, row := range rows {
		cases[i] = row.record()
	}
	return cases, nil
}

// ListStatutes returns the statute table for act, which doubles as its table name.
func (r *Repository) ListStatutes(ctx context.Context, act string) ([]domain.StatuteEntry, error) {
	table, tableErr := quoteTable(act, r.allowed)
	if tableErr != nil {
		return nil, tableErr
	}

	//nolint:gosec // table is validated and quoted
	query := fmt.Sprintf(`
		SELECT
			COALESCE(chapter_name, '') AS chapter_name,
			COALESCE(chapter_description, '') AS chapter_description,
			COALESCE(sub_chapter, '') AS sub_chapter,
			COALESCE(section_number::text, '') AS section_number,
			COALESCE(section_content, '') AS section_content
		FROM %s
		ORDER BY id
	`, table)

	var entries []domain.StatuteEntry
	if selectErr := r.db.SelectContext(ctx, &entries, query); selectErr != nil {
		return nil, fmt.Errorf("list statutes %s: %w", act, selectErr)
	}
	return entries, nil
}

// ColumnValues returns the non-null values of column in id order, as text.
func (r *Repository) ColumnValues(ctx context.Context, table, column string) ([]string, error) {
	quotedTable, tableErr := quoteTable(table, r.allowed)
	if tableErr != nil {
		return nil, tableErr
	}
	quotedColumn, columnErr := quoteIdentifier(column)
	if columnErr != nil {
		return nil, columnErr
	}

	//nolint:gosec // identifiers are validated and quoted
	query := fmt.Sprintf("SELECT %[1]s::text FROM %[2]s WHERE %[1]s IS NOT NULL ORDER BY id", quotedColumn, quotedTable)

	values := []string{}
	if selectErr := r.db.SelectContext(ctx, &values, query); selectErr != nil {
		return nil, fmt.Errorf("column values %s.%s: %w", table, column, selectErr)
	}
	return values, nil
}

type subUnitRow struct {
	District string `db:"district"`
	Thana    string `db:"thana"`
}

// ListSubUnits reads (district, thana) pairs from table and groups them by
// district. Districts and their stations keep the order they were first
// inserted; blank names are skipped.
func (r *Repository) ListSubUnits(ctx context.Context, table string) ([]domain.JurisdictionUnits, error) {
	quoted, tableErr := quoteTable(table, r.allowed)
	if tableErr != nil {
		return nil, tableErr
	}

	//nolint:gosec // table is validated and quoted
	query := fmt.Sprintf(`
		SELECT TRIM(district) AS district, TRIM(thana) AS thana
		FROM %s
		WHERE COALESCE(TRIM(district), '') <> '' AND COALESCE(TRIM(thana), '') <> ''
		ORDER BY id
	`, quoted)

	var rows []subUnitRow
	if selectErr := r.db.SelectContext(ctx, &rows, query); selectErr != nil {
		return nil, fmt.Errorf("list sub-units %s: %w", table, selectErr)
	}

	directory := []domain.JurisdictionUnits{}
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.District]
		if !ok {
			i = len(directory)
			index[row.District] = i
			directory = append(directory, domain.JurisdictionUnits{Jurisdiction: row.District, SubUnits: []string{}})
		}
		directory[i].SubUnits = append(directory[i].SubUnits, row.Thana)
	}
	return directory, nil
}

// TablePage is one page of the table browser.
type TablePage struct {
	Fields       []string
	Rows         []map[string]any
	Page         int
	TotalPages   int
	TotalRecords int
}

// TablePage returns page (1-based; lower values mean 1) of table ordered by id.
func (r *Repository) TablePage(ctx context.Context, table string, page int) (*TablePage, error) {
	quoted, tableErr := quoteTable(table, r.allowed)
	if tableErr != nil {
		return nil, tableErr
	}
	if page < 1 {
		page = 1
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM " + quoted
	if countErr := r.db.GetContext(ctx, &total, countQuery); countErr != nil {
		return nil, fmt.Errorf("count %s: %w", table, countErr)
	}

	query := "SELECT * FROM " + quoted + " ORDER BY id LIMIT $1 OFFSET $2"
	fields, rows, queryErr := r.queryMaps(ctx, query, RecordsPerPage, (page-1)*RecordsPerPage)
	if queryErr != nil {
		return nil, fmt.Errorf("page %s: %w", table, queryErr)
	}

	return &TablePage{
		Fields:       fields,
		Rows:         rows,
		Page:         page,
		TotalPages:   (total + RecordsPerPage - 1) / RecordsPerPage,
		TotalRecords: total,
	}, nil
}

// TableRows returns every row of table ordered by id.
func (r *Repository) TableRows(ctx context.Context, table string) ([]map[string]any, error) {
	quoted, tableErr := quoteTable(table, r.allowed)
	if tableErr != nil {
		return nil, tableErr
	}

	_, rows, queryErr := r.queryMaps(ctx, "SELECT * FROM "+quoted+" ORDER BY id")
	if queryErr != nil {
		return nil, fmt.Errorf("rows %s: %w", table, queryErr)
	}
	return rows, nil
}

func (r *Repository) queryMaps(ctx context.Context, query string, args ...any) ([]string, []map[string]any, error) {
	rows, queryErr := r.db.QueryxContext(ctx, query, args...)
	if queryErr != nil {
		return nil, nil, queryErr
	}
	defer rows.Close()

	fields, columnsErr := rows.Columns()
	if columnsErr != nil {
		return nil, nil, columnsErr
	}

	out := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any, len(fields))
		if scanErr := rows.MapScan(row); scanErr != nil {
			return nil, nil, fmt.Errorf("scan row: %w", scanErr)
		}
		for k, v := range row {
			// lib/pq returns text and JSON as bytes.
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, nil, rowsErr
	}

	return fields, out, nil
}

// InsertCase stores c and sets c.ID from the database sequence.
func (r *Repository) InsertCase(ctx context.Context, c *domain.CaseRecord) error {
	table, tableErr := quoteTable(r.casesTable, r.allowed)
	if tableErr != nil {
		return tableErr
	}

	breakdown, marshalErr := marshalBreakdown(c.SubUnitBreakdown)
	if marshalErr != nil {
		return fmt.Errorf("marshal sub-unit breakdown: %w", marshalErr)
	}

	//nolint:gosec // table is validated and quoted
	query := fmt.Sprintf(`
		INSERT INTO %s
			(district, thana, io, act, section, primary_section, charge_type, crime_number,
			 incident_date, fir_date, date_of_arrest, charge_sheet_ready_date, charge_sheet_file_date,
			 total_accused, total_arrested, total_left, stage, marker, sub_unit_breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`, table)

	scanErr := r.db.QueryRowxContext(ctx, query,
		c.Jurisdiction,
		c.SubJurisdiction,
		c.InvestigatingOfficer,
		c.Act,
		c.Section,
		c.PrimarySection,
		c.ChargeType,
		c.CaseNumber,
		c.IncidentDate,
		c.FIRDate,
		c.ArrestDate,
		c.ChargeSheetReadyDate,
		c.ChargeSheetFiledDate,
		c.TotalAccused,
		c.TotalArrested,
		c.TotalRemaining,
		string(c.Stage),
		c.Marker,
		breakdown,
	).Scan(&c.ID)
	if scanErr != nil {
		return fmt.Errorf("insert case: %w", scanErr)
	}

	return nil
}

// marshalBreakdown stores each jurisdiction's sub-units in the legacy
// comma-separated form. An empty breakdown is stored as NULL.
func marshalBreakdown(b domain.SubUnitBreakdown) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	raw := make(map[string]string, len(b))
	for jurisdiction, units := range b {
		raw[jurisdiction] = strings.Join(units, ", ")
	}
	return json.Marshal(raw)
}
