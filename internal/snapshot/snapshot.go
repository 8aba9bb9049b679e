// Package snapshot owns the in-memory case and statute collections every
// report is computed over, and their refresh lifecycle.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
)

// Snapshot is an immutable view of the data sources at FetchedAt. Callers must
// not modify the slices.
type Snapshot struct {
	Act           string                     `json:"act"`
	Cases         []domain.CaseRecord        `json:"cases"`
	Statutes      []domain.StatuteEntry      `json:"statutes"`
	Jurisdictions []string                   `json:"jurisdictions"`
	Directory     []domain.JurisdictionUnits `json:"directory"`
	Stages        []domain.Stage             `json:"stages"`
	FetchedAt     time.Time                  `json:"fetched_at"`
	Generation    uint64                     `json:"-"`
}

// Empty returns a snapshot with no data and the default stage vocabulary.
func Empty() *Snapshot {
	return &Snapshot{
		Cases:         []domain.CaseRecord{},
		Statutes:      []domain.StatuteEntry{},
		Jurisdictions: []string{},
		Directory:     []domain.JurisdictionUnits{},
		Stages:        domain.DefaultStages(),
	}
}

// SubUnits lists every sub-unit in the directory once, in directory order.
func (s *Snapshot) SubUnits() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, d := range s.Directory {
		for _, u := range d.SubUnits {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

// Source is where snapshots are loaded from.
type Source interface {
	ListCases(ctx context.Context) ([]domain.CaseRecord, error)
	ListStatutes(ctx context.Context, act string) ([]domain.StatuteEntry, error)
	ColumnValues(ctx context.Context, table, column string) ([]string, error)
	ListSubUnits(ctx context.Context, table string) ([]domain.JurisdictionUnits, error)
}

// ErrCacheMiss is returned by Cache.Get when nothing is stored under a key.
var ErrCacheMiss = errors.New("snapshot cache miss")

// Cache shares snapshots between service instances.
type Cache interface {
	Get(ctx context.Context, key string) (*Snapshot, error)
	Set(ctx context.Context, key string, s *Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Recorder receives load outcomes. *metrics.Metrics implements it.
type Recorder interface {
	SnapshotLoaded(source, result string)
	SetSnapshotCases(n int)
}
