package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/marker"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	loadKey    = "load"
	refreshKey = "refresh"
)

// Options configures where a Controller reads from and how long a snapshot lives.
type Options struct {
	TTL                time.Duration
	Act                string
	ReferenceTable     string
	SubUnitTable       string
	JurisdictionColumn string
	StageColumn        string
}

// Controller hands out the current snapshot, loading it on demand. It is safe
// for concurrent use. Concurrent loads are coalesced, and a load that started
// before a newer one finished (or before Invalidate) is never published.
type Controller struct {
	source     Source
	cache      Cache
	classifier *marker.Classifier
	recorder   Recorder
	log        logger.Logger
	opts       Options
	now        func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	current   *Snapshot
	started   uint64 // generation of the most recently started load
	published uint64 // generation of current
	floor     uint64 // loads at or below this generation are stale
}

// NewController builds a Controller. cache may be nil.
func NewController(source Source, cache Cache, classifier *marker.Classifier, recorder Recorder, log logger.Logger, opts Options) *Controller {
	return &Controller{
		source:     source,
		cache:      cache,
		classifier: classifier,
		recorder:   recorder,
		log:        log,
		opts:       opts,
		now:        time.Now,
	}
}

// Current returns a snapshot no older than the TTL.
func (c *Controller) Current(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	s := c.current
	c.mu.RUnlock()

	if s != nil && c.fresh(s) {
		c.recorder.SnapshotLoaded(metrics.SourceMemory, metrics.ResultOK)
		return s, nil
	}
	return c.do(ctx, loadKey, false)
}

// Refresh reloads from the source, bypassing memory and cache.
func (c *Controller) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.do(ctx, refreshKey, true)
}

// Invalidate drops the in-memory and cached snapshots. Loads already in
// flight still answer their callers but are not published, and later callers
// start a new load instead of joining them.
func (c *Controller) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.floor = c.started
	c.group.Forget(loadKey)
	c.group.Forget(refreshKey)
	c.mu.Unlock()

	if c.cache == nil {
		return nil
	}
	if delErr := c.cache.Delete(ctx, CacheKey(c.opts.Act)); delErr != nil {
		return fmt.Errorf("invalidate snapshot cache: %w", delErr)
	}
	return nil
}

func (c *Controller) fresh(s *Snapshot) bool {
	return c.now().Sub(s.FetchedAt) < c.opts.TTL
}

func (c *Controller) do(ctx context.Context, key string, skipCache bool) (*Snapshot, error) {
	// The load outlives any one caller; each caller may still give up waiting.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(loadCtx, skipCache)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		s, _ := res.Val.(*Snapshot)
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Controller) load(ctx context.Context, skipCache bool) (*Snapshot, error) {
	c.mu.Lock()
	c.started++
	gen := c.started
	c.mu.Unlock()

	if !skipCache {
		if s := c.fromCache(ctx); s != nil {
			return c.publish(gen, s), nil
		}
	}

	s, fetchErr := c.fetch(ctx)
	if fetchErr != nil {
		c.recorder.SnapshotLoaded(metrics.SourceDatabase, metrics.ResultError)
		return nil, fmt.Errorf("load snapshot: %w", fetchErr)
	}
	c.recorder.SnapshotLoaded(metrics.SourceDatabase, metrics.ResultOK)

	published := c.publish(gen, s)
	if c.cache != nil && published == s {
		if setErr := c.cache.Set(ctx, CacheKey(c.opts.Act), s, c.opts.TTL); setErr != nil {
			c.log.Warn("Failed to cache snapshot", logger.Error(setErr))
		}
	}
	return s, nil
}

func (c *Controller) fromCache(ctx context.Context) *Snapshot {
	if c.cache == nil {
		return nil
	}

	s, getErr := c.cache.Get(ctx, CacheKey(c.opts.Act))
	switch {
	case errors.Is(getErr, ErrCacheMiss):
		return nil
	case getErr != nil:
		c.recorder.SnapshotLoaded(metrics.SourceCache, metrics.ResultError)
		c.log.Warn("Snapshot cache unavailable", logger.Error(getErr))
		return nil
	case !c.fresh(s):
		return nil
	}

	// Keyword lists may differ between instances; classify locally.
	c.classifier.Apply(s.Cases)
	c.recorder.SnapshotLoaded(metrics.SourceCache, metrics.ResultOK)
	return s
}

// publish installs s unless a newer load already did, or s predates an
// invalidation. It returns the snapshot that is current afterwards.
func (c *Controller) publish(gen uint64, s *Snapshot) *Snapshot {
	s.Generation = gen

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.published || gen <= c.floor {
		c.log.Debug("Discarding stale snapshot",
			logger.Int64("generation", int64(gen)),
			logger.Int64("published", int64(c.published)),
		)
		return c.current
	}

	c.current = s
	c.published = gen
	c.recorder.SetSnapshotCases(len(s.Cases))
	c.log.Info("Snapshot published",
		logger.Int64("generation", int64(gen)),
		logger.Int("cases", len(s.Cases)),
		logger.Int("statutes", len(s.Statutes)),
	)
	return s
}

// fetch reads every source in parallel. Case and statute failures fail the
// load; reference-table failures fall back to defaults.
func (c *Controller) fetch(ctx context.Context) (*Snapshot, error) {
	var (
		cases         []domain.CaseRecord
		statutes      []domain.StatuteEntry
		jurisdictions []string
		stages        []domain.Stage
		units         []domain.JurisdictionUnits
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cases, err = c.source.ListCases(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		statutes, err = c.source.ListStatutes(gctx, c.opts.Act)
		return err
	})
	g.Go(func() error {
		jurisdictions = c.referenceValues(gctx, c.opts.JurisdictionColumn)
		return nil
	})
	g.Go(func() error {
		stages = domain.StagesFromStrings(c.referenceValues(gctx, c.opts.StageColumn))
		return nil
	})
	g.Go(func() error {
		units = c.subUnits(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(stages) == 0 {
		stages = domain.DefaultStages()
	}
	jurisdictions = dedupe(jurisdictions)
	c.classifier.Apply(cases)

	return &Snapshot{
		Act:           c.opts.Act,
		Cases:         cases,
		Statutes:      statutes,
		Jurisdictions: jurisdictions,
		Directory:     directory(jurisdictions, units),
		Stages:        stages,
		FetchedAt:     c.now(),
	}, nil
}

// directory orders units by the reference jurisdiction list. Districts that
// have stations but are missing from the list follow, in table order.
func directory(jurisdictions []string, units []domain.JurisdictionUnits) []domain.JurisdictionUnits {
	byName := make(map[string][]string, len(units))
	for _, u := range units {
		byName[u.Jurisdiction] = append(byName[u.Jurisdiction], u.SubUnits...)
	}

	out := make([]domain.JurisdictionUnits, 0, len(jurisdictions)+len(units))
	listed := make(map[string]struct{}, len(jurisdictions))
	for _, j := range jurisdictions {
		listed[j] = struct{}{}
		out = append(out, domain.JurisdictionUnits{Jurisdiction: j, SubUnits: dedupe(byName[j])})
	}
	for _, u := range units {
		if _, ok := listed[u.Jurisdiction]; ok {
			continue
		}
		listed[u.Jurisdiction] = struct{}{}
		out = append(out, domain.JurisdictionUnits{Jurisdiction: u.Jurisdiction, SubUnits: dedupe(byName[u.Jurisdiction])})
	}
	return out
}

func (c *Controller) subUnits(ctx context.Context) []domain.JurisdictionUnits {
	units, err := c.source.ListSubUnits(ctx, c.opts.SubUnitTable)
	if err != nil {
		c.log.Warn("Sub-unit directory unavailable",
			logger.String("table", c.opts.SubUnitTable),
			logger.Error(err),
		)
		return nil
	}
	return units
}

func (c *Controller) referenceValues(ctx context.Context, column string) []string {
	values, err := c.source.ColumnValues(ctx, c.opts.ReferenceTable, column)
	if err != nil {
		c.log.Warn("Reference column unavailable",
			logger.String("table", c.opts.ReferenceTable),
			logger.String("column", column),
			logger.Error(err),
		)
		return []string{}
	}
	return values
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
