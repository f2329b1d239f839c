package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
)

// CacheWarmer builds the all-teams defense cache in the background,
// team by team. At most one build per filter set runs at a time;
// repeated warm requests for an in-flight or already-warm set are
// no-ops.
type CacheWarmer struct {
	defense  *DefenseService
	defCache *TeamDefenseCache
	registry *nba.Registry
	logger   *logrus.Logger

	cron *cron.Cron

	mu       sync.Mutex
	building map[string]bool
}

func NewCacheWarmer(defense *DefenseService, defCache *TeamDefenseCache, registry *nba.Registry, logger *logrus.Logger) *CacheWarmer {
	return &CacheWarmer{
		defense:  defense,
		defCache: defCache,
		registry: registry,
		logger:   logger,
		building: make(map[string]bool),
	}
}

// EnsureWarm starts a background build for the filter set unless the
// bulk cache already covers every team or a build is in flight. It
// reports whether a build was started.
func (w *CacheWarmer) EnsureWarm(f nba.DefenseFilters) bool {
	expected := len(w.registry.Teams())
	ready, err := w.defCache.IsBulkReady(context.Background(), f, expected)
	if err != nil {
		w.logger.Warnf("Bulk cache check failed for %s: %v", f.Key(), err)
	}
	if ready {
		return false
	}

	w.mu.Lock()
	if w.building[f.Key()] {
		w.mu.Unlock()
		return false
	}
	w.building[f.Key()] = true
	w.mu.Unlock()

	go func() {
		defer func() {
			w.mu.Lock()
			delete(w.building, f.Key())
			w.mu.Unlock()
		}()
		w.warm(f)
	}()
	return true
}

// IsBuilding reports whether a build for the filter set is in flight.
func (w *CacheWarmer) IsBuilding(f nba.DefenseFilters) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.building[f.Key()]
}

// Status summarizes cache readiness for the filter set.
func (w *CacheWarmer) Status(ctx context.Context, f nba.DefenseFilters) map[string]interface{} {
	expected := len(w.registry.Teams())
	bulk, hit, err := w.defCache.GetBulk(ctx, f)
	if err != nil {
		w.logger.Warnf("Bulk cache read failed for %s: %v", f.Key(), err)
	}
	cachedTeams := 0
	if hit {
		cachedTeams = len(bulk.Teams)
	}
	return map[string]interface{}{
		"season":       f.Season,
		"filters":      f,
		"teams_cached": cachedTeams,
		"teams_total":  expected,
		"ready":        hit && cachedTeams >= expected,
		"building":     w.IsBuilding(f),
	}
}

// warm builds every team sequentially. Per-team failures are logged
// and skipped so one bad team cannot abort the pass; a later warm run
// picks up the stragglers.
func (w *CacheWarmer) warm(f nba.DefenseFilters) {
	start := time.Now()
	w.logger.WithFields(logrus.Fields{
		"season":  f.Season,
		"filters": f.Key(),
	}).Info("Starting cache warm")

	built := 0
	for _, abbr := range w.registry.Abbreviations() {
		_, err := w.defense.Aggregate(context.Background(), abbr, f, AggregateOptions{SkipBulkCache: true})
		if err != nil {
			w.logger.Warnf("Warm failed for %s: %v", abbr, err)
			continue
		}
		built++
	}

	w.logger.WithFields(logrus.Fields{
		"season":   f.Season,
		"teams":    built,
		"duration": time.Since(start).String(),
	}).Info("Cache warm finished")
}

// Start schedules recurring warm passes. An empty schedule disables
// the cron.
func (w *CacheWarmer) Start(schedule string, f nba.DefenseFilters) error {
	if schedule == "" {
		return nil
	}
	w.cron = cron.New()
	_, err := w.cron.AddFunc(schedule, func() {
		w.EnsureWarm(f)
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Infof("Scheduled cache warm: %s", schedule)
	return nil
}

// Stop halts the cron scheduler, if one is running.
func (w *CacheWarmer) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}
