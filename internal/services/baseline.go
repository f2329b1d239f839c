package services

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
)

// BaselineService builds the league-wide per-100-possession baseline and
// attaches z-scores to possession aggregates.
type BaselineService struct {
	registry   *nba.Registry
	possession *PossessionService
	cache      *CacheService
	logger     *logrus.Logger
}

func NewBaselineService(registry *nba.Registry, possession *PossessionService, cache *CacheService, logger *logrus.Logger) *BaselineService {
	return &BaselineService{
		registry:   registry,
		possession: possession,
		cache:      cache,
		logger:     logger,
	}
}

// Baseline returns the cached league baseline for the season, building
// it from every team's possession aggregate when absent. Each team with
// possession data contributes exactly one sample per bucket and stat;
// teams with no data for a bucket contribute no sample rather than a
// zero.
func (s *BaselineService) Baseline(ctx context.Context, season string) (nba.LeagueBaseline, error) {
	key := BaselineCacheKey(season)
	var cached nba.LeagueBaseline
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nba.LeagueBaseline{}, err
	}
	if hit {
		return cached, nil
	}

	s.logger.Infof("Building league baseline for %s", season)
	samples := make(map[nba.Bucket]map[nba.Stat][]float64)
	for _, bucket := range nba.Buckets {
		samples[bucket] = map[nba.Stat][]float64{
			nba.StatPoints:   nil,
			nba.StatRebounds: nil,
			nba.StatAssists:  nil,
		}
	}

	for _, abbr := range s.registry.Abbreviations() {
		agg, err := s.possession.Aggregate(ctx, abbr, season, false)
		if err != nil {
			s.logger.Warnf("Skipping %s in baseline: %v", abbr, err)
			continue
		}
		for _, bucket := range nba.Buckets {
			line, ok := agg.ByPositionPer100[bucket]
			if !ok || line.PossAgg <= 0 {
				continue
			}
			samples[bucket][nba.StatPoints] = append(samples[bucket][nba.StatPoints], line.PtsPer100)
			samples[bucket][nba.StatRebounds] = append(samples[bucket][nba.StatRebounds], line.RebPer100)
			samples[bucket][nba.StatAssists] = append(samples[bucket][nba.StatAssists], line.AstPer100)
		}
	}

	baseline := nba.LeagueBaseline{
		Season:     season,
		ByPosition: make(map[nba.Bucket]nba.BucketBaseline, len(nba.Buckets)),
	}
	for _, bucket := range nba.Buckets {
		bb := nba.BucketBaseline{
			Mean: make(map[nba.Stat]float64, len(nba.ScoringStats)),
			Std:  make(map[nba.Stat]float64, len(nba.ScoringStats)),
		}
		for _, stat := range nba.ScoringStats {
			vals := samples[bucket][stat]
			bb.Mean[stat] = populationMean(vals)
			bb.Std[stat] = populationStdev(vals)
			if len(vals) > bb.N {
				bb.N = len(vals)
			}
		}
		baseline.ByPosition[bucket] = bb
	}

	if err := s.cache.Put(ctx, key, baseline); err != nil {
		s.logger.Warnf("Failed to persist league baseline for %s: %v", season, err)
	}
	return baseline, nil
}

// AttachZScores decorates the aggregate's per-100 lines with z-scores
// against the league baseline. With allowPartial true a missing
// baseline degrades to all-zero z-scores instead of failing.
func (s *BaselineService) AttachZScores(ctx context.Context, agg *nba.PossessionAggregate, allowPartial bool) error {
	baseline, err := s.Baseline(ctx, agg.Season)
	if err != nil {
		if !allowPartial {
			return err
		}
		s.logger.Warnf("League baseline unavailable for %s, reporting zero z-scores: %v", agg.Season, err)
		baseline = nba.LeagueBaseline{Season: agg.Season}
	}

	agg.ByPositionPer100Z = make(map[nba.Bucket]nba.Per100ZLine, len(agg.ByPositionPer100))
	for bucket, line := range agg.ByPositionPer100 {
		z := nba.Per100ZLine{Per100Line: line}
		if bb, ok := baseline.ByPosition[bucket]; ok {
			z.PtsZ = zScore(line.PtsPer100, bb.Mean[nba.StatPoints], bb.Std[nba.StatPoints])
			z.RebZ = zScore(line.RebPer100, bb.Mean[nba.StatRebounds], bb.Std[nba.StatRebounds])
			z.AstZ = zScore(line.AstPer100, bb.Mean[nba.StatAssists], bb.Std[nba.StatAssists])
		}
		agg.ByPositionPer100Z[bucket] = z
	}
	return nil
}

func populationMean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// populationStdev substitutes 1.0 when fewer than two samples exist so
// the z denominator stays meaningful.
func populationStdev(vals []float64) float64 {
	if len(vals) < 2 {
		return 1.0
	}
	mean := populationMean(vals)
	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}

func zScore(value, mean, std float64) float64 {
	return round3((value - mean) / math.Max(std, epsilon))
}
