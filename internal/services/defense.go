package services

import (
	"context"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
)

// AggregateOptions tune one defense aggregation call.
type AggregateOptions struct {
	// RefreshGames re-queries the upstream game sources and forces a
	// recompute even when a cached aggregate exists.
	RefreshGames bool
	// SkipBulkCache bypasses the all-teams entry on reads. Warm builds
	// use it so every team is recomputed into the bulk entry.
	SkipBulkCache bool
}

// DefenseService computes how much production a team concedes to each
// opposing position bucket, per game, across a season.
type DefenseService struct {
	registry  *nba.Registry
	rosters   *RosterService
	games     *GameService
	boxscores *BoxscoreService
	defCache  *TeamDefenseCache
	logger    *logrus.Logger
}

func NewDefenseService(registry *nba.Registry, rosters *RosterService, games *GameService, boxscores *BoxscoreService, defCache *TeamDefenseCache, logger *logrus.Logger) *DefenseService {
	return &DefenseService{
		registry:  registry,
		rosters:   rosters,
		games:     games,
		boxscores: boxscores,
		defCache:  defCache,
		logger:    logger,
	}
}

// Aggregate resolves the team, serves a cached aggregate when one
// exists, and otherwise scans the team's games and builds it.
func (s *DefenseService) Aggregate(ctx context.Context, teamIdent string, f nba.DefenseFilters, opts AggregateOptions) (nba.DefenseAggregate, error) {
	team, err := s.registry.Resolve(teamIdent)
	if err != nil {
		return nba.DefenseAggregate{}, err
	}

	if !opts.RefreshGames {
		if opts.SkipBulkCache {
			var agg nba.DefenseAggregate
			hit, err := s.defCache.cache.Get(ctx, TeamDefenseCacheKey(team.Abbreviation, f), &agg)
			if err != nil {
				return nba.DefenseAggregate{}, err
			}
			if hit {
				// Re-merge into the bulk entry so a warm pass converges
				// even when the bulk blob was lost or never written.
				if err := s.defCache.PutTeam(ctx, agg, f); err != nil {
					s.logger.Warnf("Failed to merge cached aggregate for %s into bulk entry: %v", team.Abbreviation, err)
				}
				return agg, nil
			}
		} else {
			agg, hit, err := s.defCache.GetTeam(ctx, team.Abbreviation, f)
			if err != nil {
				return nba.DefenseAggregate{}, err
			}
			if hit {
				return agg, nil
			}
		}
	}

	agg, err := s.build(ctx, team, f, opts.RefreshGames)
	if err != nil {
		return nba.DefenseAggregate{}, err
	}

	if err := s.defCache.PutTeam(ctx, agg, f); err != nil {
		s.logger.Warnf("Failed to cache defense aggregate for %s: %v", team.Abbreviation, err)
	}
	return agg, nil
}

func (s *DefenseService) build(ctx context.Context, team nba.Team, f nba.DefenseFilters, refreshGames bool) (nba.DefenseAggregate, error) {
	positions, err := s.rosters.PlayerPositions(ctx, f.Season)
	if err != nil {
		return nba.DefenseAggregate{}, err
	}

	gameIDs, err := s.games.ResolveGames(ctx, team, f.Season, f.SeasonTypes, refreshGames)
	if err != nil {
		return nba.DefenseAggregate{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"team":   team.Abbreviation,
		"season": f.Season,
		"games":  len(gameIDs),
	}).Info("Building defense aggregate")

	totals := make(map[nba.Bucket]*bucketAccumulator)
	gamesScanned := 0

	for _, gameID := range gameIDs {
		rows, err := s.boxscores.Boxscore(ctx, gameID)
		if err != nil {
			return nba.DefenseAggregate{}, err
		}

		gameTotals := make(map[nba.Bucket]*bucketAccumulator)
		for _, row := range rows {
			if strings.EqualFold(row.TeamAbbr, team.Abbreviation) {
				continue
			}
			if f.ExcludeDNP {
				mp := nba.ParseMinutes(row.Minutes)
				if mp == nil || *mp <= 0 {
					continue
				}
			}
			startPos := ""
			if row.StartPosition != nil {
				startPos = *row.StartPosition
			}
			bucket := nba.ChooseBucket(startPos, positions[row.PlayerID], f.RoleMode)

			acc, ok := gameTotals[bucket]
			if !ok {
				acc = &bucketAccumulator{}
				gameTotals[bucket] = acc
			}
			acc.pts += row.Points
			acc.reb += row.Rebounds
			acc.ast += row.Assists
		}

		// A game with no opponent contributions is unscannable and does
		// not count toward any denominator.
		if len(gameTotals) == 0 {
			continue
		}
		gamesScanned++
		for bucket, game := range gameTotals {
			acc, ok := totals[bucket]
			if !ok {
				acc = &bucketAccumulator{}
				totals[bucket] = acc
			}
			acc.pts += game.pts
			acc.reb += game.reb
			acc.ast += game.ast
			acc.gamesWithBucket++
		}
	}

	byPosition := make(map[nba.Bucket]nba.BucketLine, len(totals))
	for bucket, acc := range totals {
		line := nba.BucketLine{
			TotalPtsSum:     round2(acc.pts),
			TotalRebSum:     round2(acc.reb),
			TotalAstSum:     round2(acc.ast),
			GamesWithBucket: acc.gamesWithBucket,
			GamesScanned:    gamesScanned,
		}
		if gamesScanned > 0 {
			line.PtsPerGame = round3(acc.pts / float64(gamesScanned))
			line.RebPerGame = round3(acc.reb / float64(gamesScanned))
			line.AstPerGame = round3(acc.ast / float64(gamesScanned))
		}
		if acc.gamesWithBucket > 0 {
			line.PtsPerGameWhenPresent = round3(acc.pts / float64(acc.gamesWithBucket))
			line.RebPerGameWhenPresent = round3(acc.reb / float64(acc.gamesWithBucket))
			line.AstPerGameWhenPresent = round3(acc.ast / float64(acc.gamesWithBucket))
		}
		byPosition[bucket] = line
	}

	return nba.DefenseAggregate{
		TargetTeamAbbr:    team.Abbreviation,
		Season:            f.Season,
		SeasonTypes:       f.SeasonTypes,
		RoleMode:          f.RoleMode,
		ByPositionPerGame: byPosition,
		Meta: nba.AggregateMeta{
			GamesScanned: gamesScanned,
			ExcludeDNP:   f.ExcludeDNP,
		},
	}, nil
}

type bucketAccumulator struct {
	pts, reb, ast   float64
	gamesWithBucket int
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
