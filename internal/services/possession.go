package services

import (
	"context"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
)

// possFloor keeps the possession denominator strictly positive when the
// advanced box score is missing or reports zero.
const possFloor = 0.0001

// PossessionService is the possession-normalized sibling of the defense
// aggregator: the same per-game bucket scan, additionally divided by the
// opponent's estimated possessions. DNP rows are always excluded and
// buckets come from the lineup position, falling back through the raw
// row, so the output is directly comparable across teams.
type PossessionService struct {
	provider  nba.StatsProvider
	registry  *nba.Registry
	games     *GameService
	boxscores *BoxscoreService
	cache     *CacheService
	retry     providers.RetryPolicy
	logger    *logrus.Logger
}

func NewPossessionService(provider nba.StatsProvider, registry *nba.Registry, games *GameService, boxscores *BoxscoreService, cache *CacheService, retry providers.RetryPolicy, logger *logrus.Logger) *PossessionService {
	return &PossessionService{
		provider:  provider,
		registry:  registry,
		games:     games,
		boxscores: boxscores,
		cache:     cache,
		retry:     retry,
		logger:    logger,
	}
}

// Aggregate returns the team's possession-normalized defense profile,
// serving from cache when possible.
func (s *PossessionService) Aggregate(ctx context.Context, teamIdent, season string, refresh bool) (nba.PossessionAggregate, error) {
	team, err := s.registry.Resolve(teamIdent)
	if err != nil {
		return nba.PossessionAggregate{}, err
	}

	key := PossessionCacheKey(team.Abbreviation, season)
	if !refresh {
		var cached nba.PossessionAggregate
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			return nba.PossessionAggregate{}, err
		}
		if hit {
			return cached, nil
		}
	}

	agg, err := s.build(ctx, team, season, refresh)
	if err != nil {
		return nba.PossessionAggregate{}, err
	}
	if err := s.cache.Put(ctx, key, agg); err != nil {
		s.logger.Warnf("Failed to cache possession aggregate for %s: %v", team.Abbreviation, err)
	}
	return agg, nil
}

func (s *PossessionService) build(ctx context.Context, team nba.Team, season string, refresh bool) (nba.PossessionAggregate, error) {
	gameIDs, err := s.games.ResolveGames(ctx, team, season, []nba.SeasonType{nba.RegularSeason}, refresh)
	if err != nil {
		return nba.PossessionAggregate{}, err
	}

	type acc struct {
		pts, reb, ast, poss float64
	}
	totals := make(map[nba.Bucket]*acc)
	for _, b := range nba.Buckets {
		totals[b] = &acc{}
	}
	gamesScanned := 0

	for _, gameID := range gameIDs {
		rows, err := s.boxscores.Boxscore(ctx, gameID)
		if err != nil {
			return nba.PossessionAggregate{}, err
		}

		oppPoss := s.opponentPossessions(ctx, gameID, team.Abbreviation)

		present := make(map[nba.Bucket]bool)
		contributed := false
		for _, row := range rows {
			if strings.EqualFold(row.TeamAbbr, team.Abbreviation) {
				continue
			}
			mp := nba.ParseMinutes(row.Minutes)
			if mp == nil || *mp <= 0 {
				continue
			}
			startPos := ""
			if row.StartPosition != nil {
				startPos = *row.StartPosition
			}
			bucket := nba.ChooseBucket(startPos, "", nba.RoleModeEither)

			totals[bucket].pts += row.Points
			totals[bucket].reb += row.Rebounds
			totals[bucket].ast += row.Assists
			present[bucket] = true
			contributed = true
		}
		if !contributed {
			continue
		}
		gamesScanned++
		for bucket := range present {
			totals[bucket].poss += math.Max(oppPoss, possFloor)
		}
	}

	perGame := make(map[nba.Bucket]nba.PerGameLine, len(nba.Buckets))
	per100 := make(map[nba.Bucket]nba.Per100Line, len(nba.Buckets))
	for _, bucket := range nba.Buckets {
		t := totals[bucket]
		pg := nba.PerGameLine{GamesScanned: gamesScanned}
		if gamesScanned > 0 {
			pg.PtsPerGame = round3(t.pts / float64(gamesScanned))
			pg.RebPerGame = round3(t.reb / float64(gamesScanned))
			pg.AstPerGame = round3(t.ast / float64(gamesScanned))
		}
		perGame[bucket] = pg

		p100 := nba.Per100Line{PossAgg: round2(t.poss)}
		if t.poss > 0 {
			p100.PtsPer100 = round3(t.pts / t.poss * 100)
			p100.RebPer100 = round3(t.reb / t.poss * 100)
			p100.AstPer100 = round3(t.ast / t.poss * 100)
		}
		per100[bucket] = p100
	}

	return nba.PossessionAggregate{
		Team:              team.Abbreviation,
		Season:            season,
		ByPositionPerGame: perGame,
		ByPositionPer100:  per100,
	}, nil
}

// opponentPossessions estimates the opponent's possessions in a game
// from the advanced box score. Failures degrade to zero; the caller
// applies the floor.
func (s *PossessionService) opponentPossessions(ctx context.Context, gameID, teamAbbr string) float64 {
	var byTeam map[string]float64
	err := s.retry.Do(ctx, "fetch possessions for game "+gameID, func() error {
		var ferr error
		byTeam, ferr = s.provider.TeamPossessions(ctx, gameID)
		return ferr
	})
	if err != nil {
		s.logger.Warnf("Advanced box score unavailable for game %s: %v", gameID, err)
		return 0
	}
	for abbr, poss := range byTeam {
		if !strings.EqualFold(abbr, teamAbbr) {
			return poss
		}
	}
	return 0
}
