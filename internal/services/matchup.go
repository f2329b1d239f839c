package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
)

// MatchupPlayer is one rotation player of a matchup, with form lines
// and, in the advanced view, matchup advantage scores against the
// opposing defense.
type MatchupPlayer struct {
	PlayerID   int                       `json:"player_id"`
	Player     string                    `json:"player"`
	Team       string                    `json:"team"`
	Side       string                    `json:"side"`
	Position   string                    `json:"position"`
	RoleBucket nba.Bucket                `json:"role_bucket,omitempty"`
	OppTeam    string                    `json:"opp_team_abbr,omitempty"`
	Stats      map[nba.Stat]nba.FormLine `json:"stats"`
	Advantage  map[nba.Stat]float64      `json:"advantage,omitempty"`
}

// MatchupService assembles both rosters of a game, filtered down to
// rotation players, with per-player form and optional defense-adjusted
// advantage scores.
type MatchupService struct {
	registry   *nba.Registry
	rosters    *RosterService
	forms      *FormService
	possession *PossessionService
	baseline   *BaselineService
	logger     *logrus.Logger

	// minutesFloor is the trailing-average minutes threshold below
	// which a player is dropped as out of the rotation.
	minutesFloor float64
}

func NewMatchupService(registry *nba.Registry, rosters *RosterService, forms *FormService, possession *PossessionService, baseline *BaselineService, minutesFloor float64, logger *logrus.Logger) *MatchupService {
	return &MatchupService{
		registry:     registry,
		rosters:      rosters,
		forms:        forms,
		possession:   possession,
		baseline:     baseline,
		minutesFloor: minutesFloor,
		logger:       logger,
	}
}

// MatchPlayers returns the rotation players of both sides with their
// form lines. Players whose game log cannot be fetched are skipped with
// a warning rather than failing the whole matchup.
func (s *MatchupService) MatchPlayers(ctx context.Context, homeIdent, awayIdent, season string) ([]MatchupPlayer, error) {
	home, err := s.registry.Resolve(homeIdent)
	if err != nil {
		return nil, err
	}
	away, err := s.registry.Resolve(awayIdent)
	if err != nil {
		return nil, err
	}

	var players []MatchupPlayer
	for _, side := range []struct {
		team nba.Team
		side string
		opp  nba.Team
	}{
		{home, "home", away},
		{away, "away", home},
	} {
		roster, err := s.rosters.TeamRoster(ctx, side.team, season)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch roster for %s: %w", side.team.Abbreviation, err)
		}
		for _, entry := range roster {
			form, err := s.forms.Form(ctx, entry.PlayerID, season)
			if err != nil {
				s.logger.Warnf("Skipping player %d (%s): %v", entry.PlayerID, entry.Name, err)
				continue
			}
			if form.Stats[nba.StatMinutes].Last5Avg < s.minutesFloor {
				continue
			}
			players = append(players, MatchupPlayer{
				PlayerID: entry.PlayerID,
				Player:   entry.Name,
				Team:     side.team.Abbreviation,
				Side:     side.side,
				Position: entry.Position,
				OppTeam:  side.opp.Abbreviation,
				Stats:    form.Stats,
			})
		}
	}
	return players, nil
}

// MatchPlayersAdvanced extends MatchPlayers with advantage scores: each
// player's role bucket is looked up in the opposing defense's
// z-scored per-100 profile, and the z is combined with the player's
// form delta per stat.
func (s *MatchupService) MatchPlayersAdvanced(ctx context.Context, homeIdent, awayIdent, season string) ([]MatchupPlayer, error) {
	players, err := s.MatchPlayers(ctx, homeIdent, awayIdent, season)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]nba.PossessionAggregate)
	for _, p := range players {
		if _, ok := profiles[p.OppTeam]; ok {
			continue
		}
		agg, err := s.possession.Aggregate(ctx, p.OppTeam, season, false)
		if err != nil {
			s.logger.Warnf("Defense profile unavailable for %s: %v", p.OppTeam, err)
			continue
		}
		if err := s.baseline.AttachZScores(ctx, &agg, true); err != nil {
			return nil, err
		}
		profiles[p.OppTeam] = agg
	}

	for i := range players {
		p := &players[i]
		p.RoleBucket = nba.BucketForToken(nba.NormalizePosition(p.Position))

		profile, ok := profiles[p.OppTeam]
		if !ok {
			continue
		}
		zrow, ok := profile.ByPositionPer100Z[p.RoleBucket]
		if !ok {
			continue
		}
		p.Advantage = map[nba.Stat]float64{
			nba.StatPoints:   advantageFor(zrow.PtsZ, p.Stats[nba.StatPoints]),
			nba.StatRebounds: advantageFor(zrow.RebZ, p.Stats[nba.StatRebounds]),
			nba.StatAssists:  advantageFor(zrow.AstZ, p.Stats[nba.StatAssists]),
		}
	}
	return players, nil
}

func advantageFor(z float64, form nba.FormLine) float64 {
	return AdvantageScore(z, form.SeasonAvg, form.Last5Avg)
}
