package nba

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Team is one entry of the static league registry.
type Team struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

// Stat identifies one of the tracked box-score statistics.
type Stat string

const (
	StatPoints   Stat = "PTS"
	StatRebounds Stat = "REB"
	StatAssists  Stat = "AST"
	StatMinutes  Stat = "MIN"
)

// ScoringStats are the stats aggregated per position bucket.
var ScoringStats = []Stat{StatPoints, StatRebounds, StatAssists}

// FormStats are the stats tracked by the player form computation.
var FormStats = []Stat{StatPoints, StatRebounds, StatAssists, StatMinutes}

// SeasonType selects which slice of the schedule a game log query covers.
type SeasonType string

const (
	RegularSeason SeasonType = "Regular Season"
	PreSeason     SeasonType = "Pre Season"
	Playoffs      SeasonType = "Playoffs"
)

// ParseSeasonTypes accepts a comma-separated list with short aliases
// (rs, ps, po) and returns the deduplicated season types in request order.
func ParseSeasonTypes(s string) []SeasonType {
	if strings.TrimSpace(s) == "" {
		return []SeasonType{RegularSeason}
	}
	seen := make(map[SeasonType]bool)
	var out []SeasonType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var st SeasonType
		switch strings.ToLower(part) {
		case "rs", "regular", "regular season":
			st = RegularSeason
		case "ps", "pre", "pre season", "preseason":
			st = PreSeason
		case "po", "playoff", "playoffs":
			st = Playoffs
		default:
			st = SeasonType(part)
		}
		if !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	if len(out) == 0 {
		return []SeasonType{RegularSeason}
	}
	return out
}

// PlayerGameRecord is a single player row from a game's traditional box score.
// Field names match the persisted per-game payload shape.
type PlayerGameRecord struct {
	PlayerID      int     `json:"PLAYER_ID"`
	TeamAbbr      string  `json:"TEAM_ABBREVIATION"`
	Minutes       *string `json:"MIN"`
	Points        float64 `json:"PTS"`
	Rebounds      float64 `json:"REB"`
	Assists       float64 `json:"AST"`
	StartPosition *string `json:"START_POSITION,omitempty"`
}

// ParseMinutes converts a raw MIN value ("34:12" or "34.2") into fractional
// minutes. A nil pointer result means the value is absent or unparsable,
// which callers treat as "did not play".
func ParseMinutes(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		mm, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil
		}
		ss, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil
		}
		v := float64(mm) + float64(ss)/60.0
		return &v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// RosterEntry is one player of a team's season roster.
type RosterEntry struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"player"`
	Position string `json:"position"`
}

// GameLogLine is one dated entry of a player's season game log.
type GameLogLine struct {
	GameID   string    `json:"game_id"`
	GameDate time.Time `json:"game_date"`
	Matchup  string    `json:"matchup"`
	Points   float64   `json:"pts"`
	Rebounds float64   `json:"reb"`
	Assists  float64   `json:"ast"`
	Minutes  float64   `json:"min"`
}

// Value returns the line's value for the given stat, 0 for unknown stats.
func (l GameLogLine) Value(stat Stat) float64 {
	switch stat {
	case StatPoints:
		return l.Points
	case StatRebounds:
		return l.Rebounds
	case StatAssists:
		return l.Assists
	case StatMinutes:
		return l.Minutes
	}
	return 0
}

// ScheduledGame is one row of a day's scoreboard. Team ids come from the
// provider; names and abbreviations are filled in from the registry.
type ScheduledGame struct {
	GameID     string `json:"gameId"`
	HomeTeamID int    `json:"-"`
	AwayTeamID int    `json:"-"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	HomeAbbr   string `json:"home_abbr"`
	AwayAbbr   string `json:"away_abbr"`
	StartEST   string `json:"start_iso_est,omitempty"`
	GameDate   string `json:"start_date_est,omitempty"`
	StartTime  string `json:"start_time_est,omitempty"`
}

// StatsProvider is the upstream stats source consumed by the services.
// All calls are blocking network I/O and may fail transiently; callers
// apply their own retry budget.
type StatsProvider interface {
	TeamRoster(ctx context.Context, teamID int, season string) ([]RosterEntry, error)
	TeamGameLog(ctx context.Context, teamID int, season string, seasonType SeasonType) ([]string, error)
	FindTeamGames(ctx context.Context, teamID int, season string) ([]string, error)
	BoxScore(ctx context.Context, gameID string) ([]PlayerGameRecord, error)
	TeamPossessions(ctx context.Context, gameID string) (map[string]float64, error)
	PlayerGameLog(ctx context.Context, playerID int, season string) ([]GameLogLine, error)
	Scoreboard(ctx context.Context, date string) ([]ScheduledGame, error)
}
