package nba

import (
	"fmt"
	"strings"
	"time"
)

// DefenseFilters is the full parameter set a defense aggregation is keyed
// by. Any change to these values addresses a different cache namespace.
type DefenseFilters struct {
	Season      string       `json:"season"`
	ExcludeDNP  bool         `json:"exclude_dnp"`
	RoleMode    RoleMode     `json:"role_mode"`
	SeasonTypes []SeasonType `json:"season_types"`
}

// SeasonTypesKey joins the season types with "|" in request order.
func (f DefenseFilters) SeasonTypesKey() string {
	parts := make([]string, len(f.SeasonTypes))
	for i, st := range f.SeasonTypes {
		parts[i] = string(st)
	}
	return strings.Join(parts, "|")
}

// DNPKey is the cache-key fragment encoding the DNP-exclusion flag.
func (f DefenseFilters) DNPKey() string {
	if f.ExcludeDNP {
		return "exdnp"
	}
	return "incldnp"
}

// Key is the deterministic identity of the filter set, used to
// deduplicate concurrent warm builds and to serialize bulk writes.
func (f DefenseFilters) Key() string {
	return fmt.Sprintf("%s_%s_%s_%s", f.Season, f.DNPKey(), strings.ToLower(string(f.RoleMode)), f.SeasonTypesKey())
}

// BucketLine holds the accumulated production conceded to one position
// bucket along with the derived per-game averages.
type BucketLine struct {
	TotalPtsSum           float64 `json:"total_pts_sum"`
	TotalRebSum           float64 `json:"total_reb_sum"`
	TotalAstSum           float64 `json:"total_ast_sum"`
	GamesWithBucket       int     `json:"games_with_bucket"`
	GamesScanned          int     `json:"games_scanned"`
	PtsPerGame            float64 `json:"pts_per_game"`
	RebPerGame            float64 `json:"reb_per_game"`
	AstPerGame            float64 `json:"ast_per_game"`
	PtsPerGameWhenPresent float64 `json:"pts_per_game_when_present"`
	RebPerGameWhenPresent float64 `json:"reb_per_game_when_present"`
	AstPerGameWhenPresent float64 `json:"ast_per_game_when_present"`
}

// AggregateMeta carries the scan-wide bookkeeping of one aggregation run.
type AggregateMeta struct {
	GamesScanned int  `json:"games_scanned"`
	ExcludeDNP   bool `json:"exclude_dnp"`
}

// DefenseAggregate is the per-team result of a defense aggregation.
type DefenseAggregate struct {
	TargetTeamAbbr    string                `json:"target_team_abbr"`
	Season            string                `json:"season"`
	SeasonTypes       []SeasonType          `json:"season_types"`
	RoleMode          RoleMode              `json:"role_mode"`
	ByPositionPerGame map[Bucket]BucketLine `json:"by_position_per_game"`
	Meta              AggregateMeta         `json:"meta"`
}

// AllTeamsAggregate is the bulk cache entry holding every team's result
// for one season/filter set.
type AllTeamsAggregate struct {
	Season      string                      `json:"season"`
	ExcludeDNP  bool                        `json:"exclude_dnp"`
	RoleMode    RoleMode                    `json:"role_mode"`
	SeasonTypes []SeasonType                `json:"season_types"`
	Teams       map[string]DefenseAggregate `json:"teams"`
}

// GameIDCacheEntry is the persisted, incrementally growing set of game
// ids discovered for a team and season.
type GameIDCacheEntry struct {
	Season      string       `json:"season"`
	Team        string       `json:"team"`
	SeasonTypes []SeasonType `json:"season_types"`
	GameIDs     []string     `json:"game_ids"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PerGameLine is the per-game view of the possession aggregator.
type PerGameLine struct {
	PtsPerGame   float64 `json:"pts_per_game"`
	RebPerGame   float64 `json:"reb_per_game"`
	AstPerGame   float64 `json:"ast_per_game"`
	GamesScanned int     `json:"games_scanned"`
}

// Per100Line is production conceded normalized to 100 opponent possessions.
type Per100Line struct {
	PtsPer100 float64 `json:"pts_per100"`
	RebPer100 float64 `json:"reb_per100"`
	AstPer100 float64 `json:"ast_per100"`
	PossAgg   float64 `json:"poss_agg"`
}

// Per100ZLine is a Per100Line decorated with league z-scores.
type Per100ZLine struct {
	Per100Line
	PtsZ float64 `json:"pts_z"`
	RebZ float64 `json:"reb_z"`
	AstZ float64 `json:"ast_z"`
}

// PossessionAggregate is the possession-normalized sibling of
// DefenseAggregate, the input of the league baseline.
type PossessionAggregate struct {
	Team              string                 `json:"team"`
	Season            string                 `json:"season"`
	ByPositionPerGame map[Bucket]PerGameLine `json:"by_position_per_game"`
	ByPositionPer100  map[Bucket]Per100Line  `json:"by_position_per100"`
	ByPositionPer100Z map[Bucket]Per100ZLine `json:"by_position_per100_z,omitempty"`
}

// BucketBaseline holds the league mean/stdev for one bucket, one sample
// per team per stat. N is the sample count.
type BucketBaseline struct {
	Mean map[Stat]float64 `json:"mean"`
	Std  map[Stat]float64 `json:"std"`
	N    int              `json:"n"`
}

// LeagueBaseline is the league-wide per-100-possession baseline used for
// z-scoring.
type LeagueBaseline struct {
	Season     string                    `json:"season"`
	ByPosition map[Bucket]BucketBaseline `json:"by_position"`
}

// FormLine is the form summary for one stat of one player.
type FormLine struct {
	Value     float64 `json:"value"`
	Last5Avg  float64 `json:"last5_avg"`
	SeasonAvg float64 `json:"season_avg"`
	UnderAvg  bool    `json:"under_avg"`
}

// PlayerForm is a player's recent-form summary across the tracked stats.
type PlayerForm struct {
	PlayerID int               `json:"player_id"`
	Season   string            `json:"season"`
	Games    int               `json:"games"`
	Stats    map[Stat]FormLine `json:"stats"`
}
