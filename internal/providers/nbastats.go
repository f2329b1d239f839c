package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"hooplens/internal/nba"
)

const statsBaseURL = "https://stats.nba.com/stats"

// NBAStatsClient implements nba.StatsProvider against the stats.nba.com
// tabular endpoints. Every call is paced by a shared rate limiter and
// guarded by a circuit breaker; retries are the caller's concern.
type NBAStatsClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
	baseURL    string
}

// ClientOptions tunes the stats client.
type ClientOptions struct {
	Timeout          time.Duration
	RequestsPerSec   float64
	Burst            int
	BreakerThreshold uint32
}

func NewNBAStatsClient(logger *logrus.Logger, opts ClientOptions) *NBAStatsClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 3
	}
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "nba-stats",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return &NBAStatsClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		breaker:    breaker,
		logger:     logger,
		baseURL:    statsBaseURL,
	}
}

// stats.nba.com wraps every endpoint in named tabular result sets.
type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

func (rs resultSet) column(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

func (rs resultSet) hasColumn(name string) bool { return rs.column(name) >= 0 }

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", row[idx])
}

func cellStringPtr(row []interface{}, idx int) *string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return nil
	}
	s := cellString(row, idx)
	return &s
}

func cellFloat(row []interface{}, idx int) float64 {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func cellInt(row []interface{}, idx int) int {
	return int(cellFloat(row, idx))
}

func (c *NBAStatsClient) get(ctx context.Context, endpoint string, params url.Values) (*statsResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode()), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Add("Accept", "application/json")
		req.Header.Add("Referer", "https://www.nba.com/")
		req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		var decoded statsResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
		return &decoded, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	return result.(*statsResponse), nil
}

func (c *NBAStatsClient) findResultSet(resp *statsResponse, name string) (resultSet, bool) {
	for _, rs := range resp.ResultSets {
		if rs.Name == name {
			return rs, true
		}
	}
	if name == "" && len(resp.ResultSets) > 0 {
		return resp.ResultSets[0], true
	}
	return resultSet{}, false
}

func (c *NBAStatsClient) firstResultSet(resp *statsResponse, endpoint string) (resultSet, error) {
	if len(resp.ResultSets) == 0 {
		return resultSet{}, fmt.Errorf("%s returned no result sets", endpoint)
	}
	return resp.ResultSets[0], nil
}

// TeamRoster returns the team's season roster with positions.
func (c *NBAStatsClient) TeamRoster(ctx context.Context, teamID int, season string) ([]nba.RosterEntry, error) {
	params := url.Values{}
	params.Set("TeamID", strconv.Itoa(teamID))
	params.Set("Season", season)
	resp, err := c.get(ctx, "commonteamroster", params)
	if err != nil {
		return nil, err
	}
	rs, err := c.firstResultSet(resp, "commonteamroster")
	if err != nil {
		return nil, err
	}
	pidCol := rs.column("PLAYER_ID")
	nameCol := rs.column("PLAYER")
	posCol := rs.column("POSITION")
	if posCol < 0 {
		posCol = rs.column("POS")
	}
	entries := make([]nba.RosterEntry, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		pid := cellInt(row, pidCol)
		if pid == 0 {
			continue
		}
		entries = append(entries, nba.RosterEntry{
			PlayerID: pid,
			Name:     cellString(row, nameCol),
			Position: cellString(row, posCol),
		})
	}
	return entries, nil
}

// TeamGameLog returns the team's game ids for one season type.
func (c *NBAStatsClient) TeamGameLog(ctx context.Context, teamID int, season string, seasonType nba.SeasonType) ([]string, error) {
	params := url.Values{}
	params.Set("TeamID", strconv.Itoa(teamID))
	params.Set("Season", season)
	params.Set("SeasonType", string(seasonType))
	resp, err := c.get(ctx, "teamgamelog", params)
	if err != nil {
		return nil, err
	}
	rs, err := c.firstResultSet(resp, "teamgamelog")
	if err != nil {
		return nil, err
	}
	return extractGameIDs(rs)
}

// FindTeamGames queries the league-wide game finder for the team/season.
func (c *NBAStatsClient) FindTeamGames(ctx context.Context, teamID int, season string) ([]string, error) {
	params := url.Values{}
	params.Set("TeamIDNullable", strconv.Itoa(teamID))
	params.Set("SeasonNullable", season)
	resp, err := c.get(ctx, "leaguegamefinder", params)
	if err != nil {
		return nil, err
	}
	rs, err := c.firstResultSet(resp, "leaguegamefinder")
	if err != nil {
		return nil, err
	}
	return extractGameIDs(rs)
}

// extractGameIDs tolerates the endpoint-dependent GAME_ID column naming.
func extractGameIDs(rs resultSet) ([]string, error) {
	col := -1
	for i, h := range rs.Headers {
		if h == "GAME_ID" || h == "Game_ID" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("GAME_ID column missing (headers: %v)", rs.Headers)
	}
	seen := make(map[string]bool)
	ids := make([]string, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		id := cellString(row, col)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// BoxScore returns the per-player rows of a game's traditional box score.
func (c *NBAStatsClient) BoxScore(ctx context.Context, gameID string) ([]nba.PlayerGameRecord, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "10")
	params.Set("StartRange", "0")
	params.Set("EndRange", "0")
	params.Set("RangeType", "0")
	resp, err := c.get(ctx, "boxscoretraditionalv2", params)
	if err != nil {
		return nil, err
	}
	rs, ok := c.findResultSet(resp, "PlayerStats")
	if !ok {
		var err2 error
		rs, err2 = c.firstResultSet(resp, "boxscoretraditionalv2")
		if err2 != nil {
			return nil, err2
		}
	}
	pidCol := rs.column("PLAYER_ID")
	abbrCol := rs.column("TEAM_ABBREVIATION")
	minCol := rs.column("MIN")
	ptsCol := rs.column("PTS")
	rebCol := rs.column("REB")
	astCol := rs.column("AST")
	startCol := rs.column("START_POSITION")
	records := make([]nba.PlayerGameRecord, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		records = append(records, nba.PlayerGameRecord{
			PlayerID:      cellInt(row, pidCol),
			TeamAbbr:      cellString(row, abbrCol),
			Minutes:       cellStringPtr(row, minCol),
			Points:        cellFloat(row, ptsCol),
			Rebounds:      cellFloat(row, rebCol),
			Assists:       cellFloat(row, astCol),
			StartPosition: cellStringPtr(row, startCol),
		})
	}
	return records, nil
}

// TeamPossessions returns team abbreviation -> possessions for a game,
// from the advanced box score's team stats table.
func (c *NBAStatsClient) TeamPossessions(ctx context.Context, gameID string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "10")
	params.Set("StartRange", "0")
	params.Set("EndRange", "0")
	params.Set("RangeType", "0")
	resp, err := c.get(ctx, "boxscoreadvancedv2", params)
	if err != nil {
		return nil, err
	}
	// The team stats table is located by shape, not by position: the set
	// carrying TEAM_ABBREVIATION plus POSS (or PACE as a weak fallback).
	var rs resultSet
	found := false
	for _, candidate := range resp.ResultSets {
		if candidate.hasColumn("TEAM_ABBREVIATION") && (candidate.hasColumn("POSS") || candidate.hasColumn("PACE")) {
			rs = candidate
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("team stats result set missing for game %s", gameID)
	}
	abbrCol := rs.column("TEAM_ABBREVIATION")
	possCol := rs.column("POSS")
	out := make(map[string]float64, len(rs.RowSet))
	for _, row := range rs.RowSet {
		abbr := cellString(row, abbrCol)
		if abbr == "" {
			continue
		}
		out[abbr] = cellFloat(row, possCol)
	}
	return out, nil
}

// PlayerGameLog returns the player's season game log; callers sort it.
func (c *NBAStatsClient) PlayerGameLog(ctx context.Context, playerID int, season string) ([]nba.GameLogLine, error) {
	params := url.Values{}
	params.Set("PlayerID", strconv.Itoa(playerID))
	params.Set("Season", season)
	params.Set("SeasonType", string(nba.RegularSeason))
	resp, err := c.get(ctx, "playergamelog", params)
	if err != nil {
		return nil, err
	}
	rs, err := c.firstResultSet(resp, "playergamelog")
	if err != nil {
		return nil, err
	}
	gidCol := rs.column("Game_ID")
	if gidCol < 0 {
		gidCol = rs.column("GAME_ID")
	}
	dateCol := rs.column("GAME_DATE")
	matchupCol := rs.column("MATCHUP")
	ptsCol := rs.column("PTS")
	rebCol := rs.column("REB")
	astCol := rs.column("AST")
	minCol := rs.column("MIN")
	lines := make([]nba.GameLogLine, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		date, err := time.Parse("Jan 02, 2006", cellString(row, dateCol))
		if err != nil {
			c.logger.Warnf("Unparsable game date %q for player %d", cellString(row, dateCol), playerID)
		}
		lines = append(lines, nba.GameLogLine{
			GameID:   cellString(row, gidCol),
			GameDate: date,
			Matchup:  cellString(row, matchupCol),
			Points:   cellFloat(row, ptsCol),
			Rebounds: cellFloat(row, rebCol),
			Assists:  cellFloat(row, astCol),
			Minutes:  cellFloat(row, minCol),
		})
	}
	return lines, nil
}

// Scoreboard returns the games scheduled on a date (MM/DD/YYYY).
func (c *NBAStatsClient) Scoreboard(ctx context.Context, date string) ([]nba.ScheduledGame, error) {
	params := url.Values{}
	params.Set("GameDate", date)
	params.Set("LeagueID", "00")
	params.Set("DayOffset", "0")
	resp, err := c.get(ctx, "scoreboardv2", params)
	if err != nil {
		return nil, err
	}
	rs, ok := c.findResultSet(resp, "GameHeader")
	if !ok {
		var err2 error
		rs, err2 = c.firstResultSet(resp, "scoreboardv2")
		if err2 != nil {
			return nil, err2
		}
	}
	gidCol := rs.column("GAME_ID")
	homeCol := rs.column("HOME_TEAM_ID")
	awayCol := rs.column("VISITOR_TEAM_ID")
	dateCol := rs.column("GAME_DATE_EST")
	statusCol := rs.column("GAME_STATUS_TEXT")
	games := make([]nba.ScheduledGame, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		est := cellString(row, dateCol)
		games = append(games, nba.ScheduledGame{
			GameID:     cellString(row, gidCol),
			HomeTeamID: cellInt(row, homeCol),
			AwayTeamID: cellInt(row, awayCol),
			StartEST:   est,
			GameDate:   strings.SplitN(est, "T", 2)[0],
			StartTime:  cellString(row, statusCol),
		})
	}
	return games, nil
}
