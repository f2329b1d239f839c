package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
	"hooplens/pkg/blobstore"
)

// stubProvider is an in-memory nba.StatsProvider with per-method call
// counting and fault injection.
type stubProvider struct {
	mu    sync.Mutex
	calls map[string]int
	errs  map[string]error

	rosters     map[int][]nba.RosterEntry
	gameLogs    map[string][]string
	finderGames map[int][]string
	boxscores   map[string][]nba.PlayerGameRecord
	possessions map[string]map[string]float64
	playerLogs  map[int][]nba.GameLogLine
	scoreboard  map[string][]nba.ScheduledGame

	lastScoreboardDate string

	// rosterGate, when set, blocks TeamRoster until closed.
	rosterGate chan struct{}
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		calls:       make(map[string]int),
		errs:        make(map[string]error),
		rosters:     make(map[int][]nba.RosterEntry),
		gameLogs:    make(map[string][]string),
		finderGames: make(map[int][]string),
		boxscores:   make(map[string][]nba.PlayerGameRecord),
		possessions: make(map[string]map[string]float64),
		playerLogs:  make(map[int][]nba.GameLogLine),
		scoreboard:  make(map[string][]nba.ScheduledGame),
	}
}

func (p *stubProvider) count(method string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[method]++
}

func (p *stubProvider) callCount(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

func (p *stubProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

func (p *stubProvider) setGameLog(teamID int, seasonType nba.SeasonType, ids []string) {
	p.gameLogs[fmt.Sprintf("%d_%s", teamID, seasonType)] = ids
}

func (p *stubProvider) TeamRoster(ctx context.Context, teamID int, season string) ([]nba.RosterEntry, error) {
	p.count("TeamRoster")
	if p.rosterGate != nil {
		<-p.rosterGate
	}
	if err := p.errs["TeamRoster"]; err != nil {
		return nil, err
	}
	return p.rosters[teamID], nil
}

func (p *stubProvider) TeamGameLog(ctx context.Context, teamID int, season string, seasonType nba.SeasonType) ([]string, error) {
	p.count("TeamGameLog")
	if err := p.errs["TeamGameLog"]; err != nil {
		return nil, err
	}
	return p.gameLogs[fmt.Sprintf("%d_%s", teamID, seasonType)], nil
}

func (p *stubProvider) FindTeamGames(ctx context.Context, teamID int, season string) ([]string, error) {
	p.count("FindTeamGames")
	if err := p.errs["FindTeamGames"]; err != nil {
		return nil, err
	}
	return p.finderGames[teamID], nil
}

func (p *stubProvider) BoxScore(ctx context.Context, gameID string) ([]nba.PlayerGameRecord, error) {
	p.count("BoxScore")
	if err := p.errs["BoxScore"]; err != nil {
		return nil, err
	}
	rows, ok := p.boxscores[gameID]
	if !ok {
		return nil, fmt.Errorf("no box score for game %s", gameID)
	}
	return rows, nil
}

func (p *stubProvider) TeamPossessions(ctx context.Context, gameID string) (map[string]float64, error) {
	p.count("TeamPossessions")
	if err := p.errs["TeamPossessions"]; err != nil {
		return nil, err
	}
	poss, ok := p.possessions[gameID]
	if !ok {
		return nil, fmt.Errorf("no advanced box score for game %s", gameID)
	}
	return poss, nil
}

func (p *stubProvider) PlayerGameLog(ctx context.Context, playerID int, season string) ([]nba.GameLogLine, error) {
	p.count("PlayerGameLog")
	if err := p.errs["PlayerGameLog"]; err != nil {
		return nil, err
	}
	lines, ok := p.playerLogs[playerID]
	if !ok {
		return nil, fmt.Errorf("no game log for player %d", playerID)
	}
	return lines, nil
}

func (p *stubProvider) Scoreboard(ctx context.Context, date string) ([]nba.ScheduledGame, error) {
	p.count("Scoreboard")
	p.mu.Lock()
	p.lastScoreboardDate = date
	p.mu.Unlock()
	if err := p.errs["Scoreboard"]; err != nil {
		return nil, err
	}
	return p.scoreboard[date], nil
}

// testStack wires the full service graph over a memory store and the
// stub provider.
type testStack struct {
	provider   *stubProvider
	store      *blobstore.MemoryStore
	registry   *nba.Registry
	cache      *CacheService
	rosters    *RosterService
	games      *GameService
	boxscores  *BoxscoreService
	defCache   *TeamDefenseCache
	defense    *DefenseService
	possession *PossessionService
	baseline   *BaselineService
	forms      *FormService
	matchups   *MatchupService
	schedule   *ScheduleService
	warmer     *CacheWarmer
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	provider := newStubProvider()
	retry := providers.RetryPolicy{Attempts: 1}
	store := blobstore.NewMemoryStore()
	registry := nba.NewRegistry()
	cache := NewCacheService(store, logger)
	rosters := NewRosterService(provider, registry, cache, retry, logger)
	games := NewGameService(provider, cache, retry, logger)
	boxscores := NewBoxscoreService(provider, cache, retry, logger)
	defCache := NewTeamDefenseCache(cache)
	defense := NewDefenseService(registry, rosters, games, boxscores, defCache, logger)
	possession := NewPossessionService(provider, registry, games, boxscores, cache, retry, logger)
	baseline := NewBaselineService(registry, possession, cache, logger)
	forms := NewFormService(provider, retry, logger)
	matchups := NewMatchupService(registry, rosters, forms, possession, baseline, 20.0, logger)
	schedule := NewScheduleService(provider, registry, retry, logger)
	warmer := NewCacheWarmer(defense, defCache, registry, logger)

	return &testStack{
		provider:   provider,
		store:      store,
		registry:   registry,
		cache:      cache,
		rosters:    rosters,
		games:      games,
		boxscores:  boxscores,
		defCache:   defCache,
		defense:    defense,
		possession: possession,
		baseline:   baseline,
		forms:      forms,
		matchups:   matchups,
		schedule:   schedule,
		warmer:     warmer,
	}
}

const (
	bosID = 1610612738
	lalID = 1610612747
	nykID = 1610612752
)

func testFilters() nba.DefenseFilters {
	return nba.DefenseFilters{
		Season:      "2025-26",
		ExcludeDNP:  true,
		RoleMode:    nba.RoleModeStart,
		SeasonTypes: []nba.SeasonType{nba.RegularSeason},
	}
}

func strPtr(s string) *string { return &s }

// oppRow builds an opponent box-score row.
func oppRow(playerID int, team, minutes, startPos string, pts, reb, ast float64) nba.PlayerGameRecord {
	var minPtr, startPtr *string
	if minutes != "" {
		minPtr = strPtr(minutes)
	}
	if startPos != "" {
		startPtr = strPtr(startPos)
	}
	return nba.PlayerGameRecord{
		PlayerID:      playerID,
		TeamAbbr:      team,
		Minutes:       minPtr,
		StartPosition: startPtr,
		Points:        pts,
		Rebounds:      reb,
		Assists:       ast,
	}
}
