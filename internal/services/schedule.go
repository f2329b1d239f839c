package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
)

// ScheduleService lists the day's scheduled games. The league's
// scoreboard is keyed by US Eastern dates, so "today" is computed in
// that zone regardless of server locale.
type ScheduleService struct {
	provider nba.StatsProvider
	registry *nba.Registry
	retry    providers.RetryPolicy
	logger   *logrus.Logger

	now func() time.Time
}

func NewScheduleService(provider nba.StatsProvider, registry *nba.Registry, retry providers.RetryPolicy, logger *logrus.Logger) *ScheduleService {
	return &ScheduleService{
		provider: provider,
		registry: registry,
		retry:    retry,
		logger:   logger,
		now:      time.Now,
	}
}

// TodayMatches returns today's games with team ids resolved to names
// and abbreviations. An empty schedule day returns an empty slice, not
// an error.
func (s *ScheduleService) TodayMatches(ctx context.Context) ([]nba.ScheduledGame, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	date := s.now().In(loc).Format("01/02/2006")

	var games []nba.ScheduledGame
	err = s.retry.Do(ctx, "fetch scoreboard for "+date, func() error {
		var ferr error
		games, ferr = s.provider.Scoreboard(ctx, date)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	out := make([]nba.ScheduledGame, 0, len(games))
	for _, g := range games {
		if home, ok := s.registry.TeamByID(g.HomeTeamID); ok {
			g.HomeTeam = home.FullName
			g.HomeAbbr = home.Abbreviation
		}
		if away, ok := s.registry.TeamByID(g.AwayTeamID); ok {
			g.AwayTeam = away.FullName
			g.AwayAbbr = away.Abbreviation
		}
		out = append(out, g)
	}
	return out, nil
}
