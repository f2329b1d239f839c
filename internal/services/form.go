package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"hooplens/internal/nba"
	"hooplens/internal/providers"
)

// FormService summarizes a player's recent form from their season game
// log. The trailing average is strictly backward-looking: the window for
// a game covers up to five games played before it, never the game
// itself.
type FormService struct {
	provider nba.StatsProvider
	retry    providers.RetryPolicy
	logger   *logrus.Logger
}

func NewFormService(provider nba.StatsProvider, retry providers.RetryPolicy, logger *logrus.Logger) *FormService {
	return &FormService{provider: provider, retry: retry, logger: logger}
}

// Form computes the player's latest-game form line per tracked stat.
func (s *FormService) Form(ctx context.Context, playerID int, season string) (nba.PlayerForm, error) {
	var lines []nba.GameLogLine
	err := s.retry.Do(ctx, fmt.Sprintf("fetch game log for player %d", playerID), func() error {
		var ferr error
		lines, ferr = s.provider.PlayerGameLog(ctx, playerID, season)
		return ferr
	})
	if err != nil {
		return nba.PlayerForm{}, err
	}

	form := nba.PlayerForm{
		PlayerID: playerID,
		Season:   season,
		Games:    len(lines),
		Stats:    make(map[nba.Stat]nba.FormLine, len(nba.FormStats)),
	}
	if len(lines) == 0 {
		for _, stat := range nba.FormStats {
			form.Stats[stat] = nba.FormLine{}
		}
		return form, nil
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].GameDate.Before(lines[j].GameDate)
	})
	last := lines[len(lines)-1]
	prior := lines[:len(lines)-1]
	if len(prior) > 5 {
		prior = prior[len(prior)-5:]
	}

	for _, stat := range nba.FormStats {
		value := last.Value(stat)

		var seasonSum float64
		for _, l := range lines {
			seasonSum += l.Value(stat)
		}
		seasonAvg := seasonSum / float64(len(lines))

		// The window never includes the game's own value; a first game
		// has no trailing window at all and averages to zero.
		last5 := 0.0
		if len(prior) > 0 {
			var sum float64
			for _, l := range prior {
				sum += l.Value(stat)
			}
			last5 = sum / float64(len(prior))
		}

		form.Stats[stat] = nba.FormLine{
			Value:     value,
			Last5Avg:  round2(last5),
			SeasonAvg: round2(seasonAvg),
			UnderAvg:  value < last5,
		}
	}
	return form, nil
}
