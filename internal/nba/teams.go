package nba

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Registry is the static team lookup table, loaded once per process and
// treated as read-only afterwards.
type Registry struct {
	teams      []Team
	byAbbr     map[string]Team
	byID       map[int]Team
	byFullName map[string]Team
}

// NewRegistry builds the registry from the league's current 30 teams.
func NewRegistry() *Registry {
	r := &Registry{
		teams:      leagueTeams,
		byAbbr:     make(map[string]Team, len(leagueTeams)),
		byID:       make(map[int]Team, len(leagueTeams)),
		byFullName: make(map[string]Team, len(leagueTeams)),
	}
	for _, t := range leagueTeams {
		r.byAbbr[t.Abbreviation] = t
		r.byID[t.ID] = t
		r.byFullName[strings.ToLower(t.FullName)] = t
	}
	return r
}

// Teams returns all registry entries.
func (r *Registry) Teams() []Team {
	out := make([]Team, len(r.teams))
	copy(out, r.teams)
	return out
}

// Abbreviations returns every team abbreviation, sorted.
func (r *Registry) Abbreviations() []string {
	out := make([]string, 0, len(r.byAbbr))
	for abbr := range r.byAbbr {
		out = append(out, abbr)
	}
	sort.Strings(out)
	return out
}

// TeamByID looks up a team by its numeric league id.
func (r *Registry) TeamByID(id int) (Team, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Resolve maps a team identifier to its registry entry. It accepts an
// abbreviation, a full name (case-insensitive), a substring of the full
// name when exactly one team matches, or a numeric team id. Ambiguous
// substrings are rejected rather than arbitrarily chosen.
func (r *Registry) Resolve(identifier string) (Team, error) {
	ident := strings.TrimSpace(identifier)
	if ident == "" {
		return Team{}, &NotFoundError{Message: "team identifier must be provided"}
	}
	if t, ok := r.byAbbr[strings.ToUpper(ident)]; ok {
		return t, nil
	}
	if id, err := strconv.Atoi(ident); err == nil {
		if t, ok := r.byID[id]; ok {
			return t, nil
		}
		return Team{}, &NotFoundError{Message: fmt.Sprintf("no team with id %d", id)}
	}
	lower := strings.ToLower(ident)
	if t, ok := r.byFullName[lower]; ok {
		return t, nil
	}
	var matches []Team
	for _, t := range r.teams {
		if strings.Contains(strings.ToLower(t.FullName), lower) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Team{}, &NotFoundError{Message: fmt.Sprintf("team %q not found", identifier)}
	default:
		return Team{}, &NotFoundError{Message: fmt.Sprintf("team %q is ambiguous (%d matches)", identifier, len(matches))}
	}
}

var leagueTeams = []Team{
	{ID: 1610612737, FullName: "Atlanta Hawks", Abbreviation: "ATL"},
	{ID: 1610612738, FullName: "Boston Celtics", Abbreviation: "BOS"},
	{ID: 1610612751, FullName: "Brooklyn Nets", Abbreviation: "BKN"},
	{ID: 1610612766, FullName: "Charlotte Hornets", Abbreviation: "CHA"},
	{ID: 1610612741, FullName: "Chicago Bulls", Abbreviation: "CHI"},
	{ID: 1610612739, FullName: "Cleveland Cavaliers", Abbreviation: "CLE"},
	{ID: 1610612742, FullName: "Dallas Mavericks", Abbreviation: "DAL"},
	{ID: 1610612743, FullName: "Denver Nuggets", Abbreviation: "DEN"},
	{ID: 1610612765, FullName: "Detroit Pistons", Abbreviation: "DET"},
	{ID: 1610612744, FullName: "Golden State Warriors", Abbreviation: "GSW"},
	{ID: 1610612745, FullName: "Houston Rockets", Abbreviation: "HOU"},
	{ID: 1610612754, FullName: "Indiana Pacers", Abbreviation: "IND"},
	{ID: 1610612746, FullName: "Los Angeles Clippers", Abbreviation: "LAC"},
	{ID: 1610612747, FullName: "Los Angeles Lakers", Abbreviation: "LAL"},
	{ID: 1610612763, FullName: "Memphis Grizzlies", Abbreviation: "MEM"},
	{ID: 1610612748, FullName: "Miami Heat", Abbreviation: "MIA"},
	{ID: 1610612749, FullName: "Milwaukee Bucks", Abbreviation: "MIL"},
	{ID: 1610612750, FullName: "Minnesota Timberwolves", Abbreviation: "MIN"},
	{ID: 1610612740, FullName: "New Orleans Pelicans", Abbreviation: "NOP"},
	{ID: 1610612752, FullName: "New York Knicks", Abbreviation: "NYK"},
	{ID: 1610612760, FullName: "Oklahoma City Thunder", Abbreviation: "OKC"},
	{ID: 1610612753, FullName: "Orlando Magic", Abbreviation: "ORL"},
	{ID: 1610612755, FullName: "Philadelphia 76ers", Abbreviation: "PHI"},
	{ID: 1610612756, FullName: "Phoenix Suns", Abbreviation: "PHX"},
	{ID: 1610612757, FullName: "Portland Trail Blazers", Abbreviation: "POR"},
	{ID: 1610612758, FullName: "Sacramento Kings", Abbreviation: "SAC"},
	{ID: 1610612759, FullName: "San Antonio Spurs", Abbreviation: "SAS"},
	{ID: 1610612761, FullName: "Toronto Raptors", Abbreviation: "TOR"},
	{ID: 1610612762, FullName: "Utah Jazz", Abbreviation: "UTA"},
	{ID: 1610612764, FullName: "Washington Wizards", Abbreviation: "WAS"},
}
