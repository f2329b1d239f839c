package nba

import "strings"

// Bucket is one of the four canonical role groups used to aggregate
// opposing players' production.
type Bucket string

const (
	BucketGuard   Bucket = "G"
	BucketForward Bucket = "F"
	BucketCenter  Bucket = "C"
	BucketOther   Bucket = "OTHER"
)

// Buckets lists every bucket in canonical order.
var Buckets = []Bucket{BucketGuard, BucketForward, BucketCenter, BucketOther}

// RoleMode selects which position source drives bucket assignment.
// It participates in every cache key that depends on bucket assignment.
type RoleMode string

const (
	// RoleModeStart uses only the game's lineup position; bench players
	// fall through to OTHER.
	RoleModeStart RoleMode = "start"
	// RoleModeRoster uses only the roster-listed position.
	RoleModeRoster RoleMode = "roster"
	// RoleModeEither prefers a known start position, else the roster one.
	RoleModeEither RoleMode = "either"
)

// ParseRoleMode normalizes a raw role-mode string, defaulting to either.
func ParseRoleMode(s string) RoleMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return RoleModeStart
	case "roster":
		return RoleModeRoster
	default:
		return RoleModeEither
	}
}

// positionAliases widens the accepted raw tokens so fewer rows land in OTHER.
var positionAliases = map[string]string{
	"GUARD":   "G",
	"GUA":     "G",
	"W":       "F",
	"WING":    "F",
	"FWD":     "F",
	"FORWARD": "F",
	"CENTER":  "C",
	"CTR":     "C",
	"BIG":     "C",
	"GF":      "G",
	"FG":      "F",
}

// NormalizePosition reduces a raw position string to its first token:
// the part before the first "-", "/", "," or space, uppercased, with
// aliases applied. Empty input normalizes to "UNK".
func NormalizePosition(pos string) string {
	raw := strings.ToUpper(strings.TrimSpace(pos))
	if raw == "" {
		return "UNK"
	}
	first := raw
	for _, sep := range []string{"-", "/", ",", " "} {
		first = strings.SplitN(first, sep, 2)[0]
	}
	if alias, ok := positionAliases[first]; ok {
		return alias
	}
	return first
}

// BucketForToken maps a normalized position token to its bucket.
func BucketForToken(token string) Bucket {
	switch token {
	case "PG", "SG", "G":
		return BucketGuard
	case "SF", "PF", "F":
		return BucketForward
	case "C":
		return BucketCenter
	}
	return BucketOther
}

// ChooseBucket classifies a player using the start-of-game position and
// the roster position according to the role mode.
func ChooseBucket(startPos, rosterPos string, mode RoleMode) Bucket {
	startTok := NormalizePosition(startPos)
	rosterTok := NormalizePosition(rosterPos)

	switch mode {
	case RoleModeStart:
		return BucketForToken(startTok)
	case RoleModeRoster:
		return BucketForToken(rosterTok)
	}

	primary := startTok
	if primary == "" || primary == "UNK" {
		primary = rosterTok
	}
	return BucketForToken(primary)
}
