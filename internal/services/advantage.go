package services

import "math"

// epsilon guards divisions and the z denominator against degenerate
// baselines.
const epsilon = 1e-6

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// DeltaForm measures how far below the season average a player's
// trailing five-game average has dipped, normalized by the season
// average and clamped to [-1, 1]. Positive values mean a cold stretch,
// which a favorable matchup is more likely to correct.
func DeltaForm(seasonAvg, last5Avg float64) float64 {
	return Clamp((seasonAvg-last5Avg)/math.Max(seasonAvg, epsilon), -1, 1)
}

// AdvantageScore combines the opponent's positional weakness (the
// league z-score of production conceded) with the player's form delta.
func AdvantageScore(oppZ, seasonAvg, last5Avg float64) float64 {
	return round3(oppZ + DeltaForm(seasonAvg, last5Avg))
}
