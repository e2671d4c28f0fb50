// Package winprob estimates live win probability and leverage for a match
// situation from score differential, innings remaining and the base-out
// state, using a run expectancy table of recent league averages.
package winprob

import (
	"math"

	"diamond-duel/internal/game"
)

// Historical home team win rate, applied as a small prior in close games.
const homeAdvantage = 0.54

// runExpectancy maps [outs][base occupancy bits] to expected runs until the
// end of the half-inning (2020-2023 league average). Bit 0 is first base.
var runExpectancy = [3][8]float64{
	{0.481, 0.859, 1.100, 1.437, 1.361, 1.784, 1.970, 2.292},
	{0.254, 0.509, 0.664, 0.888, 0.950, 1.140, 1.352, 1.541},
	{0.098, 0.214, 0.305, 0.421, 0.362, 0.561, 0.570, 0.772},
}

func baseBits(bases [3]bool) int {
	bits := 0
	for i, occupied := range bases {
		if occupied {
			bits |= 1 << i
		}
	}
	return bits
}

func expectedRuns(outs int, bases [3]bool) float64 {
	if outs < 0 || outs > 2 {
		return 0
	}
	return runExpectancy[outs][baseBits(bases)]
}

// Home returns the home team's win probability for the given situation.
func Home(s *game.GameState) float64 {
	return winProb(s.Inning, s.TopOfInning, s.Outs, s.Bases, s.HomeScore, s.AwayScore)
}

func winProb(inning int, top bool, outs int, bases [3]bool, homeScore, awayScore int) float64 {
	halvesRemaining := (9 - inning) * 2
	if !top {
		halvesRemaining++
	}

	if inning >= 9 && !top && homeScore > awayScore {
		return 1.0
	}
	if inning > 9 && top && homeScore != awayScore {
		if homeScore > awayScore {
			return 1.0
		}
		return 0.0
	}

	scoreDiff := float64(homeScore - awayScore)
	if halvesRemaining <= 0 {
		switch {
		case homeScore > awayScore:
			return 1.0
		case homeScore == awayScore:
			return 0.5
		default:
			return 0.0
		}
	}

	effectiveDiff := scoreDiff
	if top {
		effectiveDiff -= expectedRuns(outs, bases)
	} else {
		effectiveDiff += expectedRuns(outs, bases)
	}

	stdDev := 2.0 * math.Sqrt(math.Max(0.5, float64(halvesRemaining)))
	wp := sigmoid(effectiveDiff / stdDev)

	if math.Abs(scoreDiff) <= 2 && inning <= 5 {
		wp = wp*0.9 + homeAdvantage*0.1
	}
	return math.Max(0.0, math.Min(1.0, wp))
}

// Leverage approximates the leverage index: the average win probability
// swing across a walk, an out and a home run from the current situation,
// normalized so a typical plate appearance is ~1.0.
func Leverage(s *game.GameState) float64 {
	current := winProb(s.Inning, s.TopOfInning, s.Outs, s.Bases, s.HomeScore, s.AwayScore)
	homeBatting := !s.TopOfInning
	var swings []float64

	walkBases := [3]bool{true, s.Bases[0] || s.Bases[1], s.Bases[2]}
	walkRuns := 0
	if s.Bases[2] {
		walkRuns = 1
	}
	walkHome, walkAway := s.HomeScore, s.AwayScore
	if homeBatting {
		walkHome += walkRuns
	} else {
		walkAway += walkRuns
	}
	swings = append(swings, math.Abs(winProb(s.Inning, s.TopOfInning, s.Outs, walkBases, walkHome, walkAway)-current))

	if s.Outs+1 <= 2 {
		swings = append(swings, math.Abs(winProb(s.Inning, s.TopOfInning, s.Outs+1, s.Bases, s.HomeScore, s.AwayScore)-current))
	}

	hrRuns := 1 + s.RunnersOn()
	hrHome, hrAway := s.HomeScore, s.AwayScore
	if homeBatting {
		hrHome += hrRuns
	} else {
		hrAway += hrRuns
	}
	swings = append(swings, math.Abs(winProb(s.Inning, s.TopOfInning, s.Outs, [3]bool{}, hrHome, hrAway)-current))

	total := 0.0
	for _, swing := range swings {
		total += swing
	}
	avg := total / float64(len(swings))

	// A typical plate appearance moves win probability about 5%.
	return math.Max(0.0, avg/0.05)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
