package podds

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// ConfidenceLevel is the four-tier classification of how trustworthy a
// simulation's consensus is
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceAvoid  ConfidenceLevel = "avoid"
)

// SimulationInput carries everything a run depends on. Two runs with equal
// inputs and Seeded=true produce identical results field for field.
type SimulationInput struct {
	HomeLambda   float64
	AwayLambda   float64
	HomeVariance float64 // Scales the jitter band for the home rate, 1.0 = default
	AwayVariance float64
	Trials       int   // 0 means Config.SimulationTrials
	Seed         int64 // Only honoured when Seeded is true
	Seeded       bool
}

// SimulationResult holds the empirical view of a match after N stochastic
// trials. Probabilities are counts over trials, in [0, 1].
type SimulationResult struct {
	Trials int `json:"trials"`

	HomeWinProb float64 `json:"homeWinProb"`
	DrawProb    float64 `json:"drawProb"`
	AwayWinProb float64 `json:"awayWinProb"`

	Over1p5 float64 `json:"over1p5"`
	Over2p5 float64 `json:"over2p5"`
	Over3p5 float64 `json:"over3p5"`
	BTTSYes float64 `json:"bttsYes"`

	AvgHomeGoals float64 `json:"avgHomeGoals"`
	AvgAwayGoals float64 `json:"avgAwayGoals"`

	// Population standard deviation of total goals per trial
	StdDeviation float64 `json:"stdDeviation"`

	// ChaosIndex rescales StdDeviation into [0, 1]
	ChaosIndex float64 `json:"chaosIndex"`

	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`

	TopScores []ScoreProbability `json:"topScores"`
}

// Simulate runs the Monte Carlo engine over one match. Each trial jitters the
// two rates by a uniform band (±LambdaJitter scaled by the side's variance
// factor) and samples goals from the perturbed Poissons, modelling
// match-to-match variance beyond what a pure Poisson allows.
//
// The generator is owned by the run: parallel simulations never share RNG
// state, and a seeded run is bit-for-bit reproducible.
func Simulate(in SimulationInput) *SimulationResult {
	trials := in.Trials
	if trials <= 0 {
		trials = Config.SimulationTrials
	}

	homeLambda := clampLambda(in.HomeLambda)
	awayLambda := clampLambda(in.AwayLambda)

	homeVariance := in.HomeVariance
	if homeVariance <= 0 {
		homeVariance = 1.0
	}
	awayVariance := in.AwayVariance
	if awayVariance <= 0 {
		awayVariance = 1.0
	}

	seed := in.Seed
	if !in.Seeded {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	gridMax := Config.GoalGridMax
	jitter := Config.LambdaJitter

	var homeWins, draws, awayWins int
	var over1p5, over2p5, over3p5, btts int
	var sumHome, sumAway int
	var sumTotal, sumTotalSq float64

	// Fixed-size tally grid keeps the top-score ranking deterministic
	scoreCounts := make([][]int, gridMax+1)
	for i := range scoreCounts {
		scoreCounts[i] = make([]int, gridMax+1)
	}

	for i := 0; i < trials; i++ {
		hl := jitterLambda(homeLambda, jitter*homeVariance, rng)
		al := jitterLambda(awayLambda, jitter*awayVariance, rng)

		h := poissonRandom(hl, rng)
		a := poissonRandom(al, rng)

		sumHome += h
		sumAway += a
		total := h + a
		sumTotal += float64(total)
		sumTotalSq += float64(total) * float64(total)

		if h > a {
			homeWins++
		} else if h == a {
			draws++
		} else {
			awayWins++
		}
		if total > 1 {
			over1p5++
		}
		if total > 2 {
			over2p5++
		}
		if total > 3 {
			over3p5++
		}
		if h > 0 && a > 0 {
			btts++
		}

		if h > gridMax {
			h = gridMax
		}
		if a > gridMax {
			a = gridMax
		}
		scoreCounts[h][a]++
	}

	n := float64(trials)
	meanTotal := sumTotal / n
	variance := sumTotalSq/n - meanTotal*meanTotal
	if variance < 0 {
		variance = 0
	}
	stdDev := math.Sqrt(variance)

	result := &SimulationResult{
		Trials:       trials,
		HomeWinProb:  float64(homeWins) / n,
		DrawProb:     float64(draws) / n,
		AwayWinProb:  float64(awayWins) / n,
		Over1p5:      float64(over1p5) / n,
		Over2p5:      float64(over2p5) / n,
		Over3p5:      float64(over3p5) / n,
		BTTSYes:      float64(btts) / n,
		AvgHomeGoals: float64(sumHome) / n,
		AvgAwayGoals: float64(sumAway) / n,
		StdDeviation: stdDev,
		ChaosIndex:   chaosIndex(stdDev),
		TopScores:    topScoresFromCounts(scoreCounts, trials, 5),
	}
	result.ConfidenceLevel = classifyConfidence(stdDev, maxOf3(result.HomeWinProb, result.DrawProb, result.AwayWinProb))

	return result
}

// jitterLambda perturbs a rate by a uniform factor in [1-band, 1+band]
func jitterLambda(lambda, band float64, rng *rand.Rand) float64 {
	factor := 1.0 + (rng.Float64()*2.0-1.0)*band
	return clampLambda(lambda * factor)
}

// poissonRandom generates a single random number from a Poisson distribution
// Uses Knuth's algorithm for small rates and a normal approximation above 30
func poissonRandom(lambda float64, rng *rand.Rand) int {
	if lambda < 30 {
		L := math.Exp(-lambda)
		k := 0
		p := 1.0
		for p > L {
			k++
			p *= rng.Float64()
		}
		return k - 1
	}
	normal := rng.NormFloat64()
	v := int(math.Round(lambda + math.Sqrt(lambda)*normal))
	if v < 0 {
		v = 0
	}
	return v
}

// chaosIndex maps the total-goals standard deviation onto [0, 1] between the
// configured floor and ceiling
func chaosIndex(stdDev float64) float64 {
	floor := Config.ChaosStdDevFloor
	ceil := Config.ChaosStdDevCeil
	if ceil <= floor {
		return 0
	}
	idx := (stdDev - floor) / (ceil - floor)
	if idx < 0 {
		return 0
	}
	if idx > 1 {
		return 1
	}
	return idx
}

// classifyConfidence buckets a run by how dispersed it was and how dominant
// the leading outcome is
func classifyConfidence(stdDev, maxOutcomeProb float64) ConfidenceLevel {
	switch {
	case maxOutcomeProb >= 0.55 && stdDev < 1.6:
		return ConfidenceHigh
	case maxOutcomeProb >= 0.45 && stdDev < 2.0:
		return ConfidenceMedium
	case maxOutcomeProb >= 0.38:
		return ConfidenceLow
	default:
		return ConfidenceAvoid
	}
}

// topScoresFromCounts ranks observed scorelines by frequency; grid iteration
// plus explicit tie-breaks keeps the order reproducible under a fixed seed
func topScoresFromCounts(counts [][]int, trials, n int) []ScoreProbability {
	scores := make([]ScoreProbability, 0, 32)
	for h := range counts {
		for a := range counts[h] {
			if counts[h][a] == 0 {
				continue
			}
			scores = append(scores, ScoreProbability{
				HomeGoals:   h,
				AwayGoals:   a,
				Probability: float64(counts[h][a]) / float64(trials),
			})
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Probability != scores[j].Probability {
			return scores[i].Probability > scores[j].Probability
		}
		if scores[i].HomeGoals != scores[j].HomeGoals {
			return scores[i].HomeGoals < scores[j].HomeGoals
		}
		return scores[i].AwayGoals < scores[j].AwayGoals
	})

	if len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

func maxOf3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
