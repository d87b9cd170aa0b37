package podds

import (
	"math"
	"sort"
)

// ScoreProbability pairs an exact scoreline with its probability
type ScoreProbability struct {
	HomeGoals   int
	AwayGoals   int
	Probability float64
}

// OutcomeProbabilityDistribution is the closed-form Poisson view of a match:
// the full scoreline matrix over the truncated goal grid plus every derived
// market the engine prices. All probabilities are in [0, 1].
type OutcomeProbabilityDistribution struct {
	HomeExpectedGoals float64
	AwayExpectedGoals float64

	// Matrix[h][a] is the probability of the exact scoreline h-a
	Matrix [][]float64

	HomeWin float64
	Draw    float64
	AwayWin float64

	Over1p5 float64
	Over2p5 float64
	Over3p5 float64

	BTTSYes float64
	BTTSNo  float64

	// TopScores are the most likely scorelines, descending
	TopScores []ScoreProbability

	// Most likely marginal goal counts per side
	PredictedHomeGoals int
	PredictedAwayGoals int
}

// Under returns the complement of the over probability at the given line
func (d *OutcomeProbabilityDistribution) Under(line float64) float64 {
	switch line {
	case 1.5:
		return 1.0 - d.Over1p5
	case 2.5:
		return 1.0 - d.Over2p5
	case 3.5:
		return 1.0 - d.Over3p5
	}
	return 0
}

// PredictOutcome builds the full outcome distribution for a match from the two
// expected-goals rates. The rates are assumed to already carry home advantage
// and form adjustments; see ExpectedGoals for the standard derivation.
// Fully deterministic, no randomness involved.
func PredictOutcome(homeLambda, awayLambda float64) *OutcomeProbabilityDistribution {
	homeLambda = clampLambda(homeLambda)
	awayLambda = clampLambda(awayLambda)

	gridMax := Config.GoalGridMax

	homeProbs := poissonVector(homeLambda, gridMax)
	awayProbs := poissonVector(awayLambda, gridMax)

	matrix := createProbabilityMatrix(homeProbs, awayProbs)
	matrix = dixonColesCorrection(matrix, homeLambda, awayLambda)

	dist := &OutcomeProbabilityDistribution{
		HomeExpectedGoals: homeLambda,
		AwayExpectedGoals: awayLambda,
		Matrix:            matrix,
	}
	dist.deriveMarkets()
	return dist
}

// clampLambda keeps expected goals inside the configured floor and cap so a
// zero or negative rate never collapses the distribution
func clampLambda(lambda float64) float64 {
	if lambda < Config.MinGoalsFloor {
		return Config.MinGoalsFloor
	}
	if lambda > Config.MaxGoalsCap {
		return Config.MaxGoalsCap
	}
	return lambda
}

// poissonVector returns P(X=k) for k in 0..maxGoals under Poisson(lambda)
func poissonVector(lambda float64, maxGoals int) []float64 {
	probs := make([]float64, maxGoals+1)
	// Iterative PMF avoids factorial overflow on the larger grid entries
	p := math.Exp(-lambda)
	for k := 0; k <= maxGoals; k++ {
		probs[k] = p
		p = p * lambda / float64(k+1)
	}
	return probs
}

// createProbabilityMatrix forms the joint scoreline matrix as the outer
// product of the two marginal goal distributions
func createProbabilityMatrix(homeProbs, awayProbs []float64) [][]float64 {
	matrix := make([][]float64, len(homeProbs))
	for i := range homeProbs {
		matrix[i] = make([]float64, len(awayProbs))
		for j := range awayProbs {
			matrix[i][j] = homeProbs[i] * awayProbs[j]
		}
	}
	return matrix
}

// dixonColesCorrection adjusts the low-scoring corner of the matrix where
// independent Poisson margins are known to misprice draws, then renormalizes
func dixonColesCorrection(matrix [][]float64, homeExpected, awayExpected float64) [][]float64 {
	rho := GetDixonColesRho()

	if len(matrix) > 1 && len(matrix[0]) > 1 {
		matrix[0][0] *= calculateTau(0, 0, homeExpected, awayExpected, rho)
		matrix[1][0] *= calculateTau(1, 0, homeExpected, awayExpected, rho)
		matrix[0][1] *= calculateTau(0, 1, homeExpected, awayExpected, rho)
		matrix[1][1] *= calculateTau(1, 1, homeExpected, awayExpected, rho)
	}

	return renormalizeMatrix(matrix)
}

// calculateTau computes the Dixon-Coles correction factor for specific scorelines
func calculateTau(homeGoals, awayGoals int, lambda1, lambda2, rho float64) float64 {
	if homeGoals == 0 && awayGoals == 0 {
		return 1 - lambda1*lambda2*rho
	} else if homeGoals == 0 && awayGoals == 1 {
		return 1 + lambda1*rho
	} else if homeGoals == 1 && awayGoals == 0 {
		return 1 + lambda2*rho
	} else if homeGoals == 1 && awayGoals == 1 {
		return 1 - rho
	}
	return 1.0
}

// renormalizeMatrix rescales so the whole grid sums to exactly 1, which also
// absorbs the truncation loss beyond the grid
func renormalizeMatrix(matrix [][]float64) [][]float64 {
	total := 0.0
	for i := range matrix {
		for j := range matrix[i] {
			total += matrix[i][j]
		}
	}

	if total > 0 {
		for i := range matrix {
			for j := range matrix[i] {
				matrix[i][j] /= total
			}
		}
	}

	return matrix
}

// deriveMarkets fills every aggregate market from the scoreline matrix
func (d *OutcomeProbabilityDistribution) deriveMarkets() {
	var homeWin, draw, awayWin float64
	var over1p5, over2p5, over3p5 float64
	var btts float64

	for h := range d.Matrix {
		for a := range d.Matrix[h] {
			p := d.Matrix[h][a]
			if h > a {
				homeWin += p
			} else if h == a {
				draw += p
			} else {
				awayWin += p
			}
			total := h + a
			if total > 1 {
				over1p5 += p
			}
			if total > 2 {
				over2p5 += p
			}
			if total > 3 {
				over3p5 += p
			}
			if h > 0 && a > 0 {
				btts += p
			}
		}
	}

	d.HomeWin = homeWin
	d.Draw = draw
	d.AwayWin = awayWin
	d.Over1p5 = over1p5
	d.Over2p5 = over2p5
	d.Over3p5 = over3p5
	d.BTTSYes = btts
	d.BTTSNo = 1.0 - btts

	d.TopScores = topScoresFromMatrix(d.Matrix, 5)
	d.PredictedHomeGoals = mostLikelyMarginalGoals(d.Matrix, true)
	d.PredictedAwayGoals = mostLikelyMarginalGoals(d.Matrix, false)
}

// topScoresFromMatrix ranks scorelines by probability, ties broken by the
// lower scoreline so output order is stable
func topScoresFromMatrix(matrix [][]float64, n int) []ScoreProbability {
	scores := make([]ScoreProbability, 0, len(matrix)*len(matrix))
	for h := range matrix {
		for a := range matrix[h] {
			scores = append(scores, ScoreProbability{HomeGoals: h, AwayGoals: a, Probability: matrix[h][a]})
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

// mostLikelyMarginalGoals finds the goal count with the highest marginal
// probability for one side of the matrix
func mostLikelyMarginalGoals(matrix [][]float64, isHome bool) int {
	maxProb := 0.0
	mostLikely := 0

	if isHome {
		for homeGoals := range matrix {
			prob := 0.0
			for awayGoals := range matrix[homeGoals] {
				prob += matrix[homeGoals][awayGoals]
			}
			if prob > maxProb {
				maxProb = prob
				mostLikely = homeGoals
			}
		}
	} else {
		for awayGoals := range matrix[0] {
			prob := 0.0
			for homeGoals := range matrix {
				prob += matrix[homeGoals][awayGoals]
			}
			if prob > maxProb {
				maxProb = prob
				mostLikely = awayGoals
			}
		}
	}

	return mostLikely
}

// ExpectedGoals derives the two raw expected-goals rates from a pair of team
// profiles. Attack rate is scaled by how leaky the opponent is relative to the
// league baseline, and the home side gets the configured home advantage.
// Callers layer any recent-form multiplier on top of these before prediction.
func ExpectedGoals(home, away *TeamStrengthProfile) (homeLambda, awayLambda float64) {
	leagueAvg := Config.LeagueAvgGoalsPerGame
	if leagueAvg <= 0 {
		leagueAvg = 1.35
	}

	homeLambda = home.GoalsForPerMatch * (away.GoalsAgainstPerMatch / leagueAvg) * Config.HomeAdvantageMultiplier
	awayLambda = away.GoalsForPerMatch * (home.GoalsAgainstPerMatch / leagueAvg)

	return clampLambda(homeLambda), clampLambda(awayLambda)
}
