package podds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictOutcomeMatrixSumsToOne(t *testing.T) {
	dist := PredictOutcome(1.5, 1.2)
	require.NotNil(t, dist)

	total := 0.0
	for h := range dist.Matrix {
		for a := range dist.Matrix[h] {
			total += dist.Matrix[h][a]
		}
	}
	assert.InDelta(t, 1.0, total, 1e-6, "Scoreline matrix should sum to 1 after renormalization")

	trio := dist.HomeWin + dist.Draw + dist.AwayWin
	assert.InDelta(t, 1.0, trio, 1e-6, "1X2 probabilities should sum to 1")
}

func TestPredictOutcomeOverUnderComplement(t *testing.T) {
	dist := PredictOutcome(1.8, 1.1)

	assert.InDelta(t, 1.0, dist.Over1p5+dist.Under(1.5), 1e-9)
	assert.InDelta(t, 1.0, dist.Over2p5+dist.Under(2.5), 1e-9)
	assert.InDelta(t, 1.0, dist.Over3p5+dist.Under(3.5), 1e-9)
	assert.InDelta(t, 1.0, dist.BTTSYes+dist.BTTSNo, 1e-9)

	// Overs are monotone in the line
	assert.Greater(t, dist.Over1p5, dist.Over2p5)
	assert.Greater(t, dist.Over2p5, dist.Over3p5)
}

func TestPredictOutcomeKnownRates(t *testing.T) {
	// Home 1.8, away 1.1: about 2.9 total expected goals. The over 2.5
	// probability of independent Poissons is ~0.55 and the Dixon-Coles
	// correction only nudges the low-scoring corner.
	dist := PredictOutcome(1.8, 1.1)

	t.Logf("Home=%.3f Draw=%.3f Away=%.3f Over2.5=%.3f BTTS=%.3f",
		dist.HomeWin, dist.Draw, dist.AwayWin, dist.Over2p5, dist.BTTSYes)

	assert.Greater(t, dist.HomeWin, dist.AwayWin, "The stronger attack at home should be favourite")
	assert.InDelta(t, 0.565, dist.Over2p5, 0.045)
	assert.Equal(t, 1, dist.PredictedHomeGoals)
	assert.Equal(t, 1, dist.PredictedAwayGoals)
}

func TestPredictOutcomeClampsDegenerateRates(t *testing.T) {
	dist := PredictOutcome(0, -3.5)
	require.NotNil(t, dist)

	assert.Equal(t, Config.MinGoalsFloor, dist.HomeExpectedGoals)
	assert.Equal(t, Config.MinGoalsFloor, dist.AwayExpectedGoals)

	// With both rates floored the 0-0 dominates
	assert.Equal(t, 0, dist.TopScores[0].HomeGoals)
	assert.Equal(t, 0, dist.TopScores[0].AwayGoals)

	huge := PredictOutcome(50, 1.0)
	assert.Equal(t, Config.MaxGoalsCap, huge.HomeExpectedGoals)
}

func TestDixonColesBoostsLowScoringDraws(t *testing.T) {
	// With negative rho the 0-0 and 1-1 cells gain mass relative to the
	// independent product, and 1-0/0-1 lose it
	lambda1, lambda2 := 1.2, 1.0
	rho := GetDixonColesRho()
	require.Negative(t, rho)

	assert.Greater(t, calculateTau(0, 0, lambda1, lambda2, rho), 1.0)
	assert.Greater(t, calculateTau(1, 1, lambda1, lambda2, rho), 1.0)
	assert.Less(t, calculateTau(1, 0, lambda1, lambda2, rho), 1.0)
	assert.Less(t, calculateTau(0, 1, lambda1, lambda2, rho), 1.0)
	assert.Equal(t, 1.0, calculateTau(2, 1, lambda1, lambda2, rho))
}

func TestTopScoresAreOrderedAndStable(t *testing.T) {
	dist := PredictOutcome(1.4, 1.4)
	require.Len(t, dist.TopScores, 5)

	for i := 1; i < len(dist.TopScores); i++ {
		assert.GreaterOrEqual(t, dist.TopScores[i-1].Probability, dist.TopScores[i].Probability,
			"Top scores must be in descending probability order")
	}

	// Symmetric rates give a symmetric matrix; the tie-break should put
	// the lower home score first among equals
	again := PredictOutcome(1.4, 1.4)
	assert.Equal(t, dist.TopScores, again.TopScores, "Identical inputs must rank identically")
}

func TestExpectedGoalsAppliesHomeAdvantage(t *testing.T) {
	home := BuildTeamStrengthProfile("h", 1.35, 1.35, 50, 12)
	away := BuildTeamStrengthProfile("a", 1.35, 1.35, 50, 12)

	homeLambda, awayLambda := ExpectedGoals(home, away)

	// Identical teams: the entire difference is the home advantage multiplier
	assert.InDelta(t, Config.HomeAdvantageMultiplier, homeLambda/awayLambda, 1e-9)
	assert.Greater(t, homeLambda, awayLambda)
}

func TestExpectedGoalsScalesWithLeakyOpponent(t *testing.T) {
	home := BuildTeamStrengthProfile("h", 1.5, 1.0, 52, 13)
	tight := BuildTeamStrengthProfile("a1", 1.0, 0.7, 48, 10)
	leaky := BuildTeamStrengthProfile("a2", 1.0, 2.0, 48, 10)

	vsTight, _ := ExpectedGoals(home, tight)
	vsLeaky, _ := ExpectedGoals(home, leaky)

	assert.Greater(t, vsLeaky, vsTight, "A leakier opponent should raise the attack rate")
}
