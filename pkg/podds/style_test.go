package podds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTeamStyleOffensive(t *testing.T) {
	// High scoring, lots of shots, dominant possession
	style, confidence := ClassifyTeamStyle(2.1, 1.0, 58, 16)
	assert.Equal(t, StyleOffensive, style)
	assert.Greater(t, confidence, Config.StyleConfidenceFloor)
	assert.LessOrEqual(t, confidence, 1.0)
}

func TestClassifyTeamStyleCounter(t *testing.T) {
	// Scores without the ball
	style, _ := ClassifyTeamStyle(1.3, 1.3, 42, 10)
	assert.Equal(t, StyleCounter, style)
}

func TestClassifyTeamStyleDefensive(t *testing.T) {
	// Concedes almost nothing, scores little
	style, confidence := ClassifyTeamStyle(0.9, 0.8, 50, 12)
	assert.Equal(t, StyleDefensive, style)
	t.Logf("defensive confidence %.2f", confidence)
}

func TestClassifyTeamStyleChaotic(t *testing.T) {
	// Goals flying in at both ends
	style, _ := ClassifyTeamStyle(1.7, 1.9, 50, 13)
	assert.Equal(t, StyleChaotic, style)
}

func TestClassifyTeamStyleTieBreaksByPriority(t *testing.T) {
	// All-zero inputs score nothing anywhere; the fixed priority order must
	// still produce a deterministic winner with the floor confidence
	style, confidence := ClassifyTeamStyle(0, 0, 0, 0)
	assert.Equal(t, StyleOffensive, style)
	assert.Equal(t, Config.StyleConfidenceFloor, confidence)
}

func TestStyleConfidenceBounds(t *testing.T) {
	floor := Config.StyleConfidenceFloor

	// Clear winner with no runner-up gets full confidence
	assert.Equal(t, 1.0, styleConfidence(4, 0))
	// Dead heat collapses to the floor
	assert.Equal(t, floor, styleConfidence(3, 3))
	// Zero-score winner still gets the floor, never zero
	assert.Equal(t, floor, styleConfidence(0, -1))

	c := styleConfidence(3, 1)
	assert.Greater(t, c, floor)
	assert.Less(t, c, 1.0)
}

func TestBuildTeamStrengthProfileClampsInputs(t *testing.T) {
	profile := BuildTeamStrengthProfile("team-1", -1.0, -0.5, 140, -3)
	require.NotNil(t, profile)

	assert.Equal(t, "team-1", profile.TeamID)
	assert.Equal(t, 0.0, profile.GoalsForPerMatch)
	assert.Equal(t, 0.0, profile.GoalsAgainstPerMatch)
	assert.Equal(t, 100.0, profile.PossessionAvg)
	assert.Equal(t, 0.0, profile.ShotsPerMatch)
	assert.NotEmpty(t, profile.Style, "A degenerate profile still gets a style")
	assert.GreaterOrEqual(t, profile.StyleConfidence, Config.StyleConfidenceFloor)
}
