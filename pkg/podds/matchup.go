package podds

// StyleMatchup describes how an ordered pair of playing styles is expected to
// tilt a match. Boosts are additive probability deltas on the base
// distribution; ChaosLevel summarizes how volatile the pairing tends to be.
// The table is fixed at startup, order matters (home vs away is asymmetric).
type StyleMatchup struct {
	HomeStyle    TeamStyle `yaml:"homeStyle"`
	AwayStyle    TeamStyle `yaml:"awayStyle"`
	BTTSBoost    float64   `yaml:"bttsBoost"`
	OverBoost    float64   `yaml:"overBoost"`
	HomeWinBoost float64   `yaml:"homeWinBoost"`
	AwayWinBoost float64   `yaml:"awayWinBoost"`
	DrawBoost    float64   `yaml:"drawBoost"`
	ChaosLevel   float64   `yaml:"chaosLevel"`
	Reasoning    string    `yaml:"reasoning"`
}

// matchupTable is indexed [home style][away style]. Values are tuned by hand
// against historical league data; they are deliberately small nudges, the
// Poisson model stays the dominant signal.
var matchupTable = [4][4]StyleMatchup{
	// Home: offensive
	{
		{HomeStyle: StyleOffensive, AwayStyle: StyleOffensive, BTTSBoost: 0.08, OverBoost: 0.09, HomeWinBoost: 0.01, AwayWinBoost: 0.01, DrawBoost: -0.02, ChaosLevel: 0.80,
			Reasoning: "Two attacking sides trading blows, goals at both ends likely"},
		{HomeStyle: StyleOffensive, AwayStyle: StyleCounter, BTTSBoost: 0.05, OverBoost: 0.03, HomeWinBoost: 0.02, AwayWinBoost: 0.03, DrawBoost: -0.05, ChaosLevel: 0.65,
			Reasoning: "Home pressure leaves space behind for the counter, open game"},
		{HomeStyle: StyleOffensive, AwayStyle: StyleDefensive, BTTSBoost: -0.04, OverBoost: -0.03, HomeWinBoost: 0.04, AwayWinBoost: -0.03, DrawBoost: -0.01, ChaosLevel: 0.35,
			Reasoning: "Siege against a low block, home side creates but away rarely scores"},
		{HomeStyle: StyleOffensive, AwayStyle: StyleChaotic, BTTSBoost: 0.07, OverBoost: 0.08, HomeWinBoost: 0.03, AwayWinBoost: 0.00, DrawBoost: -0.03, ChaosLevel: 0.85,
			Reasoning: "Attacking home side against an erratic defence, goals expected"},
	},
	// Home: counter
	{
		{HomeStyle: StyleCounter, AwayStyle: StyleOffensive, BTTSBoost: 0.06, OverBoost: 0.04, HomeWinBoost: 0.03, AwayWinBoost: 0.01, DrawBoost: -0.04, ChaosLevel: 0.70,
			Reasoning: "Away side dominates the ball, home side breaks at pace"},
		{HomeStyle: StyleCounter, AwayStyle: StyleCounter, BTTSBoost: -0.03, OverBoost: -0.05, HomeWinBoost: 0.00, AwayWinBoost: 0.00, DrawBoost: 0.05, ChaosLevel: 0.30,
			Reasoning: "Neither side wants the ball, stalemate until someone blinks"},
		{HomeStyle: StyleCounter, AwayStyle: StyleDefensive, BTTSBoost: -0.05, OverBoost: -0.07, HomeWinBoost: 0.01, AwayWinBoost: -0.01, DrawBoost: 0.04, ChaosLevel: 0.25,
			Reasoning: "Counter side has nothing to counter against a packed defence"},
		{HomeStyle: StyleCounter, AwayStyle: StyleChaotic, BTTSBoost: 0.04, OverBoost: 0.03, HomeWinBoost: 0.03, AwayWinBoost: -0.01, DrawBoost: -0.02, ChaosLevel: 0.60,
			Reasoning: "Erratic visitors leave gaps the counter punishes"},
	},
	// Home: defensive
	{
		{HomeStyle: StyleDefensive, AwayStyle: StyleOffensive, BTTSBoost: -0.03, OverBoost: -0.02, HomeWinBoost: -0.02, AwayWinBoost: 0.03, DrawBoost: -0.01, ChaosLevel: 0.40,
			Reasoning: "Home side absorbs pressure, away quality usually tells"},
		{HomeStyle: StyleDefensive, AwayStyle: StyleCounter, BTTSBoost: -0.05, OverBoost: -0.06, HomeWinBoost: 0.00, AwayWinBoost: 0.01, DrawBoost: 0.04, ChaosLevel: 0.25,
			Reasoning: "Low block against a side that waits, very few chances"},
		{HomeStyle: StyleDefensive, AwayStyle: StyleDefensive, BTTSBoost: -0.08, OverBoost: -0.10, HomeWinBoost: -0.01, AwayWinBoost: -0.01, DrawBoost: 0.06, ChaosLevel: 0.10,
			Reasoning: "Two low blocks cancelling out, strong under and draw lean"},
		{HomeStyle: StyleDefensive, AwayStyle: StyleChaotic, BTTSBoost: 0.02, OverBoost: 0.01, HomeWinBoost: 0.02, AwayWinBoost: 0.00, DrawBoost: -0.02, ChaosLevel: 0.50,
			Reasoning: "Organised home side should weather the chaos, but anything can happen"},
	},
	// Home: chaotic
	{
		{HomeStyle: StyleChaotic, AwayStyle: StyleOffensive, BTTSBoost: 0.08, OverBoost: 0.08, HomeWinBoost: 0.00, AwayWinBoost: 0.03, DrawBoost: -0.03, ChaosLevel: 0.85,
			Reasoning: "Leaky home defence against a clinical attack, high-event match"},
		{HomeStyle: StyleChaotic, AwayStyle: StyleCounter, BTTSBoost: 0.05, OverBoost: 0.04, HomeWinBoost: -0.01, AwayWinBoost: 0.03, DrawBoost: -0.02, ChaosLevel: 0.65,
			Reasoning: "Chaotic hosts commit forward and get hit on the break"},
		{HomeStyle: StyleChaotic, AwayStyle: StyleDefensive, BTTSBoost: 0.01, OverBoost: -0.01, HomeWinBoost: 0.00, AwayWinBoost: 0.01, DrawBoost: -0.01, ChaosLevel: 0.55,
			Reasoning: "Chaos blunted by organisation, still capable of a strange scoreline"},
		{HomeStyle: StyleChaotic, AwayStyle: StyleChaotic, BTTSBoost: 0.10, OverBoost: 0.10, HomeWinBoost: 0.01, AwayWinBoost: 0.01, DrawBoost: -0.02, ChaosLevel: 0.95,
			Reasoning: "Total coin flip with goals, the most volatile pairing in the table"},
	},
}

// LookupMatchup returns the interaction entry for an ordered style pair
func LookupMatchup(homeStyle, awayStyle TeamStyle) StyleMatchup {
	return matchupTable[styleIndex(homeStyle)][styleIndex(awayStyle)]
}

// ApplyMatchupOverrides replaces individual table entries, typically from a
// YAML tuning file at startup. Unknown style pairs are ignored.
func ApplyMatchupOverrides(overrides []StyleMatchup) {
	for _, o := range overrides {
		matchupTable[styleIndex(o.HomeStyle)][styleIndex(o.AwayStyle)] = o
	}
}

// ApplyMatchup returns a copy of the distribution with the matchup boosts
// added. The 1X2 trio is renormalized to sum to 1 afterwards; the over and
// BTTS markets are clamped to [0.05, 0.95] so a nudge can never manufacture
// certainty. The scoreline matrix is left untouched.
func ApplyMatchup(dist *OutcomeProbabilityDistribution, matchup StyleMatchup) *OutcomeProbabilityDistribution {
	adjusted := *dist

	homeWin := dist.HomeWin + matchup.HomeWinBoost
	draw := dist.Draw + matchup.DrawBoost
	awayWin := dist.AwayWin + matchup.AwayWinBoost

	// Floor before renormalizing so a large negative boost cannot push an
	// outcome below zero
	homeWin = floorAt(homeWin, 0.001)
	draw = floorAt(draw, 0.001)
	awayWin = floorAt(awayWin, 0.001)

	total := homeWin + draw + awayWin
	adjusted.HomeWin = homeWin / total
	adjusted.Draw = draw / total
	adjusted.AwayWin = awayWin / total

	adjusted.Over1p5 = clampMarket(dist.Over1p5 + matchup.OverBoost)
	adjusted.Over2p5 = clampMarket(dist.Over2p5 + matchup.OverBoost)
	adjusted.Over3p5 = clampMarket(dist.Over3p5 + matchup.OverBoost)

	adjusted.BTTSYes = clampMarket(dist.BTTSYes + matchup.BTTSBoost)
	adjusted.BTTSNo = 1.0 - adjusted.BTTSYes

	return &adjusted
}

// clampMarket keeps an adjusted single-market probability away from the
// degenerate extremes
func clampMarket(p float64) float64 {
	if p < 0.05 {
		return 0.05
	}
	if p > 0.95 {
		return 0.95
	}
	return p
}

func floorAt(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}
