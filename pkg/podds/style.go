package podds

// TeamStyle is a qualitative classification of how a team plays
type TeamStyle string

const (
	StyleOffensive TeamStyle = "offensive"
	StyleCounter   TeamStyle = "counter"
	StyleDefensive TeamStyle = "defensive"
	StyleChaotic   TeamStyle = "chaotic"
)

// stylePriority is the fixed tie-break order when two styles score equally
var stylePriority = []TeamStyle{StyleOffensive, StyleCounter, StyleDefensive, StyleChaotic}

// styleIndex maps a style to its row/column in the matchup table
func styleIndex(style TeamStyle) int {
	switch style {
	case StyleOffensive:
		return 0
	case StyleCounter:
		return 1
	case StyleDefensive:
		return 2
	case StyleChaotic:
		return 3
	}
	return 0
}

// TeamStrengthProfile holds the per-match season aggregates the engine works
// from, plus the derived style classification. Built fresh per analysis call,
// never persisted on its own.
type TeamStrengthProfile struct {
	TeamID               string
	GoalsForPerMatch     float64
	GoalsAgainstPerMatch float64
	PossessionAvg        float64 // Percent, 0-100
	ShotsPerMatch        float64
	Style                TeamStyle
	StyleConfidence      float64 // In [StyleConfidenceFloor, 1.0]
}

// ClassifyTeamStyle scores the four styles with a weighted point rubric and
// returns the winner plus a confidence derived from the top-two margin.
//
// Scoring bands:
//
//	Offensive: goals/match >= 1.8 -> +2, >= 1.4 -> +1; shots >= 14 -> +1; possession >= 55 -> +1
//	Counter:   possession <= 45 -> +2; goals/match >= 1.2 -> +1; shots <= 11 -> +1
//	Defensive: conceded/match <= 0.9 -> +2, <= 1.2 -> +1; goals/match <= 1.1 -> +1
//	Chaotic:   total goals/match >= 3.0 -> +2, >= 2.6 -> +1; conceded/match >= 1.6 -> +1
//
// Ties break by the fixed priority order offensive > counter > defensive > chaotic.
func ClassifyTeamStyle(goalsFor, goalsAgainst, possession, shots float64) (TeamStyle, float64) {
	scores := map[TeamStyle]int{}

	// Offensive
	if goalsFor >= 1.8 {
		scores[StyleOffensive] += 2
	} else if goalsFor >= 1.4 {
		scores[StyleOffensive]++
	}
	if shots >= 14 {
		scores[StyleOffensive]++
	}
	if possession >= 55 {
		scores[StyleOffensive]++
	}

	// Counter-attacking: scores without dominating the ball
	if possession > 0 && possession <= 45 {
		scores[StyleCounter] += 2
	}
	if goalsFor >= 1.2 {
		scores[StyleCounter]++
	}
	if shots > 0 && shots <= 11 {
		scores[StyleCounter]++
	}

	// Defensive
	if goalsAgainst > 0 && goalsAgainst <= 0.9 {
		scores[StyleDefensive] += 2
	} else if goalsAgainst > 0 && goalsAgainst <= 1.2 {
		scores[StyleDefensive]++
	}
	if goalsFor > 0 && goalsFor <= 1.1 {
		scores[StyleDefensive]++
	}

	// Chaotic: high-event matches at both ends
	totalGoals := goalsFor + goalsAgainst
	if totalGoals >= 3.0 {
		scores[StyleChaotic] += 2
	} else if totalGoals >= 2.6 {
		scores[StyleChaotic]++
	}
	if goalsAgainst >= 1.6 {
		scores[StyleChaotic]++
	}

	// Pick the winner in priority order so equal scores break deterministically
	best := stylePriority[0]
	bestScore := -1
	secondScore := -1
	for _, style := range stylePriority {
		s := scores[style]
		if s > bestScore {
			secondScore = bestScore
			bestScore = s
			best = style
		} else if s > secondScore {
			secondScore = s
		}
	}

	confidence := styleConfidence(bestScore, secondScore)
	return best, confidence
}

// styleConfidence turns the margin between the top two scores into a value in
// [StyleConfidenceFloor, 1.0]. A zero-score winner still gets the floor,
// never "no confidence".
func styleConfidence(top, second int) float64 {
	floor := Config.StyleConfidenceFloor
	if top <= 0 {
		return floor
	}
	if second < 0 {
		second = 0
	}
	margin := float64(top-second) / float64(top)
	confidence := floor + (1.0-floor)*margin
	if confidence < floor {
		confidence = floor
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// BuildTeamStrengthProfile derives a full profile, style included, from season
// aggregates
func BuildTeamStrengthProfile(teamID string, goalsFor, goalsAgainst, possession, shots float64) *TeamStrengthProfile {
	// Degenerate inputs are clamped, not rejected
	if goalsFor < 0 {
		goalsFor = 0
	}
	if goalsAgainst < 0 {
		goalsAgainst = 0
	}
	if possession < 0 {
		possession = 0
	} else if possession > 100 {
		possession = 100
	}
	if shots < 0 {
		shots = 0
	}

	style, confidence := ClassifyTeamStyle(goalsFor, goalsAgainst, possession, shots)

	return &TeamStrengthProfile{
		TeamID:               teamID,
		GoalsForPerMatch:     goalsFor,
		GoalsAgainstPerMatch: goalsAgainst,
		PossessionAvg:        possession,
		ShotsPerMatch:        shots,
		Style:                style,
		StyleConfidence:      confidence,
	}
}
