package podds

// ScorelineOutcome pairs a fixture's most likely predicted scoreline with the
// result that actually happened, once the fixture has settled.
type ScorelineOutcome struct {
	FixtureID          string
	HomeTeam           string
	AwayTeam           string
	PredictedHomeGoals int
	PredictedAwayGoals int
	ActualHomeGoals    int
	ActualAwayGoals    int
}

// PredictionAccuracy holds accuracy metrics for a single settled fixture
type PredictionAccuracy struct {
	FixtureID           string
	HomeTeam            string
	AwayTeam            string
	ActualHomeGoals     int
	ActualAwayGoals     int
	PredictedHomeGoals  int
	PredictedAwayGoals  int
	ExactScoreCorrect   bool
	ResultCorrect       bool
	GoalDifferenceError int
	TotalGoalsError     int
}

// AggregateAccuracy holds aggregate prediction accuracy statistics
type AggregateAccuracy struct {
	TotalMatches           int
	ExactScoreAccuracy     float64 // Percentage
	ResultAccuracy         float64 // Percentage
	AverageGoalDiffError   float64
	AverageTotalGoalsError float64
}

// EvaluatePredictionAccuracy scores a single settled outcome.
// Returns nil when the outcome has not settled (negative goals).
func EvaluatePredictionAccuracy(outcome *ScorelineOutcome) *PredictionAccuracy {
	if outcome == nil || outcome.ActualHomeGoals < 0 || outcome.ActualAwayGoals < 0 {
		return nil
	}

	accuracy := &PredictionAccuracy{
		FixtureID:          outcome.FixtureID,
		HomeTeam:           outcome.HomeTeam,
		AwayTeam:           outcome.AwayTeam,
		ActualHomeGoals:    outcome.ActualHomeGoals,
		ActualAwayGoals:    outcome.ActualAwayGoals,
		PredictedHomeGoals: outcome.PredictedHomeGoals,
		PredictedAwayGoals: outcome.PredictedAwayGoals,
	}

	accuracy.ExactScoreCorrect = (accuracy.ActualHomeGoals == accuracy.PredictedHomeGoals &&
		accuracy.ActualAwayGoals == accuracy.PredictedAwayGoals)

	actualResult := scorelineResult(accuracy.ActualHomeGoals, accuracy.ActualAwayGoals)
	predictedResult := scorelineResult(accuracy.PredictedHomeGoals, accuracy.PredictedAwayGoals)
	accuracy.ResultCorrect = (actualResult == predictedResult)

	actualGoalDiff := accuracy.ActualHomeGoals - accuracy.ActualAwayGoals
	predictedGoalDiff := accuracy.PredictedHomeGoals - accuracy.PredictedAwayGoals
	accuracy.GoalDifferenceError = intAbs(actualGoalDiff - predictedGoalDiff)

	actualTotalGoals := accuracy.ActualHomeGoals + accuracy.ActualAwayGoals
	predictedTotalGoals := accuracy.PredictedHomeGoals + accuracy.PredictedAwayGoals
	accuracy.TotalGoalsError = intAbs(actualTotalGoals - predictedTotalGoals)

	return accuracy
}

// EvaluateAllPredictions evaluates prediction accuracy across multiple settled
// fixtures. Returns nil when nothing has settled yet.
func EvaluateAllPredictions(outcomes []*ScorelineOutcome) *AggregateAccuracy {
	var accuracies []*PredictionAccuracy

	for _, outcome := range outcomes {
		if accuracy := EvaluatePredictionAccuracy(outcome); accuracy != nil {
			accuracies = append(accuracies, accuracy)
		}
	}

	if len(accuracies) == 0 {
		return nil
	}

	aggregate := &AggregateAccuracy{
		TotalMatches: len(accuracies),
	}

	var exactScoreCount, resultCorrectCount int
	var totalGoalDiffError, totalGoalsError int

	for _, acc := range accuracies {
		if acc.ExactScoreCorrect {
			exactScoreCount++
		}
		if acc.ResultCorrect {
			resultCorrectCount++
		}
		totalGoalDiffError += acc.GoalDifferenceError
		totalGoalsError += acc.TotalGoalsError
	}

	aggregate.ExactScoreAccuracy = float64(exactScoreCount) / float64(aggregate.TotalMatches) * 100
	aggregate.ResultAccuracy = float64(resultCorrectCount) / float64(aggregate.TotalMatches) * 100
	aggregate.AverageGoalDiffError = float64(totalGoalDiffError) / float64(aggregate.TotalMatches)
	aggregate.AverageTotalGoalsError = float64(totalGoalsError) / float64(aggregate.TotalMatches)

	return aggregate
}

// scorelineResult returns "H" for home win, "D" for draw, "A" for away win
func scorelineResult(homeGoals, awayGoals int) string {
	if homeGoals > awayGoals {
		return "H"
	} else if homeGoals < awayGoals {
		return "A"
	}
	return "D"
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
