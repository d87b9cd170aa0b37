package podds

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recommendation is the action tier attached to a value assessment
type Recommendation string

const (
	RecommendSkip      Recommendation = "skip"
	RecommendConsider  Recommendation = "consider"
	RecommendBet       Recommendation = "bet"
	RecommendStrongBet Recommendation = "strong_bet"
)

// RiskTier classifies the size of the capped Kelly fraction
type RiskTier string

const (
	RiskLow     RiskTier = "low"
	RiskMedium  RiskTier = "medium"
	RiskHigh    RiskTier = "high"
	RiskExtreme RiskTier = "extreme"
)

// KellyStake holds the staking arithmetic for one assessment. Stakes are
// money, so they are computed and reported as decimals.
type KellyStake struct {
	Full           float64         // Raw Kelly fraction f* = (b*p - q) / b
	Fractional     float64         // f* scaled by KellyFraction, then capped
	SuggestedStake decimal.Decimal // Fractional * bankroll, capped by MaxSingleBet
}

// ValueAssessment is the full pricing verdict for one market/pick
type ValueAssessment struct {
	Market           string
	Pick             string
	ModelProbability float64 // Percent, after any calibration adjustment
	FairOdds         float64
	MarketOdds       float64
	EdgePercent      float64
	Kelly            KellyStake
	RiskTier         RiskTier
	Recommendation   Recommendation
	Warnings         []string
}

// AssessValue prices one market. modelProbability is a percentage (0-100),
// marketOdds a decimal price. adjustments, when present, supplies the
// per-market calibration multiplier applied to the raw probability before
// anything else. A non-positive Kelly fraction is not an error: it produces a
// zero-stake skip with an explicit warning.
func AssessValue(market, pick string, modelProbability, marketOdds, bankroll float64, adjustments map[string]float64) (*ValueAssessment, error) {
	if marketOdds <= 1.0 {
		return nil, fmt.Errorf("market odds must exceed 1.0, got %.3f for %s/%s", marketOdds, market, pick)
	}
	if bankroll < 0 {
		return nil, fmt.Errorf("bankroll cannot be negative, got %.2f", bankroll)
	}

	adjusted := modelProbability
	if multiplier, ok := adjustments[market]; ok && multiplier > 0 {
		adjusted = modelProbability * multiplier
	}
	// Keep the working probability away from the degenerate extremes
	if adjusted < 1.0 {
		adjusted = 1.0
	}
	if adjusted > 99.0 {
		adjusted = 99.0
	}

	p := adjusted / 100.0
	q := 1.0 - p
	b := marketOdds - 1.0

	assessment := &ValueAssessment{
		Market:           market,
		Pick:             pick,
		ModelProbability: adjusted,
		FairOdds:         1.0 / p,
		MarketOdds:       marketOdds,
		EdgePercent:      (p*marketOdds - 1.0) * 100.0,
	}

	fullKelly := (b*p - q) / b
	assessment.Kelly.Full = fullKelly

	if fullKelly <= 0 {
		assessment.Kelly.Fractional = 0
		assessment.Kelly.SuggestedStake = decimal.Zero
		assessment.RiskTier = RiskLow
		assessment.Recommendation = RecommendSkip
		assessment.Warnings = append(assessment.Warnings, "-EV, do not bet")
		return assessment, nil
	}

	fractional := fullKelly * Config.KellyFraction
	if fractional > Config.MaxBetPercentage {
		fractional = Config.MaxBetPercentage
	}
	assessment.Kelly.Fractional = fractional

	stake := decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(fractional)).Round(2)
	maxBet := decimal.NewFromFloat(Config.MaxSingleBet)
	if stake.GreaterThan(maxBet) {
		stake = maxBet
		assessment.Warnings = append(assessment.Warnings, fmt.Sprintf("stake capped at absolute maximum %.2f", Config.MaxSingleBet))
	}
	assessment.Kelly.SuggestedStake = stake

	assessment.RiskTier = riskTier(fractional)
	assessment.Recommendation = recommend(assessment.EdgePercent)

	if fractional == Config.MaxBetPercentage {
		assessment.Warnings = append(assessment.Warnings, "Kelly fraction hit the bankroll percentage cap")
	}

	return assessment, nil
}

// riskTier buckets the capped fraction: >10% extreme, >5% high, >2% medium
func riskTier(fraction float64) RiskTier {
	switch {
	case fraction > 0.10:
		return RiskExtreme
	case fraction > 0.05:
		return RiskHigh
	case fraction > 0.02:
		return RiskMedium
	default:
		return RiskLow
	}
}

// recommend ladders the positive-edge cases by edge size
func recommend(edgePercent float64) Recommendation {
	switch {
	case edgePercent >= 10.0:
		return RecommendStrongBet
	case edgePercent >= 4.0:
		return RecommendBet
	case edgePercent > 0:
		return RecommendConsider
	default:
		return RecommendSkip
	}
}
