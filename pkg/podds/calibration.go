package podds

import (
	"time"
)

// CalibrationRecord is one settled prediction: what the engine said would
// happen with what probability, and whether it did. The log is append-only
// and lives in a CalibrationStore; the engine only ever reads a window of it.
type CalibrationRecord struct {
	FixtureID            string
	Market               string
	PredictedProbability float64 // In [0, 1]
	RealizedOutcome      int     // 1 if the pick landed, 0 if it did not
	CreatedAt            time.Time
}

// CalibrationQuality is the qualitative banding of a Brier score
type CalibrationQuality string

const (
	CalibrationExcellent    CalibrationQuality = "excellent"
	CalibrationGood         CalibrationQuality = "good"
	CalibrationAcceptable   CalibrationQuality = "acceptable"
	CalibrationPoor         CalibrationQuality = "poor"
	CalibrationInsufficient CalibrationQuality = "insufficient"
)

// CalibrationBin is one cell of the ten-bin reliability curve
type CalibrationBin struct {
	RangeStart   float64
	RangeEnd     float64
	Count        int
	AvgPredicted float64
	ActualRate   float64
}

// CalibrationReport scores how well past probability outputs matched reality
// and derives the per-market correction multipliers fed into the next run's
// value assessments.
type CalibrationReport struct {
	SampleSize int
	BrierScore float64

	Calibration      CalibrationQuality
	InsufficientData bool

	// Positive means the system claims more confidence than results support
	OverconfidenceIndex float64

	// Standard Brier decomposition terms
	ReliabilityScore float64
	ResolutionScore  float64

	CalibrationCurve [10]CalibrationBin

	// Market -> multiplier to apply to future raw probabilities. Only present
	// for markets with enough samples in the window.
	SuggestedAdjustments map[string]float64

	// HitRate is the share of records where the favoured side of the
	// prediction matched the outcome
	HitRate float64
}

// Calibrate computes the full report from a batch of settled records. Below
// the minimum sample size it returns a neutral report flagged insufficient:
// corrections learned from noise must never be applied.
func Calibrate(records []*CalibrationRecord) *CalibrationReport {
	report := &CalibrationReport{
		SampleSize:           len(records),
		SuggestedAdjustments: map[string]float64{},
	}
	for i := range report.CalibrationCurve {
		report.CalibrationCurve[i].RangeStart = float64(i) / 10.0
		report.CalibrationCurve[i].RangeEnd = float64(i+1) / 10.0
	}

	if len(records) < Config.MinCalibrationSamples {
		report.InsufficientData = true
		report.Calibration = CalibrationInsufficient
		return report
	}

	n := float64(len(records))

	// Brier score and hit rate in one pass
	var brierSum float64
	var hits int
	var baseRateSum float64
	for _, rec := range records {
		diff := rec.PredictedProbability - float64(rec.RealizedOutcome)
		brierSum += diff * diff
		baseRateSum += float64(rec.RealizedOutcome)

		favoured := 0
		if rec.PredictedProbability >= 0.5 {
			favoured = 1
		}
		if favoured == rec.RealizedOutcome {
			hits++
		}
	}
	report.BrierScore = brierSum / n
	report.HitRate = float64(hits) / n
	baseRate := baseRateSum / n

	// Ten equal-width bins over predicted probability
	binPred := make([]float64, 10)
	binActual := make([]float64, 10)
	binCount := make([]int, 10)
	for _, rec := range records {
		bin := int(rec.PredictedProbability * 10)
		if bin > 9 {
			bin = 9
		}
		if bin < 0 {
			bin = 0
		}
		binPred[bin] += rec.PredictedProbability
		binActual[bin] += float64(rec.RealizedOutcome)
		binCount[bin]++
	}

	var reliability, resolution float64
	var overconfidenceSum float64
	overconfidenceBins := 0
	for i := 0; i < 10; i++ {
		report.CalibrationCurve[i].Count = binCount[i]
		if binCount[i] == 0 {
			continue
		}
		avgPred := binPred[i] / float64(binCount[i])
		actualRate := binActual[i] / float64(binCount[i])
		report.CalibrationCurve[i].AvgPredicted = avgPred
		report.CalibrationCurve[i].ActualRate = actualRate

		weight := float64(binCount[i])
		reliability += weight * (avgPred - actualRate) * (avgPred - actualRate)
		resolution += weight * (actualRate - baseRate) * (actualRate - baseRate)

		if binCount[i] >= Config.MinBinSamples {
			midpoint := (report.CalibrationCurve[i].RangeStart + report.CalibrationCurve[i].RangeEnd) / 2.0
			overconfidenceSum += midpoint - actualRate
			overconfidenceBins++
		}
	}
	report.ReliabilityScore = reliability / n
	report.ResolutionScore = resolution / n
	if overconfidenceBins > 0 {
		report.OverconfidenceIndex = overconfidenceSum / float64(overconfidenceBins)
	}

	report.Calibration = classifyBrier(report.BrierScore)
	report.SuggestedAdjustments = suggestAdjustments(records)

	return report
}

// classifyBrier bands the Brier score; a perfectly calibrated confident
// system lands around 0.10 or below
func classifyBrier(brier float64) CalibrationQuality {
	switch {
	case brier <= 0.10:
		return CalibrationExcellent
	case brier <= 0.18:
		return CalibrationGood
	case brier <= 0.25:
		return CalibrationAcceptable
	default:
		return CalibrationPoor
	}
}

// suggestAdjustments derives a per-market multiplier nudging future raw
// probabilities toward the realized frequency. Markets without enough samples
// in the window get nothing rather than a noisy correction.
func suggestAdjustments(records []*CalibrationRecord) map[string]float64 {
	type marketAgg struct {
		predicted float64
		actual    float64
		count     int
	}
	perMarket := map[string]*marketAgg{}
	for _, rec := range records {
		agg, ok := perMarket[rec.Market]
		if !ok {
			agg = &marketAgg{}
			perMarket[rec.Market] = agg
		}
		agg.predicted += rec.PredictedProbability
		agg.actual += float64(rec.RealizedOutcome)
		agg.count++
	}

	adjustments := map[string]float64{}
	for market, agg := range perMarket {
		if agg.count < Config.MinMarketSamples {
			continue
		}
		avgPredicted := agg.predicted / float64(agg.count)
		avgActual := agg.actual / float64(agg.count)
		if avgPredicted <= 0 {
			continue
		}
		multiplier := avgActual / avgPredicted
		// A wild multiplier says the window is unrepresentative, not that
		// future probabilities should be halved or doubled
		if multiplier < 0.5 {
			multiplier = 0.5
		}
		if multiplier > 1.5 {
			multiplier = 1.5
		}
		adjustments[market] = multiplier
	}
	return adjustments
}
