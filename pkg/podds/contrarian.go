package podds

import (
	"fmt"
	"math"
	"time"
)

// Market and pick identifiers shared across the engine
const (
	MarketMatchResult = "match_result"
	MarketOver15      = "over_1.5"
	MarketOver25      = "over_2.5"
	MarketOver35      = "over_3.5"
	MarketBTTS        = "btts"

	PickHome  = "home"
	PickDraw  = "draw"
	PickAway  = "away"
	PickOver  = "over"
	PickUnder = "under"
	PickYes   = "yes"
	PickNo    = "no"
)

// MarketQuote is a current bookmaker price for one market/pick
type MarketQuote struct {
	FixtureID  string
	Market     string
	Pick       string
	Price      float64
	Bookmaker  string
	ObservedAt time.Time
}

// ContrarianSignal flags a fixture where the model's consensus diverges
// materially from the public's. Computed fresh per call, never persisted.
type ContrarianSignal struct {
	FixtureID        string
	PublicSide       string
	PublicConfidence float64 // Points, 0-100
	ModelSide        string
	ModelConfidence  float64 // Points, 0-100
	IsContrarian     bool
	ContraryEdge     float64 // Points
	Reason           string
}

// OddsAnomaly flags abnormal price behaviour on one market
type OddsAnomaly struct {
	FixtureID     string
	Market        string
	OpeningPrice  float64 // 0 when no opening price was available
	CurrentPrice  float64
	ChangePercent float64 // 0 on the implied-probability fallback path
	GapPoints     float64 // Model-vs-implied gap on the fallback path
	Suspicious    bool
	Reason        string
}

// marketProbability resolves the model's probability for a market/pick from a
// blended distribution. The boolean reports whether the market is one the
// model prices.
func marketProbability(dist *OutcomeProbabilityDistribution, market, pick string) (float64, bool) {
	switch market {
	case MarketMatchResult:
		switch pick {
		case PickHome:
			return dist.HomeWin, true
		case PickDraw:
			return dist.Draw, true
		case PickAway:
			return dist.AwayWin, true
		}
	case MarketOver15:
		if pick == PickOver {
			return dist.Over1p5, true
		}
		return 1.0 - dist.Over1p5, true
	case MarketOver25:
		if pick == PickOver {
			return dist.Over2p5, true
		}
		return 1.0 - dist.Over2p5, true
	case MarketOver35:
		if pick == PickOver {
			return dist.Over3p5, true
		}
		return 1.0 - dist.Over3p5, true
	case MarketBTTS:
		if pick == PickYes {
			return dist.BTTSYes, true
		}
		return dist.BTTSNo, true
	}
	return 0, false
}

// DetectContrarian compares the model's 1X2 consensus with the public's. The
// public view is the vig-normalized implied probabilities of the current
// match-result quotes, blended with an optional external consensus
// (side -> percent) at the configured weight.
//
// A signal is emitted when the sides disagree with enough contrary edge, or
// when they agree but the confidence gap is wide enough to matter. Agreeing
// sides with a small gap produce nothing; no signal is not an error.
func DetectContrarian(fixtureID string, dist *OutcomeProbabilityDistribution, quotes []MarketQuote, externalConsensus map[string]float64) *ContrarianSignal {
	publicProbs := impliedMatchResultProbs(quotes)
	if publicProbs == nil && len(externalConsensus) == 0 {
		return nil
	}

	if len(externalConsensus) > 0 {
		weight := Config.MarketConsensusWeight
		blended := map[string]float64{}
		for _, side := range []string{PickHome, PickDraw, PickAway} {
			market := 0.0
			if publicProbs != nil {
				market = publicProbs[side]
			} else {
				weight = 0
			}
			blended[side] = weight*market + (1.0-weight)*externalConsensus[side]/100.0
		}
		publicProbs = blended
	}

	publicSide, publicConfidence := dominantSide(publicProbs)
	modelSide, modelConfidence := dominantSide(map[string]float64{
		PickHome: dist.HomeWin,
		PickDraw: dist.Draw,
		PickAway: dist.AwayWin,
	})

	if modelSide != publicSide {
		contraryEdge := modelConfidence - (100.0 - publicConfidence)
		if contraryEdge < Config.ContrarianEdgeThreshold {
			return nil
		}
		return &ContrarianSignal{
			FixtureID:        fixtureID,
			PublicSide:       publicSide,
			PublicConfidence: publicConfidence,
			ModelSide:        modelSide,
			ModelConfidence:  modelConfidence,
			IsContrarian:     true,
			ContraryEdge:     contraryEdge,
			Reason: fmt.Sprintf("model backs %s at %.0f%% while the public backs %s at %.0f%%",
				modelSide, modelConfidence, publicSide, publicConfidence),
		}
	}

	gap := math.Abs(modelConfidence - publicConfidence)
	if gap < Config.ConfidenceGapThreshold {
		return nil
	}
	return &ContrarianSignal{
		FixtureID:        fixtureID,
		PublicSide:       publicSide,
		PublicConfidence: publicConfidence,
		ModelSide:        modelSide,
		ModelConfidence:  modelConfidence,
		IsContrarian:     true,
		ContraryEdge:     gap,
		Reason: fmt.Sprintf("model and public both back %s but confidence differs by %.0f points",
			modelSide, gap),
	}
}

// impliedMatchResultProbs converts the latest 1X2 prices into normalized
// probabilities, removing the bookmaker margin. Returns nil unless all three
// outcomes are quoted.
func impliedMatchResultProbs(quotes []MarketQuote) map[string]float64 {
	latest := map[string]float64{}
	observed := map[string]time.Time{}
	for _, q := range quotes {
		if q.Market != MarketMatchResult || q.Price <= 1.0 {
			continue
		}
		if seen, ok := observed[q.Pick]; ok && q.ObservedAt.Before(seen) {
			continue
		}
		latest[q.Pick] = q.Price
		observed[q.Pick] = q.ObservedAt
	}

	if len(latest) < 3 {
		return nil
	}

	total := 0.0
	for _, price := range latest {
		total += 1.0 / price
	}
	if total <= 0 {
		return nil
	}

	probs := map[string]float64{}
	for pick, price := range latest {
		probs[pick] = (1.0 / price) / total
	}
	return probs
}

// dominantSide returns the most likely side and its confidence in points
func dominantSide(probs map[string]float64) (string, float64) {
	best := PickHome
	bestProb := -1.0
	// Fixed iteration order keeps ties deterministic
	for _, side := range []string{PickHome, PickDraw, PickAway} {
		if probs[side] > bestProb {
			bestProb = probs[side]
			best = side
		}
	}
	return best, bestProb * 100.0
}

// DetectOddsAnomalies inspects every market with recorded price history for
// one fixture. With an opening price available it flags large moves, and
// specifically a favourite lengthening, which usually means team news the
// model has not seen. Without one it falls back to comparing the model
// against the current implied probability. At most one anomaly per market is
// returned, the strongest.
func DetectOddsAnomalies(fixtureID string, history *OddsHistory, dist *OutcomeProbabilityDistribution) []OddsAnomaly {
	if history == nil {
		return nil
	}

	var anomalies []OddsAnomaly
	for _, market := range history.Markets(fixtureID) {
		snaps := history.Snapshots(fixtureID, market)
		if len(snaps) == 0 {
			continue
		}

		strongest := OddsAnomaly{}
		found := false
		if len(snaps) >= 2 {
			// Movement path: per pick, compare opening against current
			perPick := map[string][]OddsSnapshot{}
			for _, s := range snaps {
				perPick[s.Pick] = append(perPick[s.Pick], s)
			}
			for _, series := range perPick {
				if len(series) < 2 {
					continue
				}
				if a, ok := movementAnomaly(fixtureID, market, series); ok {
					if !found || math.Abs(a.ChangePercent) > math.Abs(strongest.ChangePercent) {
						strongest = a
						found = true
					}
				}
			}
		}
		if !found {
			// No usable opening price: model vs implied fallback
			if a, ok := impliedGapAnomaly(fixtureID, market, snaps[len(snaps)-1], dist); ok {
				strongest = a
				found = true
			}
		}
		if found {
			anomalies = append(anomalies, strongest)
		}
	}
	return anomalies
}

// movementAnomaly flags a large move between opening and current price for
// one pick's time-ordered series
func movementAnomaly(fixtureID, market string, series []OddsSnapshot) (OddsAnomaly, bool) {
	opening := series[0].Price
	current := series[len(series)-1].Price
	if opening <= 1.0 {
		return OddsAnomaly{}, false
	}

	changePercent := (current - opening) / opening * 100.0

	favouriteDrifting := opening < Config.FavoritePriceCeiling && changePercent >= Config.FavoriteDriftThreshold
	largeMove := math.Abs(changePercent) >= Config.OddsMovementThreshold

	if !largeMove && !favouriteDrifting {
		return OddsAnomaly{}, false
	}

	anomaly := OddsAnomaly{
		FixtureID:     fixtureID,
		Market:        market,
		OpeningPrice:  opening,
		CurrentPrice:  current,
		ChangePercent: changePercent,
	}
	if favouriteDrifting {
		anomaly.Suspicious = true
		anomaly.Reason = fmt.Sprintf("favourite lengthened %.1f%% from %.2f, possible team news", changePercent, opening)
	} else if changePercent < 0 {
		anomaly.Reason = fmt.Sprintf("price shortened %.1f%% from %.2f, heavy backing", -changePercent, opening)
	} else {
		anomaly.Reason = fmt.Sprintf("price drifted %.1f%% from %.2f", changePercent, opening)
	}
	return anomaly, true
}

// impliedGapAnomaly compares the model probability against the current
// price's implied probability when no opening price exists
func impliedGapAnomaly(fixtureID, market string, snap OddsSnapshot, dist *OutcomeProbabilityDistribution) (OddsAnomaly, bool) {
	if dist == nil || snap.Price <= 1.0 {
		return OddsAnomaly{}, false
	}
	modelProb, ok := marketProbability(dist, market, snap.Pick)
	if !ok {
		return OddsAnomaly{}, false
	}

	implied := 100.0 / snap.Price
	gap := modelProb*100.0 - implied
	if math.Abs(gap) < Config.ImpliedGapThreshold {
		return OddsAnomaly{}, false
	}

	anomaly := OddsAnomaly{
		FixtureID:    fixtureID,
		Market:       market,
		CurrentPrice: snap.Price,
		GapPoints:    gap,
	}
	if gap >= Config.SuspiciousGapThreshold {
		anomaly.Suspicious = true
		anomaly.Reason = fmt.Sprintf("model %.0f%% vs implied %.0f%% on %s, strongly in the model's favour",
			modelProb*100.0, implied, snap.Pick)
	} else {
		anomaly.Reason = fmt.Sprintf("model %.0f%% vs implied %.0f%% on %s", modelProb*100.0, implied, snap.Pick)
	}
	return anomaly, true
}
