package podds

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/internal/metrics"
)

// Category buckets an analysed fixture by risk character
type Category string

const (
	CategorySafe     Category = "safe"
	CategoryValue    Category = "value"
	CategorySurprise Category = "surprise"
)

// Fixture is one match handed to the scanner with everything the pipeline
// needs already fetched and validated. The form multipliers are the caller's
// view of recent form, applied on top of the derived expected goals; 1.0
// means neutral.
type Fixture struct {
	FixtureID    string
	HomeTeamName string
	AwayTeamName string

	HomeTeamID               string
	HomeGoalsForPerMatch     float64
	HomeGoalsAgainstPerMatch float64
	HomePossessionAvg        float64
	HomeShotsPerMatch        float64
	HomeFormMultiplier       float64
	HomeVariance             float64

	AwayTeamID               string
	AwayGoalsForPerMatch     float64
	AwayGoalsAgainstPerMatch float64
	AwayPossessionAvg        float64
	AwayShotsPerMatch        float64
	AwayFormMultiplier       float64
	AwayVariance             float64

	KickOff time.Time

	// Current prices per market/pick
	Quotes []MarketQuote

	// Optional external consensus prediction, side -> percent
	ExternalConsensus map[string]float64

	// Optional seed for reproducible simulation of this fixture
	Seed   int64
	Seeded bool
}

// MatchAnalysis is the full pipeline output for one fixture
type MatchAnalysis struct {
	FixtureID    string
	HomeTeamName string
	AwayTeamName string

	HomeProfile *TeamStrengthProfile
	AwayProfile *TeamStrengthProfile
	Matchup     StyleMatchup

	// Closed-form distribution with style boosts applied
	Distribution *OutcomeProbabilityDistribution
	Simulation   *SimulationResult

	// Blend holds the final market probabilities the value layer prices:
	// simulation and boosted closed form combined at SimulationWeight
	Blend *OutcomeProbabilityDistribution

	Value      []*ValueAssessment
	Contrarian *ContrarianSignal
	Anomalies  []OddsAnomaly

	Category  Category
	Rating    float64 // 0-100 composite used to order the coupon pool
	Rationale string
}

// BestValue returns the highest-edge positive assessment, or nil when the
// fixture offers no edge at any quoted price
func (m *MatchAnalysis) BestValue() *ValueAssessment {
	var best *ValueAssessment
	for _, v := range m.Value {
		if v.EdgePercent <= 0 {
			continue
		}
		if best == nil || v.EdgePercent > best.EdgePercent {
			best = v
		}
	}
	return best
}

// ScanReport aggregates a slate scan. Failures and timeouts never blank out
// the fixtures that did complete.
type ScanReport struct {
	Analyses []*MatchAnalysis
	Failures map[string]error
	TimedOut []string
	Elapsed  time.Duration
}

// Scanner runs the full pipeline over a batch of fixtures with a bounded
// worker pool. All fields are optional except History when anomaly detection
// is wanted.
type Scanner struct {
	History *OddsHistory
	Cache   *SimCache
	Store   CalibrationStore

	// Limiter bounds the scan rate when the surrounding system needs it
	// (typically matching a data provider's refresh budget)
	Limiter *rate.Limiter

	// Workers overrides Config.ScanWorkers when positive
	Workers int

	// adjustments is the calibration multiplier set used for the current
	// scan, refreshed from the store between scans, never mid-flight
	adjustments map[string]float64
}

// NewScanner builds a scanner around an odds history buffer
func NewScanner(history *OddsHistory) *Scanner {
	return &Scanner{History: history}
}

// RefreshAdjustments loads the latest calibration multipliers from the store.
// Call between scans; in-flight results are never mutated. Without a store,
// or with an insufficient window, the scan runs unadjusted.
func (s *Scanner) RefreshAdjustments() {
	s.adjustments = nil
	if s.Store == nil {
		return
	}
	records, err := s.Store.RecentWindow(0)
	if err != nil {
		logger.Warn("Could not read calibration window, scanning unadjusted", err)
		return
	}
	report := Calibrate(records)
	if report.InsufficientData {
		logger.Info("Calibration window too small, scanning unadjusted", report.SampleSize)
		return
	}
	s.adjustments = report.SuggestedAdjustments
	logger.Info("Calibration adjustments loaded", len(s.adjustments), "markets, brier", report.BrierScore)
}

// ScanFixtures analyses every fixture in the batch under the context's
// budget. Workers are bounded; analyses that finish before the deadline are
// returned even when the budget expires mid-scan.
func (s *Scanner) ScanFixtures(ctx context.Context, fixtures []*Fixture, bankroll float64) *ScanReport {
	started := time.Now()
	metrics.ScansTotal.Inc()

	workers := s.Workers
	if workers <= 0 {
		workers = Config.ScanWorkers
	}

	report := &ScanReport{Failures: map[string]error{}}

	type outcome struct {
		fixtureID string
		analysis  *MatchAnalysis
		err       error
	}
	results := make(chan outcome, len(fixtures))
	sem := make(chan struct{}, workers)

	launched := 0
	pending := map[string]struct{}{}
	for _, fixture := range fixtures {
		if ctx.Err() != nil {
			report.TimedOut = append(report.TimedOut, fixture.FixtureID)
			continue
		}
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				report.TimedOut = append(report.TimedOut, fixture.FixtureID)
				continue
			}
		}

		launched++
		pending[fixture.FixtureID] = struct{}{}
		go func(f *Fixture) {
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results <- outcome{fixtureID: f.FixtureID, err: ctx.Err()}
				return
			}
			analysis, err := s.AnalyzeFixture(ctx, f, bankroll)
			results <- outcome{fixtureID: f.FixtureID, analysis: analysis, err: err}
		}(fixture)
	}

	collected := 0
	for collected < launched {
		select {
		case res := <-results:
			collected++
			delete(pending, res.fixtureID)
			switch {
			case res.err == context.Canceled || res.err == context.DeadlineExceeded:
				report.TimedOut = append(report.TimedOut, res.fixtureID)
				metrics.FixturesTimedOut.Inc()
			case res.err != nil:
				// One bad fixture must not sink the slate
				logger.Warn("Fixture analysis failed", res.fixtureID, res.err)
				report.Failures[res.fixtureID] = res.err
				metrics.FixtureFailures.Inc()
			default:
				report.Analyses = append(report.Analyses, res.analysis)
				metrics.FixturesAnalyzed.Inc()
			}
		case <-ctx.Done():
			// Budget expired: keep what finished, mark the rest timed out
			for collected < launched {
				select {
				case res := <-results:
					collected++
					delete(pending, res.fixtureID)
					if res.err == nil {
						report.Analyses = append(report.Analyses, res.analysis)
						metrics.FixturesAnalyzed.Inc()
					} else {
						report.TimedOut = append(report.TimedOut, res.fixtureID)
						metrics.FixturesTimedOut.Inc()
					}
				default:
					stranded := make([]string, 0, len(pending))
					for id := range pending {
						stranded = append(stranded, id)
					}
					sort.Strings(stranded)
					for _, id := range stranded {
						report.TimedOut = append(report.TimedOut, id)
						metrics.FixturesTimedOut.Inc()
					}
					pending = map[string]struct{}{}
					collected = launched
				}
			}
		}
	}

	report.Elapsed = time.Since(started)
	metrics.ScanDuration.Observe(report.Elapsed.Seconds())
	logger.Info("Scan complete", len(report.Analyses), "analysed,", len(report.Failures), "failed,", len(report.TimedOut), "timed out in", report.Elapsed.String())
	return report
}

// AnalyzeFixture runs the whole pipeline for one fixture: profiles, expected
// goals, closed-form distribution, style boosts, simulation, blending, value
// assessment and contrarian/anomaly checks.
func (s *Scanner) AnalyzeFixture(ctx context.Context, fixture *Fixture, bankroll float64) (*MatchAnalysis, error) {
	if fixture == nil {
		return nil, fmt.Errorf("cannot analyse a nil fixture")
	}
	if fixture.FixtureID == "" {
		return nil, fmt.Errorf("fixture is missing an id")
	}

	homeProfile := BuildTeamStrengthProfile(fixture.HomeTeamID,
		fixture.HomeGoalsForPerMatch, fixture.HomeGoalsAgainstPerMatch,
		fixture.HomePossessionAvg, fixture.HomeShotsPerMatch)
	awayProfile := BuildTeamStrengthProfile(fixture.AwayTeamID,
		fixture.AwayGoalsForPerMatch, fixture.AwayGoalsAgainstPerMatch,
		fixture.AwayPossessionAvg, fixture.AwayShotsPerMatch)

	homeLambda, awayLambda := ExpectedGoals(homeProfile, awayProfile)
	homeLambda = clampLambda(homeLambda * formMultiplier(fixture.HomeFormMultiplier))
	awayLambda = clampLambda(awayLambda * formMultiplier(fixture.AwayFormMultiplier))

	dist := PredictOutcome(homeLambda, awayLambda)
	matchup := LookupMatchup(homeProfile.Style, awayProfile.Style)
	boosted := ApplyMatchup(dist, matchup)

	simInput := SimulationInput{
		HomeLambda:   homeLambda,
		AwayLambda:   awayLambda,
		HomeVariance: fixture.HomeVariance,
		AwayVariance: fixture.AwayVariance,
		Trials:       Config.SimulationTrials,
		Seed:         fixture.Seed,
		Seeded:       fixture.Seeded,
	}

	var sim *SimulationResult
	if s.Cache != nil {
		sim = s.Cache.Get(ctx, simInput)
	}
	if sim == nil {
		sim = Simulate(simInput)
		if s.Cache != nil {
			s.Cache.Put(ctx, simInput, sim)
		}
	}

	blend := blendDistributions(boosted, sim)

	analysis := &MatchAnalysis{
		FixtureID:    fixture.FixtureID,
		HomeTeamName: fixture.HomeTeamName,
		AwayTeamName: fixture.AwayTeamName,
		HomeProfile:  homeProfile,
		AwayProfile:  awayProfile,
		Matchup:      matchup,
		Distribution: boosted,
		Simulation:   sim,
		Blend:        blend,
	}

	for _, quote := range fixture.Quotes {
		modelProb, ok := marketProbability(blend, quote.Market, quote.Pick)
		if !ok {
			continue
		}
		assessment, err := AssessValue(quote.Market, quote.Pick, modelProb*100.0, quote.Price, bankroll, s.adjustments)
		if err != nil {
			logger.Warn("Skipping unpriceable quote", fixture.FixtureID, quote.Market, quote.Pick, err)
			continue
		}
		analysis.Value = append(analysis.Value, assessment)
	}

	analysis.Contrarian = DetectContrarian(fixture.FixtureID, blend, fixture.Quotes, fixture.ExternalConsensus)
	analysis.Anomalies = DetectOddsAnomalies(fixture.FixtureID, s.History, blend)

	categorize(analysis)
	analysis.Rationale = buildRationale(analysis)

	return analysis, nil
}

// formMultiplier treats an unset multiplier as neutral
func formMultiplier(m float64) float64 {
	if m <= 0 {
		return 1.0
	}
	return m
}

// blendDistributions combines the simulation's empirical probabilities with
// the boosted closed form at the configured weight. The simulation leads; the
// closed form anchors it.
func blendDistributions(dist *OutcomeProbabilityDistribution, sim *SimulationResult) *OutcomeProbabilityDistribution {
	w := Config.SimulationWeight
	blend := *dist

	blend.HomeWin = w*sim.HomeWinProb + (1.0-w)*dist.HomeWin
	blend.Draw = w*sim.DrawProb + (1.0-w)*dist.Draw
	blend.AwayWin = w*sim.AwayWinProb + (1.0-w)*dist.AwayWin

	// Renormalize the trio; the two sources are each normalized but their
	// mixture can drift a hair
	total := blend.HomeWin + blend.Draw + blend.AwayWin
	if total > 0 {
		blend.HomeWin /= total
		blend.Draw /= total
		blend.AwayWin /= total
	}

	blend.Over1p5 = clampMarket(w*sim.Over1p5 + (1.0-w)*dist.Over1p5)
	blend.Over2p5 = clampMarket(w*sim.Over2p5 + (1.0-w)*dist.Over2p5)
	blend.Over3p5 = clampMarket(w*sim.Over3p5 + (1.0-w)*dist.Over3p5)
	blend.BTTSYes = clampMarket(w*sim.BTTSYes + (1.0-w)*dist.BTTSYes)
	blend.BTTSNo = 1.0 - blend.BTTSYes

	return &blend
}

// categorize buckets the analysis and scores its coupon rating
//
// Thresholds: safe needs confidence >= SafeConfidenceFloor with a price at or
// below SafePriceCeiling; surprise needs a price at or above SurprisePriceFloor
// with confidence at or below SurpriseConfidenceCeiling; everything else is
// value.
func categorize(analysis *MatchAnalysis) {
	_, modelConfidence := dominantSide(map[string]float64{
		PickHome: analysis.Blend.HomeWin,
		PickDraw: analysis.Blend.Draw,
		PickAway: analysis.Blend.AwayWin,
	})

	best := analysis.BestValue()
	price := 0.0
	edge := 0.0
	if best != nil {
		price = best.MarketOdds
		edge = best.EdgePercent
	}

	switch {
	case best != nil && modelConfidence >= Config.SafeConfidenceFloor && price <= Config.SafePriceCeiling:
		analysis.Category = CategorySafe
	case best != nil && price >= Config.SurprisePriceFloor && modelConfidence <= Config.SurpriseConfidenceCeiling:
		analysis.Category = CategorySurprise
	default:
		analysis.Category = CategoryValue
	}

	// Composite rating: confidence leads, edge and stability refine
	edgeComponent := edge
	if edgeComponent < 0 {
		edgeComponent = 0
	}
	if edgeComponent > 20 {
		edgeComponent = 20
	}
	stability := (1.0 - analysis.Simulation.ChaosIndex) * 100.0
	analysis.Rating = 0.5*modelConfidence + 0.3*(edgeComponent*5.0) + 0.2*stability
}

// buildRationale writes the one-line human summary for the analysis
func buildRationale(analysis *MatchAnalysis) string {
	side, confidence := dominantSide(map[string]float64{
		PickHome: analysis.Blend.HomeWin,
		PickDraw: analysis.Blend.Draw,
		PickAway: analysis.Blend.AwayWin,
	})

	var sideName string
	switch side {
	case PickHome:
		sideName = analysis.HomeTeamName
	case PickAway:
		sideName = analysis.AwayTeamName
	default:
		sideName = "the draw"
	}

	rationale := fmt.Sprintf("%s vs %s: model favours %s at %.0f%% (%s v %s, %s)",
		analysis.HomeTeamName, analysis.AwayTeamName, sideName, confidence,
		analysis.HomeProfile.Style, analysis.AwayProfile.Style, analysis.Matchup.Reasoning)

	if best := analysis.BestValue(); best != nil {
		rationale += fmt.Sprintf("; best value %s/%s at %.2f with %.1f%% edge",
			best.Market, best.Pick, best.MarketOdds, best.EdgePercent)
	}
	if analysis.Contrarian != nil {
		rationale += "; " + analysis.Contrarian.Reason
	}
	return rationale
}
