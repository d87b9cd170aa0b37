package podds

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/internal/metrics"
)

// ErrCannotMeetConstraints is returned when no admissible combination of legs
// lands near the target odds. It is an explicit outcome, not a failure to be
// retried with looser legs.
var ErrCannotMeetConstraints = errors.New("no leg combination satisfies the coupon constraints")

// CouponConstraintSet is the caller's brief for coupon construction
type CouponConstraintSet struct {
	TargetOdds    float64
	RiskLevel     string // Informational; thresholds below do the gating
	MaxLegs       int
	MinConfidence float64 // Percent; legs below are never admitted
	MinValue      float64 // Minimum edge percent; legs below are never admitted
	Bankroll      float64
}

// CouponLeg is one selection inside a generated coupon
type CouponLeg struct {
	FixtureID   string
	HomeTeam    string
	AwayTeam    string
	Market      string
	Pick        string
	Price       float64
	Confidence  float64 // Percent
	EdgePercent float64
}

// GeneratedCoupon is the orchestrator's multi-leg output
type GeneratedCoupon struct {
	ID              string
	Legs            []CouponLeg
	CombinedOdds    float64
	TotalStake      decimal.Decimal
	PotentialReturn decimal.Decimal
}

// BuildCoupon selects a subset of analysed fixtures whose combined odds land
// within the tolerance band of the target. The candidate pool is capped at
// CouponPoolCap and ordered by rating, which bounds the exhaustive subset
// search at 2^cap evaluations; beyond MaxLegs subsets are pruned. A leg below
// MinConfidence or MinValue is never admitted, even when it would perfect the
// odds match.
func BuildCoupon(analyses []*MatchAnalysis, constraints CouponConstraintSet) (*GeneratedCoupon, error) {
	if constraints.TargetOdds <= 1.0 {
		return nil, fmt.Errorf("target odds must exceed 1.0, got %.2f", constraints.TargetOdds)
	}
	maxLegs := constraints.MaxLegs
	if maxLegs <= 0 {
		maxLegs = 3
	}

	pool := buildCandidatePool(analyses, constraints)
	if len(pool) == 0 {
		return nil, ErrCannotMeetConstraints
	}

	tolerance := Config.CouponTolerance
	lower := constraints.TargetOdds * (1.0 - tolerance)
	upper := constraints.TargetOdds * (1.0 + tolerance)

	best, found := searchSubsets(pool, maxLegs, constraints.TargetOdds, lower, upper)
	if !found {
		// Greedy nearest-odds fallback: multiply highest-rated legs in until
		// the band is reached or overshot
		best, found = greedyNearest(pool, maxLegs, lower, upper)
	}
	if !found {
		logger.Info("Coupon constraints could not be met", "target", constraints.TargetOdds, "pool", len(pool))
		return nil, ErrCannotMeetConstraints
	}

	coupon := &GeneratedCoupon{
		ID:           uuid.NewString(),
		Legs:         best,
		CombinedOdds: combinedOdds(best),
	}

	stake := decimal.NewFromFloat(constraints.Bankroll).
		Mul(decimal.NewFromFloat(Config.CouponStakeFraction)).
		Round(2)
	maxBet := decimal.NewFromFloat(Config.MaxSingleBet)
	if stake.GreaterThan(maxBet) {
		stake = maxBet
	}
	coupon.TotalStake = stake
	coupon.PotentialReturn = stake.Mul(decimal.NewFromFloat(coupon.CombinedOdds)).Round(2)

	metrics.CouponsBuilt.Inc()
	logger.Info("Coupon built", len(coupon.Legs), "legs at combined", coupon.CombinedOdds)
	return coupon, nil
}

// buildCandidatePool turns analyses into admissible legs, ordered by rating
// and capped at the configured pool size
func buildCandidatePool(analyses []*MatchAnalysis, constraints CouponConstraintSet) []CouponLeg {
	type rated struct {
		leg    CouponLeg
		rating float64
	}
	var candidates []rated

	for _, analysis := range analyses {
		best := analysis.BestValue()
		if best == nil {
			continue
		}
		confidence := best.ModelProbability
		if confidence < constraints.MinConfidence {
			continue
		}
		if best.EdgePercent < constraints.MinValue {
			continue
		}
		candidates = append(candidates, rated{
			leg: CouponLeg{
				FixtureID:   analysis.FixtureID,
				HomeTeam:    analysis.HomeTeamName,
				AwayTeam:    analysis.AwayTeamName,
				Market:      best.Market,
				Pick:        best.Pick,
				Price:       best.MarketOdds,
				Confidence:  confidence,
				EdgePercent: best.EdgePercent,
			},
			rating: analysis.Rating,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rating != candidates[j].rating {
			return candidates[i].rating > candidates[j].rating
		}
		return candidates[i].leg.FixtureID < candidates[j].leg.FixtureID
	})

	poolCap := Config.CouponPoolCap
	if len(candidates) > poolCap {
		candidates = candidates[:poolCap]
	}

	pool := make([]CouponLeg, len(candidates))
	for i, c := range candidates {
		pool[i] = c.leg
	}
	return pool
}

// searchSubsets enumerates every subset of the capped pool up to maxLegs and
// keeps the in-band combination closest to the target. The pool cap bounds
// the work at 2^cap subset evaluations.
func searchSubsets(pool []CouponLeg, maxLegs int, target, lower, upper float64) ([]CouponLeg, bool) {
	var best []CouponLeg
	bestDistance := math.MaxFloat64

	total := 1 << len(pool)
	for mask := 1; mask < total; mask++ {
		legs := countBits(mask)
		if legs > maxLegs {
			continue
		}

		odds := 1.0
		for i := 0; i < len(pool); i++ {
			if mask&(1<<i) != 0 {
				odds *= pool[i].Price
			}
		}
		if odds < lower || odds > upper {
			continue
		}

		distance := math.Abs(odds - target)
		if distance < bestDistance {
			bestDistance = distance
			best = subsetLegs(pool, mask)
		}
	}

	return best, best != nil
}

// greedyNearest multiplies the highest-rated legs in until the combined odds
// enter the band, giving up once adding any remaining leg would overshoot
func greedyNearest(pool []CouponLeg, maxLegs int, lower, upper float64) ([]CouponLeg, bool) {
	var legs []CouponLeg
	odds := 1.0

	for _, leg := range pool {
		if len(legs) >= maxLegs {
			break
		}
		if odds*leg.Price > upper {
			continue
		}
		legs = append(legs, leg)
		odds *= leg.Price
		if odds >= lower {
			break
		}
	}

	if odds >= lower && odds <= upper && len(legs) > 0 {
		return legs, true
	}
	return nil, false
}

func subsetLegs(pool []CouponLeg, mask int) []CouponLeg {
	var legs []CouponLeg
	for i := 0; i < len(pool); i++ {
		if mask&(1<<i) != 0 {
			legs = append(legs, pool[i])
		}
	}
	return legs
}

func countBits(mask int) int {
	count := 0
	for mask != 0 {
		count += mask & 1
		mask >>= 1
	}
	return count
}

func combinedOdds(legs []CouponLeg) float64 {
	odds := 1.0
	for _, leg := range legs {
		odds *= leg.Price
	}
	return odds
}
