package podds

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// couponAnalysis fabricates an analysed fixture whose best value bet sits at
// the given price, confidence and edge
func couponAnalysis(id string, price, confidence, edge, rating float64) *MatchAnalysis {
	return &MatchAnalysis{
		FixtureID:    id,
		HomeTeamName: "Home " + id,
		AwayTeamName: "Away " + id,
		Value: []*ValueAssessment{
			{
				Market:           MarketMatchResult,
				Pick:             PickHome,
				ModelProbability: confidence,
				MarketOdds:       price,
				EdgePercent:      edge,
			},
		},
		Rating: rating,
	}
}

func TestBuildCouponHitsTargetBand(t *testing.T) {
	analyses := []*MatchAnalysis{
		couponAnalysis("f1", 1.80, 58, 5, 70),
		couponAnalysis("f2", 1.60, 64, 4, 65),
		couponAnalysis("f3", 1.75, 60, 6, 60),
		couponAnalysis("f4", 2.10, 50, 8, 55),
	}

	coupon, err := BuildCoupon(analyses, CouponConstraintSet{
		TargetOdds: 5.0,
		MaxLegs:    3,
		Bankroll:   1000,
	})
	require.NoError(t, err)
	require.NotNil(t, coupon)

	assert.NotEmpty(t, coupon.ID)
	assert.LessOrEqual(t, len(coupon.Legs), 3)

	tolerance := Config.CouponTolerance
	assert.GreaterOrEqual(t, coupon.CombinedOdds, 5.0*(1-tolerance))
	assert.LessOrEqual(t, coupon.CombinedOdds, 5.0*(1+tolerance))

	// Combined odds must be the product of the leg prices
	product := 1.0
	for _, leg := range coupon.Legs {
		product *= leg.Price
	}
	assert.InDelta(t, product, coupon.CombinedOdds, 1e-9)

	// Stake is the configured bankroll fraction, returns follow
	expectedStake := 1000 * Config.CouponStakeFraction
	stake, _ := coupon.TotalStake.Float64()
	assert.InDelta(t, expectedStake, stake, 0.01)
	assert.True(t, coupon.PotentialReturn.GreaterThan(coupon.TotalStake))

	t.Logf("coupon %s: %d legs at %.2f", coupon.ID, len(coupon.Legs), coupon.CombinedOdds)
}

func TestBuildCouponUnreachableTarget(t *testing.T) {
	// Two legs multiplying to at most 4.2, nowhere near 20
	analyses := []*MatchAnalysis{
		couponAnalysis("f1", 2.00, 55, 5, 70),
		couponAnalysis("f2", 2.10, 52, 4, 65),
	}

	_, err := BuildCoupon(analyses, CouponConstraintSet{TargetOdds: 20.0, MaxLegs: 3, Bankroll: 1000})
	assert.ErrorIs(t, err, ErrCannotMeetConstraints)
}

func TestBuildCouponNeverAdmitsSubThresholdLegs(t *testing.T) {
	// Only the low-confidence leg would reach the target; the constraint
	// must win over the odds match
	analyses := []*MatchAnalysis{
		couponAnalysis("f1", 1.50, 70, 5, 80),
		couponAnalysis("f2", 3.40, 35, 6, 50), // below MinConfidence
	}

	_, err := BuildCoupon(analyses, CouponConstraintSet{
		TargetOdds:    5.0,
		MaxLegs:       2,
		MinConfidence: 50,
		Bankroll:      1000,
	})
	assert.ErrorIs(t, err, ErrCannotMeetConstraints, "A leg below the confidence floor is never admitted")
}

func TestBuildCouponFiltersNegativeValue(t *testing.T) {
	analyses := []*MatchAnalysis{
		couponAnalysis("f1", 2.20, 50, -2, 70), // -EV, BestValue returns nil
		couponAnalysis("f2", 2.30, 48, 3, 65),
	}

	coupon, err := BuildCoupon(analyses, CouponConstraintSet{TargetOdds: 2.3, MaxLegs: 2, Bankroll: 1000})
	require.NoError(t, err)
	require.Len(t, coupon.Legs, 1)
	assert.Equal(t, "f2", coupon.Legs[0].FixtureID)
}

func TestBuildCouponRespectsMaxLegs(t *testing.T) {
	var analyses []*MatchAnalysis
	for i := 0; i < 6; i++ {
		analyses = append(analyses, couponAnalysis(fmt.Sprintf("f%d", i), 1.30, 70, 3, float64(80-i)))
	}

	// 1.3^5 ~ 3.71: reaching it needs five legs but only two are allowed
	_, err := BuildCoupon(analyses, CouponConstraintSet{TargetOdds: 3.7, MaxLegs: 2, Bankroll: 1000})
	assert.ErrorIs(t, err, ErrCannotMeetConstraints)

	coupon, err := BuildCoupon(analyses, CouponConstraintSet{TargetOdds: 3.7, MaxLegs: 5, Bankroll: 1000})
	require.NoError(t, err)
	assert.Len(t, coupon.Legs, 5)
}

func TestBuildCouponRejectsBadTarget(t *testing.T) {
	_, err := BuildCoupon(nil, CouponConstraintSet{TargetOdds: 1.0, Bankroll: 1000})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCannotMeetConstraints, "A nonsense target is a caller bug, not an unmet constraint")
}

func TestBuildCouponEmptySlate(t *testing.T) {
	_, err := BuildCoupon(nil, CouponConstraintSet{TargetOdds: 5.0, Bankroll: 1000})
	assert.ErrorIs(t, err, ErrCannotMeetConstraints)
}

func TestBuildCouponPicksClosestCombination(t *testing.T) {
	analyses := []*MatchAnalysis{
		couponAnalysis("f1", 2.50, 50, 5, 70),
		couponAnalysis("f2", 2.00, 55, 5, 65),
		couponAnalysis("f3", 2.45, 50, 5, 60),
	}

	// 2.5*2.0=5.0 exactly on target; 2.5*2.45=6.125 and 2.0*2.45=4.9 are
	// both in the 15% band but further away
	coupon, err := BuildCoupon(analyses, CouponConstraintSet{TargetOdds: 5.0, MaxLegs: 2, Bankroll: 1000})
	require.NoError(t, err)
	require.Len(t, coupon.Legs, 2)
	assert.InDelta(t, 5.0, coupon.CombinedOdds, 1e-9)
}

func TestBuildCouponStakeAbsoluteCap(t *testing.T) {
	analyses := []*MatchAnalysis{
		couponAnalysis("f1", 2.20, 55, 5, 70),
		couponAnalysis("f2", 2.30, 52, 5, 65),
	}

	// 2% of a million would be 20000, far over the single-bet cap
	coupon, err := BuildCoupon(analyses, CouponConstraintSet{TargetOdds: 5.0, MaxLegs: 2, Bankroll: 1_000_000})
	require.NoError(t, err)

	stake, _ := coupon.TotalStake.Float64()
	assert.Equal(t, Config.MaxSingleBet, stake)
}
