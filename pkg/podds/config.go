package podds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PoddsConfig contains all configurable parameters that influence prediction outcomes
// This centralizes all magic numbers and constants for easy adjustment
type PoddsConfig struct {
	// === CORE PREDICTION PARAMETERS ===

	// Goal grid and expected-goals clamping
	GoalGridMax   int     `yaml:"goalGridMax"`   // Highest goal count modelled per side, grid is 0..N (default: 10)
	MinGoalsFloor float64 `yaml:"minGoalsFloor"` // Minimum expected goals floor (default: 0.05)
	MaxGoalsCap   float64 `yaml:"maxGoalsCap"`   // Maximum expected goals cap (default: 10.0)

	// Dixon-Coles correlation parameter for low-scoring games
	DixonColesRho float64 `yaml:"dixonColesRho"` // Correlation parameter (default: -0.03, range: -0.1 to 0)

	// Expected-goals derivation from team profiles
	LeagueAvgGoalsPerGame   float64 `yaml:"leagueAvgGoalsPerGame"`   // Baseline goals per team per game (default: 1.35)
	HomeAdvantageMultiplier float64 `yaml:"homeAdvantageMultiplier"` // Applied to the home side's rate (default: 1.10)

	// === MONTE CARLO SIMULATION ===

	SimulationTrials   int     `yaml:"simulationTrials"`   // Trials per simulation run (default: 10000)
	LambdaJitter       float64 `yaml:"lambdaJitter"`       // Uniform per-trial rate perturbation (default: 0.20 = ±20%)
	ChaosStdDevFloor   float64 `yaml:"chaosStdDevFloor"`   // Total-goals std-dev mapped to chaos 0.0 (default: 1.0)
	ChaosStdDevCeil    float64 `yaml:"chaosStdDevCeil"`    // Total-goals std-dev mapped to chaos 1.0 (default: 3.0)
	SimulationWeight   float64 `yaml:"simulationWeight"`   // Simulation share when blending with the closed form (default: 0.6)
	SimCacheTTLMinutes int     `yaml:"simCacheTTLMinutes"` // Cached simulation lifetime (default: 15)

	// === STYLE CLASSIFICATION ===

	StyleConfidenceFloor float64 `yaml:"styleConfidenceFloor"` // Never report less confidence than this (default: 0.3)

	// === VALUE / STAKING ===

	KellyFraction    float64 `yaml:"kellyFraction"`    // Fractional Kelly multiplier (default: 0.25)
	MaxBetPercentage float64 `yaml:"maxBetPercentage"` // Cap on the bankroll fraction of one bet (default: 0.15)
	MaxSingleBet     float64 `yaml:"maxSingleBet"`     // Absolute cap on one stake (default: 250.0)

	// === CALIBRATION ===

	MinCalibrationSamples int `yaml:"minCalibrationSamples"` // Below this a neutral report is returned (default: 10)
	MinMarketSamples      int `yaml:"minMarketSamples"`      // Per-market floor before an adjustment is produced (default: 20)
	MinBinSamples         int `yaml:"minBinSamples"`         // Per-bin floor for the overconfidence index (default: 5)
	CalibrationWindow     int `yaml:"calibrationWindow"`     // Most-recent records read from the store (default: 500)

	// === CONTRARIAN / ANOMALY THRESHOLDS ===

	ContrarianEdgeThreshold float64 `yaml:"contrarianEdgeThreshold"` // Minimum contrary edge in points (default: 10)
	ConfidenceGapThreshold  float64 `yaml:"confidenceGapThreshold"`  // Same-side confidence gap in points (default: 15)
	SuspiciousGapThreshold  float64 `yaml:"suspiciousGapThreshold"`  // Model-vs-implied gap marked suspicious (default: 20)
	ImpliedGapThreshold     float64 `yaml:"impliedGapThreshold"`     // Model-vs-implied gap that flags at all (default: 15)
	MarketConsensusWeight   float64 `yaml:"marketConsensusWeight"`   // Market share when blended with external consensus (default: 0.6)
	OddsMovementThreshold   float64 `yaml:"oddsMovementThreshold"`   // Absolute price move percent that flags (default: 10.0)
	FavoriteDriftThreshold  float64 `yaml:"favoriteDriftThreshold"`  // Favourite lengthening percent marked suspicious (default: 8.0)
	FavoritePriceCeiling    float64 `yaml:"favoritePriceCeiling"`    // Opening price below this is a favourite (default: 2.00)

	// === SCANNER CATEGORISATION ===

	SafeConfidenceFloor       float64 `yaml:"safeConfidenceFloor"`       // Percent confidence for the safe bucket (default: 75)
	SafePriceCeiling          float64 `yaml:"safePriceCeiling"`          // Price ceiling for the safe bucket (default: 1.65)
	SurprisePriceFloor        float64 `yaml:"surprisePriceFloor"`        // Price floor for the surprise bucket (default: 2.5)
	SurpriseConfidenceCeiling float64 `yaml:"surpriseConfidenceCeiling"` // Percent confidence ceiling for surprises (default: 65)

	// === COUPON CONSTRUCTION ===

	CouponPoolCap       int     `yaml:"couponPoolCap"`       // Candidate pool size for subset search (default: 15)
	CouponTolerance     float64 `yaml:"couponTolerance"`     // Accepted relative deviation from target odds (default: 0.15)
	CouponStakeFraction float64 `yaml:"couponStakeFraction"` // Bankroll fraction staked on a coupon (default: 0.02)

	// === SCAN EXECUTION ===

	ScanWorkers       int     `yaml:"scanWorkers"`       // Bounded worker pool size (default: 4)
	ScanRatePerSecond float64 `yaml:"scanRatePerSecond"` // Analyses per second, 0 disables limiting (default: 0)
}

// DefaultPoddsConfig returns the default configuration with all standard values
func DefaultPoddsConfig() *PoddsConfig {
	return &PoddsConfig{
		GoalGridMax:   10,
		MinGoalsFloor: 0.05,
		MaxGoalsCap:   10.0,

		DixonColesRho: -0.03,

		LeagueAvgGoalsPerGame:   1.35,
		HomeAdvantageMultiplier: 1.10,

		SimulationTrials:   10000,
		LambdaJitter:       0.20,
		ChaosStdDevFloor:   1.0,
		ChaosStdDevCeil:    3.0,
		SimulationWeight:   0.6,
		SimCacheTTLMinutes: 15,

		StyleConfidenceFloor: 0.3,

		KellyFraction:    0.25,
		MaxBetPercentage: 0.15,
		MaxSingleBet:     250.0,

		MinCalibrationSamples: 10,
		MinMarketSamples:      20,
		MinBinSamples:         5,
		CalibrationWindow:     500,

		ContrarianEdgeThreshold: 10.0,
		ConfidenceGapThreshold:  15.0,
		SuspiciousGapThreshold:  20.0,
		ImpliedGapThreshold:     15.0,
		MarketConsensusWeight:   0.6,
		OddsMovementThreshold:   10.0,
		FavoriteDriftThreshold:  8.0,
		FavoritePriceCeiling:    2.00,

		SafeConfidenceFloor:       75.0,
		SafePriceCeiling:          1.65,
		SurprisePriceFloor:        2.5,
		SurpriseConfidenceCeiling: 65.0,

		CouponPoolCap:       15,
		CouponTolerance:     0.15,
		CouponStakeFraction: 0.02,

		ScanWorkers:       4,
		ScanRatePerSecond: 0,
	}
}

// Global configuration instance
var Config *PoddsConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultPoddsConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *PoddsConfig) error {
	if err := ValidateConfig(newConfig); err != nil {
		return err
	}
	Config = newConfig
	return nil
}

// LoadConfig reads a YAML file of overrides on top of the defaults and
// installs the result as the global configuration
func LoadConfig(path string) (*PoddsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := DefaultPoddsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := UpdateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *PoddsConfig) error {
	if config.GoalGridMax < 3 {
		return fmt.Errorf("GoalGridMax should be at least 3 to capture realistic scores, got: %d", config.GoalGridMax)
	}

	if config.MinGoalsFloor <= 0 {
		return fmt.Errorf("MinGoalsFloor must be positive, got: %f", config.MinGoalsFloor)
	}

	if config.SimulationTrials < 1000 {
		return fmt.Errorf("SimulationTrials should be at least 1000 for accuracy, got: %d", config.SimulationTrials)
	}

	if config.DixonColesRho > 0 || config.DixonColesRho < -0.1 {
		return fmt.Errorf("DixonColesRho should be between -0.1 and 0, got: %f", config.DixonColesRho)
	}

	if config.LambdaJitter < 0 || config.LambdaJitter > 0.5 {
		return fmt.Errorf("LambdaJitter should be between 0 and 0.5, got: %f", config.LambdaJitter)
	}

	if config.KellyFraction <= 0 || config.KellyFraction > 1.0 {
		return fmt.Errorf("KellyFraction must be between 0 and 1, got: %f", config.KellyFraction)
	}

	if config.MaxBetPercentage <= 0 || config.MaxBetPercentage > 1.0 {
		return fmt.Errorf("MaxBetPercentage must be between 0 and 1, got: %f", config.MaxBetPercentage)
	}

	if config.SimulationWeight < 0 || config.SimulationWeight > 1.0 {
		return fmt.Errorf("SimulationWeight must be between 0 and 1, got: %f", config.SimulationWeight)
	}

	if config.StyleConfidenceFloor < 0 || config.StyleConfidenceFloor >= 1.0 {
		return fmt.Errorf("StyleConfidenceFloor must be in [0, 1), got: %f", config.StyleConfidenceFloor)
	}

	if config.CouponPoolCap < 1 || config.CouponPoolCap > 20 {
		return fmt.Errorf("CouponPoolCap must be between 1 and 20 to bound the subset search, got: %d", config.CouponPoolCap)
	}

	if config.CouponTolerance <= 0 || config.CouponTolerance > 1.0 {
		return fmt.Errorf("CouponTolerance must be between 0 and 1, got: %f", config.CouponTolerance)
	}

	if config.ScanWorkers < 1 {
		return fmt.Errorf("ScanWorkers must be at least 1, got: %d", config.ScanWorkers)
	}

	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetDixonColesRho returns the Dixon-Coles correlation parameter
func GetDixonColesRho() float64 {
	return Config.DixonColesRho
}

// GetKellyFraction returns the fractional Kelly multiplier
func GetKellyFraction() float64 {
	return Config.KellyFraction
}

// GetSimulationTrials returns the default Monte Carlo trial count
func GetSimulationTrials() int {
	return Config.SimulationTrials
}
