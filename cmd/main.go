package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/podds"
)

func main() {
	logger.SetShowDateTime(true)

	logger.Info("Starting github.com/richard-senior/podds")

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "scan":
		if err := runScan(); err != nil {
			logger.Error("Scan failed:", err)
			os.Exit(1)
		}
	case "calibrate":
		if len(os.Args) < 3 {
			logger.Error("calibrate requires a database path")
			os.Exit(1)
		}
		if err := runCalibrate(os.Args[2]); err != nil {
			logger.Error("Calibration failed:", err)
			os.Exit(1)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Println("usage: podds <command>")
	fmt.Println("  scan              analyse the sample slate and build a coupon")
	fmt.Println("  calibrate <db>    score historical predictions from a calibration database")
}

// runScan analyses a small hardcoded slate to demonstrate the pipeline
// end to end. Real deployments hand the scanner fixtures fetched from a
// data provider.
func runScan() error {
	history := podds.NewOddsHistory()
	now := time.Now()

	// Seed some price history so the anomaly detector has movement to inspect
	history.Record(podds.OddsSnapshot{FixtureID: "f1", Market: podds.MarketMatchResult, Pick: podds.PickHome, Price: 1.70, Bookmaker: "demo", ObservedAt: now.Add(-6 * time.Hour)})
	history.Record(podds.OddsSnapshot{FixtureID: "f1", Market: podds.MarketMatchResult, Pick: podds.PickHome, Price: 1.92, Bookmaker: "demo", ObservedAt: now})

	fixtures := []*podds.Fixture{
		{
			FixtureID: "f1", HomeTeamName: "Leeds", AwayTeamName: "Norwich",
			HomeTeamID: "t1", HomeGoalsForPerMatch: 1.9, HomeGoalsAgainstPerMatch: 1.1, HomePossessionAvg: 57, HomeShotsPerMatch: 15, HomeFormMultiplier: 1.05,
			AwayTeamID: "t2", AwayGoalsForPerMatch: 1.3, AwayGoalsAgainstPerMatch: 1.4, AwayPossessionAvg: 48, AwayShotsPerMatch: 12,
			KickOff: now.Add(48 * time.Hour),
			Quotes: []podds.MarketQuote{
				{FixtureID: "f1", Market: podds.MarketMatchResult, Pick: podds.PickHome, Price: 1.92, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f1", Market: podds.MarketMatchResult, Pick: podds.PickDraw, Price: 3.60, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f1", Market: podds.MarketMatchResult, Pick: podds.PickAway, Price: 4.10, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f1", Market: podds.MarketOver25, Pick: podds.PickOver, Price: 1.85, Bookmaker: "demo", ObservedAt: now},
			},
		},
		{
			FixtureID: "f2", HomeTeamName: "Millwall", AwayTeamName: "Hull",
			HomeTeamID: "t3", HomeGoalsForPerMatch: 1.0, HomeGoalsAgainstPerMatch: 0.8, HomePossessionAvg: 44, HomeShotsPerMatch: 10,
			AwayTeamID: "t4", AwayGoalsForPerMatch: 1.1, AwayGoalsAgainstPerMatch: 1.2, AwayPossessionAvg: 50, AwayShotsPerMatch: 11,
			KickOff: now.Add(48 * time.Hour),
			Quotes: []podds.MarketQuote{
				{FixtureID: "f2", Market: podds.MarketMatchResult, Pick: podds.PickHome, Price: 2.40, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f2", Market: podds.MarketMatchResult, Pick: podds.PickDraw, Price: 3.10, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f2", Market: podds.MarketMatchResult, Pick: podds.PickAway, Price: 3.20, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f2", Market: podds.MarketBTTS, Pick: podds.PickNo, Price: 1.95, Bookmaker: "demo", ObservedAt: now},
			},
		},
		{
			FixtureID: "f3", HomeTeamName: "Blackburn", AwayTeamName: "Stoke",
			HomeTeamID: "t5", HomeGoalsForPerMatch: 1.6, HomeGoalsAgainstPerMatch: 1.7, HomePossessionAvg: 51, HomeShotsPerMatch: 13,
			AwayTeamID: "t6", AwayGoalsForPerMatch: 1.5, AwayGoalsAgainstPerMatch: 1.6, AwayPossessionAvg: 49, AwayShotsPerMatch: 12,
			KickOff: now.Add(72 * time.Hour),
			Quotes: []podds.MarketQuote{
				{FixtureID: "f3", Market: podds.MarketMatchResult, Pick: podds.PickHome, Price: 2.20, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f3", Market: podds.MarketMatchResult, Pick: podds.PickDraw, Price: 3.40, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f3", Market: podds.MarketMatchResult, Pick: podds.PickAway, Price: 3.30, Bookmaker: "demo", ObservedAt: now},
				{FixtureID: "f3", Market: podds.MarketOver25, Pick: podds.PickOver, Price: 1.80, Bookmaker: "demo", ObservedAt: now},
			},
		},
	}

	scanner := podds.NewScanner(history)
	scanner.RefreshAdjustments()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bankroll := 1000.0
	report := scanner.ScanFixtures(ctx, fixtures, bankroll)

	for _, analysis := range report.Analyses {
		fmt.Printf("[%s] %s\n", analysis.Category, analysis.Rationale)
		for _, v := range analysis.Value {
			fmt.Printf("    %s/%s model %.1f%% fair %.2f market %.2f edge %.1f%% -> %s (stake %s)\n",
				v.Market, v.Pick, v.ModelProbability, v.FairOdds, v.MarketOdds, v.EdgePercent,
				v.Recommendation, v.Kelly.SuggestedStake.StringFixed(2))
		}
		for _, a := range analysis.Anomalies {
			fmt.Printf("    anomaly: %s\n", a.Reason)
		}
	}

	coupon, err := podds.BuildCoupon(report.Analyses, podds.CouponConstraintSet{
		TargetOdds:    5.0,
		MaxLegs:       3,
		MinConfidence: 40,
		MinValue:      0,
		Bankroll:      bankroll,
	})
	if err == podds.ErrCannotMeetConstraints {
		fmt.Println("No coupon: constraints could not be met on this slate")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Coupon %s at combined %.2f, stake %s, returns %s:\n",
		coupon.ID, coupon.CombinedOdds, coupon.TotalStake.StringFixed(2), coupon.PotentialReturn.StringFixed(2))
	for _, leg := range coupon.Legs {
		fmt.Printf("    %s v %s %s/%s @ %.2f\n", leg.HomeTeam, leg.AwayTeam, leg.Market, leg.Pick, leg.Price)
	}
	return nil
}

// runCalibrate reads the recent settled-prediction window from a calibration
// database and prints the report
func runCalibrate(dbPath string) error {
	store, err := podds.OpenCalibrationStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.RecentWindow(0)
	if err != nil {
		return err
	}

	report := podds.Calibrate(records)
	if report.InsufficientData {
		fmt.Printf("Insufficient data: only %d settled records, need %d\n", report.SampleSize, podds.Config.MinCalibrationSamples)
		return nil
	}

	fmt.Printf("Samples: %d\n", report.SampleSize)
	fmt.Printf("Brier score: %.4f (%s)\n", report.BrierScore, report.Calibration)
	fmt.Printf("Hit rate: %.1f%%\n", report.HitRate*100)
	fmt.Printf("Overconfidence index: %+.4f\n", report.OverconfidenceIndex)
	fmt.Printf("Reliability: %.4f  Resolution: %.4f\n", report.ReliabilityScore, report.ResolutionScore)
	for market, multiplier := range report.SuggestedAdjustments {
		fmt.Printf("Adjustment %s: x%.3f\n", market, multiplier)
	}
	return nil
}
