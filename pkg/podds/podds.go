package podds

/**
* Podds is a golang library for turning raw team statistics and bookmaker
* prices into ranked, risk-classified betting recommendations for football
* fixtures: a Poisson outcome model, a style interaction layer, a Monte Carlo
* simulator, Kelly-based value sizing, a calibration feedback loop, a
* contrarian/anomaly detector and a slate scanner that assembles multi-leg
* coupons.
 */
