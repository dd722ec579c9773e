package montecarlo

// Forecast is the full simulation report.
type Forecast struct {
	Ticker             string             `json:"ticker"`
	AssetType          string             `json:"asset_type"`
	CurrentPrice       float64            `json:"current_price"`
	LookbackPeriod     string             `json:"lookback_period"`
	ForecastDays       int                `json:"forecast_days"`
	Simulations        int                `json:"num_simulations"`
	Historical         Historical         `json:"historical"`
	Parameters         Parameters         `json:"parameters"`
	Risk               RiskMetrics        `json:"risk_metrics"`
	Scenarios          Scenarios          `json:"scenarios"`
	Probabilities      Probabilities      `json:"probability_analysis"`
	ReturnDistribution ReturnDistribution `json:"return_distribution"`
	ForecastStats      []DayStats         `json:"forecast_stats"`
	SamplePaths        [][]float64        `json:"sample_paths"`
	FinalDistribution  FinalDistribution  `json:"final_distribution"`
}

// Historical describes the calibration window.
type Historical struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	StartPrice float64 `json:"start_price"`
	EndPrice   float64 `json:"end_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	MeanPrice  float64 `json:"mean_price"`
	DataPoints int     `json:"data_points"`
}

// Parameters are the fitted GBM inputs. Rates are percentages; skewness
// and kurtosis (not excess) describe the daily log returns.
type Parameters struct {
	CAGR                 float64 `json:"cagr"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	DailyDrift           float64 `json:"daily_drift"`
	DailyVolatility      float64 `json:"daily_volatility"`
	Skewness             float64 `json:"skewness"`
	Kurtosis             float64 `json:"kurtosis"`
}

// HorizonVaR is the simulated VaR at an intermediate day.
type HorizonVaR struct {
	Days  int     `json:"days"`
	VaR95 float64 `json:"var_95"`
	VaR99 float64 `json:"var_99"`
}

// RiskMetrics are computed on final-day returns in percent, except the
// drawdown figures which come from individual paths.
type RiskMetrics struct {
	VaR95             float64      `json:"var_95"`
	VaR99             float64      `json:"var_99"`
	CVaR95            float64      `json:"cvar_95"`
	CVaR99            float64      `json:"cvar_99"`
	ParametricVaR95   float64      `json:"parametric_var_95"`
	Horizons          []HorizonVaR `json:"horizon_var"`
	MeanMaxDrawdown   float64      `json:"mean_max_drawdown"`
	MedianMaxDrawdown float64      `json:"median_max_drawdown"`
	P95MaxDrawdown    float64      `json:"p95_max_drawdown"`
	WorstDrawdown     float64      `json:"worst_drawdown"`
}

type Scenario struct {
	Description string  `json:"description"`
	FinalPrice  float64 `json:"final_price"`
	ReturnPct   float64 `json:"return_pct"`
}

type Scenarios struct {
	Base        Scenario `json:"base_case"`
	Bull        Scenario `json:"bull_case"`
	Bear        Scenario `json:"bear_case"`
	ExtremeBull Scenario `json:"extreme_bull"`
	ExtremeBear Scenario `json:"extreme_bear"`
}

// Probabilities are shares of simulated paths, in percent.
type Probabilities struct {
	Positive float64 `json:"prob_positive"`
	Negative float64 `json:"prob_negative"`
	Up10     float64 `json:"prob_up_10pct"`
	Up25     float64 `json:"prob_up_25pct"`
	Up50     float64 `json:"prob_up_50pct"`
	Double   float64 `json:"prob_double"`
	Down10   float64 `json:"prob_down_10pct"`
	Down25   float64 `json:"prob_down_25pct"`
	Down50   float64 `json:"prob_down_50pct"`
	Halve    float64 `json:"prob_halve"`
}

// Bucket is one bar of the final return histogram.
type Bucket struct {
	Range string  `json:"range"`
	Pct   float64 `json:"pct"`
}

// Bands are the percentile levels reported throughout. They are embedded
// so the levels flatten into the parent object.
type Bands struct {
	P1  float64 `json:"p1"`
	P5  float64 `json:"p5"`
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type ReturnDistribution struct {
	Mean    float64  `json:"mean"`
	Std     float64  `json:"std"`
	Skew    float64  `json:"skew"`
	Buckets []Bucket `json:"buckets"`
	Bands
}

type FinalDistribution struct {
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Bands
	ProbPositive float64 `json:"prob_positive"`
	ProbDouble   float64 `json:"prob_double"`
	ProbHalve    float64 `json:"prob_halve"`
}

// DayStats summarizes all paths on one forecast day.
type DayStats struct {
	Day  int     `json:"day"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Bands
}
