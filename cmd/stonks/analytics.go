package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stonks/internal/analysis/macro"
	"github.com/seenimoa/stonks/internal/analysis/montecarlo"
	"github.com/seenimoa/stonks/internal/backtest"
	"github.com/seenimoa/stonks/internal/dashboard"
	"github.com/seenimoa/stonks/internal/market"
)

// parseRefs reads "class:id" arguments. A bare id is taken as a stock.
func parseRefs(args []string) []market.AssetRef {
	refs := make([]market.AssetRef, 0, len(args))
	for _, a := range args {
		class, id, ok := strings.Cut(a, ":")
		if !ok {
			class, id = "stocks", a
		}
		refs = append(refs, market.AssetRef{ID: id, Type: class})
	}
	return refs
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [class:id]...",
	Short: "Compare two to ten assets",
	Long: `Aligns the assets on common dates and reports per-asset statistics,
the correlation matrix and rolling correlations.

Example:
  stonks analyze stocks:AAPL crypto:bitcoin commodities:gold --period 2y`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		res, err := dash.Analyze(cmd.Context(), parseRefs(args), period)
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(res); ok {
			return err
		}

		p.title(fmt.Sprintf("Comparison over %s (%d aligned days)", res.Period, res.DataPoints))
		rows := make([][]string, 0, len(res.Tickers))
		for _, t := range res.Tickers {
			s := res.Statistics[t]
			if s == nil {
				continue
			}
			rows = append(rows, []string{
				t, num(s.CurrentPrice), signedPct(s.TotalReturn), num(s.Volatility) + "%",
				num(s.Sharpe), num(s.Beta), num(s.MaxDrawdown) + "%",
			})
		}
		p.table([]string{"Asset", "Price", "Return", "Volatility", "Sharpe", "Beta", "Max DD"}, rows)

		p.section("Correlation")
		header := append([]string{""}, res.CorrelationLabels...)
		matrix := make([][]string, 0, len(res.CorrelationMatrix))
		for i, line := range res.CorrelationMatrix {
			row := []string{res.CorrelationLabels[i]}
			for _, v := range line {
				row = append(row, num(v))
			}
			matrix = append(matrix, row)
		}
		p.table(header, matrix)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("period", dashboard.DefaultAnalysisPeriod, "history window (1mo .. 20y, max)")
}

// --- Forecast Command ---

var forecastCmd = &cobra.Command{
	Use:   "forecast " + assetArgs,
	Short: "Monte Carlo price forecast",
	Long:  classHelp,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		sims, _ := cmd.Flags().GetInt("simulations")
		lookback, _ := cmd.Flags().GetString("lookback")

		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		f, err := dash.Forecast(cmd.Context(), dashboard.ForecastRequest{
			Class:       args[0],
			ID:          args[1],
			Days:        days,
			Simulations: sims,
			Lookback:    lookback,
		})
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(f); ok {
			return err
		}
		renderForecast(p, f)
		return nil
	},
}

func init() {
	forecastCmd.Flags().Int("days", 0, "trading days to simulate (default from config)")
	forecastCmd.Flags().Int("simulations", 0, "number of paths (default from config)")
	forecastCmd.Flags().String("lookback", dashboard.DefaultLookback, "history used to fit drift and volatility")
}

func renderForecast(p printer, f *montecarlo.Forecast) {
	p.title(fmt.Sprintf("%s: %d-day forecast, %d paths", f.Ticker, f.ForecastDays, f.Simulations))
	p.row("Current Price", num(f.CurrentPrice))
	p.row("Annualized Return", signedPct(f.Parameters.AnnualizedReturn))
	p.row("Annualized Volatility", num(f.Parameters.AnnualizedVolatility)+"%")

	p.section("Scenarios")
	for _, s := range []montecarlo.Scenario{
		f.Scenarios.ExtremeBear, f.Scenarios.Bear, f.Scenarios.Base, f.Scenarios.Bull, f.Scenarios.ExtremeBull,
	} {
		p.row(s.Description, fmt.Sprintf("%s %s", num(s.FinalPrice), signedPct(s.ReturnPct)))
	}

	p.section("Probabilities")
	p.row("Gain", num(f.Probabilities.Positive)+"%")
	p.row("Loss", num(f.Probabilities.Negative)+"%")
	p.row("Double", num(f.Probabilities.Double)+"%")
	p.row("Halve", num(f.Probabilities.Halve)+"%")

	p.section("Risk")
	p.row("VaR 95 / 99", num(f.Risk.VaR95)+"% / "+num(f.Risk.VaR99)+"%")
	p.row("CVaR 95 / 99", num(f.Risk.CVaR95)+"% / "+num(f.Risk.CVaR99)+"%")
	p.row("Median Max Drawdown", num(f.Risk.MedianMaxDrawdown)+"%")
}

// --- Invest Command ---

var investCmd = &cobra.Command{
	Use:   "invest " + assetArgs,
	Short: "Backtest a lump sum plus recurring purchases",
	Long: classHelp + `

Frequencies: daily, weekly, monthly. Without --recurring only the
initial amount is invested.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dashboard.InvestRequest{Type: args[0], Asset: args[1]}
		req.Period, _ = cmd.Flags().GetString("period")
		req.Recurring, _ = cmd.Flags().GetFloat64("recurring")
		req.Frequency, _ = cmd.Flags().GetString("frequency")
		req.Benchmark, _ = cmd.Flags().GetString("benchmark")
		if cmd.Flags().Changed("initial") {
			v, _ := cmd.Flags().GetFloat64("initial")
			req.Initial = &v
		}
		currency, _ := cmd.Flags().GetString("currency")

		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		res, err := dash.Invest(cmd.Context(), req)
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(res); ok {
			return err
		}
		renderInvest(p, res, currency)
		return nil
	},
}

func init() {
	investCmd.Flags().String("period", dashboard.DefaultAnalysisPeriod, "backtest window")
	investCmd.Flags().Float64("initial", backtest.DefaultInitial, "lump sum invested on the first day")
	investCmd.Flags().Float64("recurring", 0, "amount invested every period")
	investCmd.Flags().String("frequency", "", "recurring frequency (daily, weekly, monthly)")
	investCmd.Flags().String("benchmark", backtest.DefaultBenchmark, "benchmark ticker")
	investCmd.Flags().String("currency", "USD", "currency used to format amounts")
}

func renderInvest(p printer, r *backtest.Result, cur string) {
	p.title(fmt.Sprintf("%s: %s to %s", r.Ticker, r.StartDate, r.EndDate))
	p.row("Price", fmt.Sprintf("%s → %s %s", formatMoney(r.StartPrice, cur), formatMoney(r.EndPrice, cur), signedPct(r.PriceChangePct)))

	p.section("Investment")
	p.row("Total Invested", formatMoney(r.Investment.TotalInvested, cur))
	p.row("Purchases", fmt.Sprint(r.Investment.NumPurchases))
	p.row("Avg Cost Basis", formatMoney(r.Investment.AvgCostBasis, cur))

	p.section("Results")
	p.row("Final Value", formatMoney(r.Results.FinalValue, cur))
	p.row("Total Return", signedMoney(r.Results.TotalReturn, cur)+" "+signedPct(r.Results.TotalReturnPct))
	p.row("CAGR", signedPct(r.Results.CAGR))
	p.row("Volatility", num(r.Risk.Volatility)+"%")
	p.row("Sharpe", num(r.Risk.SharpeRatio))
	p.row("Max Drawdown", num(r.Risk.MaxDrawdown)+"%")
	p.row("Buy & Hold", formatMoney(r.Comparison.FinalValue, cur)+" "+signedPct(r.Comparison.ReturnPct))

	if b := r.Benchmark; b != nil {
		p.section("Benchmark " + b.Ticker)
		p.row("Final Value", formatMoney(b.FinalValue, cur)+" "+signedPct(b.ReturnPct))
		verdict := lossStyle.Render("underperformed")
		if b.Outperformed {
			verdict = gainStyle.Render("outperformed")
		}
		p.row("Alpha", signedPct(b.Alpha)+" "+verdict)
	}
}

// --- Sentiment Command ---

var sentimentCmd = &cobra.Command{
	Use:   "sentiment [query]",
	Short: "Score recent news for a ticker or topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("articles")

		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		rep, err := dash.Sentiment(cmd.Context(), strings.Join(args, " "), typ)
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(rep); ok {
			return err
		}

		a := rep.Aggregate
		p.title(fmt.Sprintf("%s: %s (%s)", rep.Query, a.Overall, a.Signal))
		p.row("Articles", fmt.Sprintf("%d from %s", rep.ArticlesAnalyzed, strings.Join(rep.SourcesScanned, ", ")))
		p.row("Score", fmt.Sprintf("%.3f (weighted %.3f)", a.Score, a.WeightedScore))
		p.row("Trend", fmt.Sprintf("%s %.2f", a.Trend, a.TrendStrength))
		p.row("Positive / Negative", fmt.Sprintf("%s / %s / %d neutral",
			gainStyle.Render(fmt.Sprint(a.PositiveCount)), lossStyle.Render(fmt.Sprint(a.NegativeCount)), a.NeutralCount))

		news := rep.News
		if limit > 0 && len(news) > limit {
			news = news[:limit]
		}
		if len(news) > 0 {
			rows := make([][]string, 0, len(news))
			for _, n := range news {
				rows = append(rows, []string{n.Date, fmt.Sprintf("%+.2f", n.Sentiment.Score), n.Source, truncate(n.Title, 70)})
			}
			p.section("Headlines")
			p.table([]string{"Date", "Score", "Source", "Title"}, rows)
		}
		return nil
	},
}

func init() {
	sentimentCmd.Flags().String("type", dashboard.DefaultSentimentType, "asset type hint (stock, crypto, commodity, forex, index)")
	sentimentCmd.Flags().Int("articles", 10, "headlines to print (0 for all)")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// --- Scan Command ---

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the cross-asset macro scan",
	Long: `Loads the default universe (or one class of it), computes per-asset
statistics, correlations, regimes and class summaries, and writes a
snapshot to scan.export_dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := macro.Request{}
		req.Period, _ = cmd.Flags().GetString("period")
		req.Class, _ = cmd.Flags().GetString("class")
		extra, _ := cmd.Flags().GetStringSlice("asset")
		req.Assets = parseRefs(extra)

		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		errw := cmd.ErrOrStderr()
		res, err := dash.Scan(cmd.Context(), req, func(pr macro.Progress) {
			fmt.Fprintf(errw, "%s %s %d/%d %s\n", labelStyle.Render("["+pr.ScanID+"]"), pr.Stage, pr.Done, pr.Total, pr.Asset)
		})
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(res); ok {
			return err
		}
		renderScan(p, res)
		return nil
	},
}

func init() {
	scanCmd.Flags().String("period", "5y", "history window for every asset")
	scanCmd.Flags().String("class", "", "limit the default universe to one class")
	scanCmd.Flags().StringSlice("asset", nil, "extra class:id assets to include")
}

func renderScan(p printer, r *macro.Result) {
	p.title(fmt.Sprintf("Scan %s: %d assets, %s to %s", r.ScanID, r.AssetsAnalyzed, r.DateRange.Start, r.DateRange.End))
	if len(r.Failed) > 0 {
		p.warn("failed: %s", strings.Join(r.Failed, ", "))
	}
	if r.SnapshotFile != "" {
		p.row("Snapshot", r.SnapshotFile)
	}

	assets := append([]*macro.AssetStats(nil), r.Assets...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].CAGR > assets[j].CAGR })
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{
			string(a.Class), a.Name, signedPct(a.CAGR), num(a.Volatility) + "%", num(a.SharpeRatio), string(a.Trend),
		})
	}
	p.section("Assets")
	p.table([]string{"Class", "Asset", "CAGR", "Volatility", "Sharpe", "Trend"}, rows)

	if len(r.TopCorrelations) > 0 {
		p.section("Strongest correlations")
		for _, c := range r.TopCorrelations {
			p.row(c.Asset1+" / "+c.Asset2, num(c.Pearson))
		}
	}
}
