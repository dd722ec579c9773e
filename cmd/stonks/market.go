package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stonks/internal/dashboard"
	"github.com/seenimoa/stonks/pkg/models"
)

const assetArgs = "[class] [id]"

const classHelp = `Classes: stocks, crypto, commodities, forex, indices, treasury.
Ids are tickers (AAPL, ^GSPC), CoinGecko ids (bitcoin) or catalog keys
(gold, eurusd, 10y).`

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote " + assetArgs,
	Short: "Show the latest quote for an asset",
	Long:  classHelp,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		q, err := dash.Quote(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(q); ok {
			return err
		}
		renderQuote(p, q)
		return nil
	},
}

func renderQuote(p printer, q *models.Quote) {
	name := q.Ticker
	if q.Name != "" && q.Name != q.Ticker {
		name = fmt.Sprintf("%s (%s)", q.Name, q.Ticker)
	}
	p.title(name)
	p.row("Price", formatMoney(q.CurrentPrice, q.Currency))
	if q.PreviousClose != 0 {
		p.row("Change", signedMoney(q.Change, q.Currency)+" "+signedPct(q.ChangePct))
		p.row("Previous Close", formatMoney(q.PreviousClose, q.Currency))
	}
	if q.DayHigh != 0 || q.DayLow != 0 {
		p.row("Day Range", formatMoney(q.DayLow, q.Currency)+" - "+formatMoney(q.DayHigh, q.Currency))
	}
	if q.WeekHigh52 != 0 || q.WeekLow52 != 0 {
		p.row("52w Range", formatMoney(q.WeekLow52, q.Currency)+" - "+formatMoney(q.WeekHigh52, q.Currency))
	}
	if q.Volume != 0 {
		p.row("Volume", num(q.Volume))
	}
	if q.Exchange != "" {
		p.row("Exchange", q.Exchange)
	}
	p.row("Source", q.Source)
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history " + assetArgs,
	Short: "Show daily price history",
	Long:  classHelp,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		interval, _ := cmd.Flags().GetString("interval")
		rows, _ := cmd.Flags().GetInt("rows")

		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		h, err := dash.History(cmd.Context(), args[0], args[1], period, interval)
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(h); ok {
			return err
		}

		p.title(fmt.Sprintf("%s: %d bars from %s", h.Ticker, h.DataPoints, h.Source))
		bars := h.Data
		if rows > 0 && len(bars) > rows {
			bars = bars[len(bars)-rows:]
		}
		table := make([][]string, 0, len(bars))
		for _, b := range bars {
			table = append(table, []string{b.Date, num(b.Open), num(b.High), num(b.Low), num(b.Close), num(b.Volume)})
		}
		p.table([]string{"Date", "Open", "High", "Low", "Close", "Volume"}, table)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("period", dashboard.DefaultHistoryPeriod, "lookback period (1mo, 3mo, 1y, 5y, max)")
	historyCmd.Flags().String("interval", "1d", "bar interval")
	historyCmd.Flags().Int("rows", 15, "number of most recent bars to print (0 for all)")
}

// --- Technical Command ---

var technicalCmd = &cobra.Command{
	Use:   "technical " + assetArgs,
	Short: "Show indicators, pivots and support/resistance levels",
	Long:  classHelp,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		s, err := dash.Technical(cmd.Context(), args[0], args[1], period)
		if err != nil {
			return err
		}
		p := out(cmd)
		if ok, err := p.emit(s); ok {
			return err
		}

		p.title(fmt.Sprintf("%s technicals as of %s", s.Ticker, s.Date))
		p.row("Close", num(s.Close))
		p.row("Trend", fmt.Sprintf("%s %s", s.Trend, signedPct(s.TrendChange)))
		p.row("RSI 14", optFloat(s.RSI14))
		p.row("SMA 20", optFloat(s.SMA20))
		p.row("SMA 50", optFloat(s.SMA50))
		p.row("EMA 20", optFloat(s.EMA20))
		return nil
	},
}

func init() {
	technicalCmd.Flags().String("period", dashboard.DefaultAnalysisPeriod, "history used for the indicators")
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every asset class",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		results := dash.Market().Search(cmd.Context(), strings.Join(args, " "))
		p := out(cmd)
		if ok, err := p.emit(results); ok {
			return err
		}
		if len(results) == 0 {
			p.warn("no matches")
			return nil
		}
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.Type, r.ID, r.Symbol, r.Name})
		}
		p.table([]string{"Type", "ID", "Symbol", "Name"}, rows)
		return nil
	},
}

// --- Macro Command ---

var macroCmd = &cobra.Command{
	Use:   "macro [indicator]",
	Short: "List macro indicators or show one series",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		p := out(cmd)

		if len(args) == 0 {
			byRegion := dash.Market().IndicatorsByRegion()
			if ok, err := p.emit(byRegion); ok {
				return err
			}
			regions := make([]string, 0, len(byRegion))
			for r := range byRegion {
				regions = append(regions, r)
			}
			sort.Strings(regions)
			for _, r := range regions {
				p.section(r)
				for _, m := range byRegion[r] {
					p.row(m.Key, fmt.Sprintf("%s %s", m.Name, labelStyle.Render("("+string(m.Source)+")")))
				}
			}
			return nil
		}

		m, err := dash.Market().Macro(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok, err := p.emit(m); ok {
			return err
		}
		p.title(fmt.Sprintf("%s (%s)", m.Name, m.Symbol))
		p.row("Current", num(m.Current))
		p.row("Previous", num(m.Previous))
		p.row("Change", fmt.Sprintf("%s %s", num(m.Change), signedPct(m.ChangePct)))
		p.row("YoY", signedPct(m.YoYChangePct))
		p.row("52w Range", num(m.Low52w)+" - "+num(m.High52w))
		p.row("All-time Range", num(m.AllTimeLow)+" - "+num(m.AllTimeHigh))
		p.row("Observations", fmt.Sprintf("%d (%s to %s)", m.DataPoints, m.StartDate, m.EndDate))
		p.row("Source", m.Source)
		return nil
	},
}
