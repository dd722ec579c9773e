package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// Palette
var (
	colorPrimary = lipgloss.Color("#6B50FF")
	colorSuccess = lipgloss.Color("#00FFB2")
	colorError   = lipgloss.Color("#E94090")
	colorWarning = lipgloss.Color("#FFD300")
	colorInfo    = lipgloss.Color("#00CED1")
	colorMuted   = lipgloss.Color("#858392")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	gainStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	lossStyle   = lipgloss.NewStyle().Foreground(colorError)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	borderStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

const labelWidth = 24

// printer writes either styled text or indented JSON.
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) title(s string) {
	fmt.Fprintln(p.w, titleStyle.Render(s))
}

func (p printer) section(s string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, headerStyle.Render(s))
}

func (p printer) row(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", labelStyle.Render(padRight(label+":", labelWidth)), value)
}

func (p printer) warn(format string, args ...any) {
	fmt.Fprintln(p.w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

func (p printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(p.w, t.String())
}

// emit prints v as JSON. It reports whether JSON output is enabled.
func (p printer) emit(v any) (bool, error) {
	if !p.json {
		return false, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return true, err
	}
	_, err = fmt.Fprintln(p.w, string(b))
	return true, err
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// formatMoney renders v in the currency's own format. Unknown codes
// fall back to a plain number with the code appended; "%" marks yields.
func formatMoney(v float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "%":
		return fmt.Sprintf("%.3f%%", v)
	case "":
		code = "USD"
	}
	if v != 0 && math.Abs(v) < 1 {
		// Sub-unit crypto prices need more digits than the currency has.
		return fmt.Sprintf("%.6f %s", v, code)
	}
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", v, code)
	}
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// signedPct renders a percentage with its sign, colored by direction.
func signedPct(v float64) string {
	s := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return gainStyle.Render(s)
	case v < 0:
		return lossStyle.Render(s)
	}
	return s
}

// signedMoney renders a gain or loss amount colored by direction.
func signedMoney(v float64, code string) string {
	s := formatMoney(v, code)
	if v > 0 {
		return gainStyle.Render("+" + s)
	}
	if v < 0 {
		return lossStyle.Render(s)
	}
	return s
}

func optFloat(v *float64) string {
	if v == nil {
		return labelStyle.Render("n/a")
	}
	return fmt.Sprintf("%.2f", *v)
}

func num(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}
