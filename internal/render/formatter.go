package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"

	"StockCorrelator/internal/calculator"
	"StockCorrelator/internal/model"
)

// FormatCorrelation formats a coefficient to two decimals, or "n/a" when undefined.
func FormatCorrelation(c null.Float) string {
	if !c.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", c.Float64)
}

// Annotation is the text overlay drawn on the chart.
func Annotation(c null.Float) string {
	return "Correlation: " + FormatCorrelation(c)
}

func describe(c null.Float) string {
	if !c.Valid {
		return "undefined (fewer than two observations or a constant series)"
	}
	dir := "positive"
	if c.Float64 < 0 {
		dir = "negative"
	}
	return fmt.Sprintf("%s, %s", calculator.Strength(c.Float64), dir)
}

// Summary formats an analysis as plain text for terminals.
func Summary(a *model.Analysis) string {
	var b strings.Builder
	t := a.Table
	fmt.Fprintf(&b, "%s vs %s | %s → %s\n", t.SymbolA, t.SymbolB, a.Start, a.End)
	fmt.Fprintf(&b, "Observations: %s", humanize.Comma(int64(t.Len())))
	if t.Len() > 0 {
		fmt.Fprintf(&b, " (%s … %s)", t.First().Format(model.DateLayout), t.Last().Format(model.DateLayout))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s (%s)\n", Annotation(a.Correlation), describe(a.Correlation))
	return b.String()
}

// HTMLReport formats an analysis for Telegram's HTML parse mode.
func HTMLReport(a *model.Analysis) string {
	var b strings.Builder
	t := a.Table
	b.WriteString(fmt.Sprintf("📈 <b>%s / %s</b> | %s → %s\n\n",
		html.EscapeString(t.SymbolA), html.EscapeString(t.SymbolB),
		html.EscapeString(a.Start), html.EscapeString(a.End)))
	b.WriteString(fmt.Sprintf("Correlation: <b>%s</b>\n", FormatCorrelation(a.Correlation)))
	b.WriteString(fmt.Sprintf("Strength: %s\n", describe(a.Correlation)))
	b.WriteString(fmt.Sprintf("Observations: %s", humanize.Comma(int64(t.Len()))))
	if t.Len() > 0 {
		b.WriteString(fmt.Sprintf(" (%s ~ %s)", t.First().Format(model.DateLayout), t.Last().Format(model.DateLayout)))
	}
	return b.String()
}

// HTMLError formats a failure for Telegram.
func HTMLError(label, message string) string {
	return fmt.Sprintf("❌ <b>%s</b>\n\n%s", html.EscapeString(label), html.EscapeString(message))
}
