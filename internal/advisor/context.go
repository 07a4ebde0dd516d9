package advisor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crypto-insight/internal/domain"
)

const (
	placeholder      = "N/A"
	maxHistoryPoints = 10
	timestampLayout  = "2006-01-02 15:04:05"
	dateLayout       = "2006-01-02"
)

// Formatter renders the analysis context block handed to the analysis
// generator. Field order and placeholders are stable; downstream prompts
// depend on them.
type Formatter struct {
	now func() time.Time
	loc *time.Location
}

// NewFormatter returns a Formatter using the wall clock and time.Local.
func NewFormatter() *Formatter {
	return &Formatter{now: time.Now, loc: time.Local}
}

// NewFormatterWithClock is used by tests that need deterministic output.
func NewFormatterWithClock(now func() time.Time, loc *time.Location) *Formatter {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{now: now, loc: loc}
}

func (f *Formatter) Format(
	snapshot *domain.CryptoSnapshot,
	series []domain.TimeSeriesPoint,
	metrics domain.AnalyticsResult,
	days int,
) string {
	if snapshot == nil {
		return "No cryptocurrency data available"
	}

	stamp := f.now().In(f.loc).Format(timestampLayout)

	var sb strings.Builder
	fmt.Fprintf(&sb, "ANALYSIS CONTEXT for %s (%s) - %s\n\n",
		orPlaceholder(snapshot.Name), orPlaceholder(snapshot.Symbol), stamp)

	sb.WriteString("CURRENT MARKET DATA:\n")
	fmt.Fprintf(&sb, "- Current Price: %s\n", money(snapshot.Price))
	fmt.Fprintf(&sb, "- Market Cap: %s\n", money(snapshot.MarketCap))
	fmt.Fprintf(&sb, "- Rank: %s\n", rank(snapshot.Rank))
	fmt.Fprintf(&sb, "- 24h Volume: %s\n", money(snapshot.Volume24h))
	fmt.Fprintf(&sb, "- 24h Change: %s\n", percent(snapshot.PercentChange24h))
	fmt.Fprintf(&sb, "- 7d Average Price: $%.2f\n", metrics.Average7d)
	fmt.Fprintf(&sb, "- 30d Average Price: $%.2f\n", metrics.Average30d)
	fmt.Fprintf(&sb, "- Volatility (%d days): %.2f%%\n", days, metrics.Volatility)
	fmt.Fprintf(&sb, "- Circulating Supply: %s\n", FormatSupply(snapshot.CirculatingSupply))
	fmt.Fprintf(&sb, "- Price Change (Period): %.2f%%\n", metrics.PriceChange)
	fmt.Fprintf(&sb, "- High/Low Ratio: %.2f\n\n", metrics.HighLowRatio)

	fmt.Fprintf(&sb, "PRICE HISTORY (%d data points over %d days):\n", len(series), days)
	sb.WriteString(f.history(series))
	sb.WriteString("\n\n")

	sb.WriteString("ADDITIONAL METRICS:\n")
	quality := "Limited"
	if len(series) > 0 {
		quality = "Good"
	}
	fmt.Fprintf(&sb, "- Data Quality: %s\n", quality)
	fmt.Fprintf(&sb, "- Analysis Timestamp: %s\n", stamp)

	return sb.String()
}

// history lists the most recent points, oldest first.
func (f *Formatter) history(series []domain.TimeSeriesPoint) string {
	if len(series) == 0 {
		return "No price history available"
	}
	start := 0
	if len(series) > maxHistoryPoints {
		start = len(series) - maxHistoryPoints
	}
	lines := make([]string, 0, len(series)-start)
	for _, p := range series[start:] {
		lines = append(lines, fmt.Sprintf("%s: $%.2f", p.Timestamp.In(f.loc).Format(dateLayout), p.Price))
	}
	return strings.Join(lines, "\n")
}

// FormatSupply renders a supply figure with a B/M/K magnitude suffix.
func FormatSupply(v *float64) string {
	if v == nil || *v == 0 {
		return placeholder
	}
	n := *v
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

func money(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("$%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func rank(r int) string {
	if r <= 0 {
		return placeholder
	}
	return strconv.Itoa(r)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
