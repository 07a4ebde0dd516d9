// Package analytics derives summary metrics from a price series using fixed
// six-digit decimal arithmetic with half-up rounding.
package analytics

import (
	"errors"
	"math"

	"crypto-insight/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of fractional digits kept by every division.
	Scale = 6
	// AnnualizationDays scales daily volatility to a yearly figure.
	AnnualizationDays = 365
)

// ErrUnsortedSeries is returned for series not ordered by timestamp.
var ErrUnsortedSeries = errors.New("analytics: series is not sorted by timestamp")

var hundred = decimal.NewFromInt(100)

// Default is the result reported for series with fewer than two points.
func Default() domain.AnalyticsResult {
	return domain.AnalyticsResult{HighLowRatio: 1}
}

// ComputeMetrics returns volatility, 7 and 30 point averages, percent change
// and high/low ratio for series. Equal timestamps are allowed; a timestamp
// earlier than its predecessor is rejected.
func ComputeMetrics(series []domain.TimeSeriesPoint) (domain.AnalyticsResult, error) {
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp.Before(series[i-1].Timestamp) {
			return Default(), ErrUnsortedSeries
		}
	}

	res := Default()
	res.DataPoints = len(series)
	if len(series) < 2 {
		return res, nil
	}

	prices := make([]decimal.Decimal, len(series))
	for i, p := range series {
		prices[i] = decimal.NewFromFloat(p.Price)
	}

	res.Volatility = Volatility(prices).InexactFloat64()
	res.Average7d = Average(prices, 7).InexactFloat64()
	res.Average30d = Average(prices, 30).InexactFloat64()
	res.PriceChange = PriceChange(prices).InexactFloat64()
	res.HighLowRatio = HighLowRatio(prices).InexactFloat64()
	return res, nil
}

// DailyReturns returns (p[i]-p[i-1])/p[i-1] for each i >= 1, skipping points
// whose predecessor is zero.
func DailyReturns(prices []decimal.Decimal) []decimal.Decimal {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]decimal.Decimal, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev.IsZero() {
			continue
		}
		returns = append(returns, prices[i].Sub(prev).DivRound(prev, Scale))
	}
	return returns
}

// Volatility is the population standard deviation of daily returns,
// annualized and expressed in percent.
func Volatility(prices []decimal.Decimal) decimal.Decimal {
	returns := DailyReturns(prices)
	if len(returns) == 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(len(returns)))

	sum := decimal.Zero
	for _, r := range returns {
		sum = sum.Add(r)
	}
	mean := sum.DivRound(n, Scale)

	sq := decimal.Zero
	for _, r := range returns {
		d := r.Sub(mean)
		sq = sq.Add(d.Mul(d))
	}
	variance := sq.DivRound(n, Scale)

	std := math.Sqrt(variance.InexactFloat64())
	return decimal.NewFromFloat(std * 100 * math.Sqrt(AnnualizationDays)).Round(Scale)
}

// Average is the mean of the last k prices, or of all prices when fewer
// exist.
func Average(prices []decimal.Decimal, k int) decimal.Decimal {
	if len(prices) == 0 || k <= 0 {
		return decimal.Zero
	}
	if k > len(prices) {
		k = len(prices)
	}
	sum := decimal.Zero
	for _, p := range prices[len(prices)-k:] {
		sum = sum.Add(p)
	}
	return sum.DivRound(decimal.NewFromInt(int64(k)), Scale)
}

// PriceChange is the percent move from the first to the last price.
func PriceChange(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) < 2 || prices[0].IsZero() {
		return decimal.Zero
	}
	first, last := prices[0], prices[len(prices)-1]
	return last.Sub(first).Mul(hundred).DivRound(first, Scale)
}

// HighLowRatio is max/min over prices, or 1 when undefined.
func HighLowRatio(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.NewFromInt(1)
	}
	lo, hi := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p.LessThan(lo) {
			lo = p
		}
		if p.GreaterThan(hi) {
			hi = p
		}
	}
	if lo.IsZero() {
		return decimal.NewFromInt(1)
	}
	return hi.DivRound(lo, Scale)
}
