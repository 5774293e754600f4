// internal/rateintel/stats.go
package rateintel

import (
	"math"
	"sort"
	"time"

	"talent-matching-workers/internal/models"

	"gonum.org/v1/gonum/stat"
)

// DefaultBands are used when no market data exists for a query at any
// widening level.
var DefaultBands = models.PercentileBands{P10: 25, P25: 35, Median: 50, P75: 75, P90: 100}

// ComputeSegment aggregates raw observations into segment statistics.
// It returns nil when there are no usable observations.
func ComputeSegment(key models.SegmentKey, obs []models.RateObservation, asOf time.Time) *models.RateSegment {
	rates := make([]float64, 0, len(obs))
	var withCompliance, without []float64
	bids, contracts := 0, 0
	for _, o := range obs {
		if o.HourlyRate <= 0 || math.IsNaN(o.HourlyRate) {
			continue
		}
		rates = append(rates, o.HourlyRate)
		if o.ComplianceRequired {
			withCompliance = append(withCompliance, o.HourlyRate)
		} else {
			without = append(without, o.HourlyRate)
		}
		if o.IsBid {
			bids++
		}
		if o.IsContract {
			contracts++
		}
	}
	if len(rates) == 0 {
		return nil
	}
	sort.Float64s(rates)

	seg := &models.RateSegment{
		Key:           key.Normalize(),
		SampleSize:    len(rates),
		Min:           rates[0],
		Max:           rates[len(rates)-1],
		Avg:           stat.Mean(rates, nil),
		P10:           quantile(0.10, rates),
		P25:           quantile(0.25, rates),
		Median:        quantile(0.50, rates),
		P75:           quantile(0.75, rates),
		P90:           quantile(0.90, rates),
		Trend30d:      trend(obs, asOf, 30),
		Trend90d:      trend(obs, asOf, 90),
		BidCount:      bids,
		ContractCount: contracts,
		UpdatedAt:     asOf,
	}
	if len(withCompliance) > 0 && len(without) > 0 {
		base := stat.Mean(without, nil)
		if base > 0 {
			seg.CompliancePremiumPct = round1((stat.Mean(withCompliance, nil) - base) / base * 100)
		}
	}
	return seg
}

// quantile expects sorted input.
func quantile(p float64, sorted []float64) float64 {
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// trend compares the mean rate of the last `days` days with the mean of the
// window before it, as a percentage change.
func trend(obs []models.RateObservation, asOf time.Time, days int) float64 {
	window := time.Duration(days) * 24 * time.Hour
	recentStart := asOf.Add(-window)
	priorStart := recentStart.Add(-window)

	var recent, prior []float64
	for _, o := range obs {
		if o.HourlyRate <= 0 || o.ObservedAt.After(asOf) {
			continue
		}
		switch {
		case !o.ObservedAt.Before(recentStart):
			recent = append(recent, o.HourlyRate)
		case !o.ObservedAt.Before(priorStart):
			prior = append(prior, o.HourlyRate)
		}
	}
	if len(recent) == 0 || len(prior) == 0 {
		return 0
	}
	base := stat.Mean(prior, nil)
	if base == 0 {
		return 0
	}
	return round1((stat.Mean(recent, nil) - base) / base * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func TrendDirection(delta float64) models.TrendDirection {
	switch {
	case delta > 5:
		return models.TrendRising
	case delta < -5:
		return models.TrendFalling
	}
	return models.TrendStable
}

// DemandLevel classifies demand from bids per contract. Few bids per
// contract over a meaningful sample means buyers compete for freelancers.
func DemandLevel(seg *models.RateSegment) models.Level {
	if seg == nil || seg.ContractCount == 0 {
		return models.LevelMedium
	}
	ratio := float64(seg.BidCount) / float64(seg.ContractCount)
	switch {
	case ratio < 5 && seg.SampleSize >= 50:
		return models.LevelHigh
	case ratio > 15:
		return models.LevelLow
	}
	return models.LevelMedium
}

// CompetitionLevel classifies the inter-quartile spread.
func CompetitionLevel(b models.PercentileBands) models.Level {
	spread := b.P75 - b.P25
	switch {
	case spread > 50:
		return models.LevelHigh
	case spread > 25:
		return models.LevelMedium
	}
	return models.LevelLow
}

// Percentile interpolates the position of rate within the bands, 0-100.
func Percentile(rate float64, b models.PercentileBands) float64 {
	points := []struct{ pct, v float64 }{
		{10, b.P10}, {25, b.P25}, {50, b.Median}, {75, b.P75}, {90, b.P90},
	}
	if rate <= points[0].v {
		if points[0].v <= 0 {
			return 0
		}
		return round1(math.Max(0, rate/points[0].v*10))
	}
	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if rate <= hi.v {
			if hi.v == lo.v {
				return hi.pct
			}
			return round1(lo.pct + (rate-lo.v)/(hi.v-lo.v)*(hi.pct-lo.pct))
		}
	}
	last := points[len(points)-1]
	if last.v <= 0 {
		return 100
	}
	return round1(math.Min(100, 90+(rate-last.v)/last.v*100))
}

// Position places a rate in the BELOW / AT / ABOVE market bands.
func Position(rate float64, b models.PercentileBands) models.MarketPosition {
	switch {
	case rate < b.Median:
		return models.PositionBelow
	case rate < b.P75:
		return models.PositionAt
	}
	return models.PositionAbove
}
