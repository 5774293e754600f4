// internal/models/rate.go
package models

import (
	"fmt"
	"strings"
	"time"
)

type SegmentKey struct {
	SkillCategory   string `json:"skillCategory"`
	PrimarySkill    string `json:"primarySkill"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	Region          string `json:"region,omitempty"`
}

// Normalize lower-cases skill fields and upper-cases level and region so
// lookups are case-insensitive.
func (k SegmentKey) Normalize() SegmentKey {
	return SegmentKey{
		SkillCategory:   strings.ToLower(strings.TrimSpace(k.SkillCategory)),
		PrimarySkill:    strings.ToLower(strings.TrimSpace(k.PrimarySkill)),
		ExperienceLevel: strings.ToUpper(strings.TrimSpace(k.ExperienceLevel)),
		Region:          strings.ToUpper(strings.TrimSpace(k.Region)),
	}
}

func (k SegmentKey) String() string {
	n := k.Normalize()
	return fmt.Sprintf("%s|%s|%s|%s", n.SkillCategory, n.PrimarySkill, wildcard(n.ExperienceLevel), wildcard(n.Region))
}

func wildcard(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

type RateObservation struct {
	SkillCategory      string    `json:"skillCategory"`
	PrimarySkill       string    `json:"primarySkill"`
	ExperienceLevel    string    `json:"experienceLevel"`
	Region             string    `json:"region"`
	HourlyRate         float64   `json:"hourlyRate"`
	ObservedAt         time.Time `json:"observedAt"`
	IsBid              bool      `json:"isBid"`
	IsContract         bool      `json:"isContract"`
	ComplianceRequired bool      `json:"complianceRequired"`
}

type RateSegment struct {
	Key                  SegmentKey `json:"key"`
	SampleSize           int        `json:"sampleSize"`
	Min                  float64    `json:"min"`
	Max                  float64    `json:"max"`
	Avg                  float64    `json:"avg"`
	Median               float64    `json:"median"`
	P10                  float64    `json:"p10"`
	P25                  float64    `json:"p25"`
	P75                  float64    `json:"p75"`
	P90                  float64    `json:"p90"`
	Trend30d             float64    `json:"trend30d"`
	Trend90d             float64    `json:"trend90d"`
	CompliancePremiumPct float64    `json:"compliancePremiumPct"`
	BidCount             int        `json:"bidCount"`
	ContractCount        int        `json:"contractCount"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type TrendDirection string

const (
	TrendRising  TrendDirection = "RISING"
	TrendStable  TrendDirection = "STABLE"
	TrendFalling TrendDirection = "FALLING"
)

type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

type MarketPosition string

const (
	PositionBelow MarketPosition = "BELOW"
	PositionAt    MarketPosition = "AT"
	PositionAbove MarketPosition = "ABOVE"
)

type PercentileBands struct {
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// MarketRate is the read-only snapshot consumed by the rate scorer.
type MarketRate struct {
	Bands      PercentileBands `json:"bands"`
	Avg        float64         `json:"avg"`
	SampleSize int             `json:"sampleSize"`
	Confidence float64         `json:"confidence"`
}

type MarketRateQuery struct {
	SkillCategory   string `json:"skillCategory"`
	PrimarySkill    string `json:"primarySkill"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	Region          string `json:"region,omitempty"`
}

func (q MarketRateQuery) Key() SegmentKey {
	return SegmentKey{
		SkillCategory:   q.SkillCategory,
		PrimarySkill:    q.PrimarySkill,
		ExperienceLevel: q.ExperienceLevel,
		Region:          q.Region,
	}.Normalize()
}

type MarketRateResult struct {
	Query             MarketRateQuery `json:"query"`
	MatchedKey        SegmentKey      `json:"matchedKey"`
	Source            string          `json:"source"`
	WideningLevel     int             `json:"wideningLevel"`
	Confidence        float64         `json:"confidence"`
	SampleSize        int             `json:"sampleSize"`
	Min               float64         `json:"min"`
	Max               float64         `json:"max"`
	Avg               float64         `json:"avg"`
	Bands             PercentileBands `json:"bands"`
	Trend30d          float64         `json:"trend30d"`
	Trend90d          float64         `json:"trend90d"`
	TrendDirection    TrendDirection  `json:"trendDirection"`
	DemandLevel       Level           `json:"demandLevel"`
	CompetitionLevel  Level           `json:"competitionLevel"`
	CompliancePremium float64         `json:"compliancePremiumPct"`
}

func (r *MarketRateResult) Snapshot() *MarketRate {
	if r == nil {
		return nil
	}
	return &MarketRate{
		Bands:      r.Bands,
		Avg:        r.Avg,
		SampleSize: r.SampleSize,
		Confidence: r.Confidence,
	}
}
