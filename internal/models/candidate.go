// internal/models/candidate.go
package models

import "time"

type VerificationTier string

const (
	TierBasic    VerificationTier = "BASIC"
	TierVerified VerificationTier = "VERIFIED"
	TierPremium  VerificationTier = "PREMIUM"
)

type WorkPattern struct {
	Timezone               string     `json:"timezone"`
	MaxConcurrentProjects  int        `json:"maxConcurrentProjects"`
	CurrentActiveProjects  int        `json:"currentActiveProjects"`
	WeeklyHoursAvailable   float64    `json:"weeklyHoursAvailable"`
	AvailableFrom          *time.Time `json:"availableFrom,omitempty"`
	AvgResponseTimeMinutes *float64   `json:"avgResponseTimeMinutes,omitempty"`
	AvgFirstBidTimeHours   *float64   `json:"avgFirstBidTimeHours,omitempty"`
	LastActiveAt           *time.Time `json:"lastActiveAt,omitempty"`
}

type SuccessMetrics struct {
	TotalProjects      int     `json:"totalProjects"`
	CompletedProjects  int     `json:"completedProjects"`
	AvgRating          float64 `json:"avgRating"`
	OnTimeDeliveryRate float64 `json:"onTimeDeliveryRate"`
	RepeatClientRate   float64 `json:"repeatClientRate"`
}

// CandidateProfile is everything the scorers read about one freelancer.
// Nil pointers mean the data is absent; Degraded names auxiliary sections
// that failed to load for this candidate.
type CandidateProfile struct {
	ID                   string              `json:"id"`
	DisplayName          string              `json:"displayName"`
	Headline             string              `json:"headline,omitempty"`
	Skills               []string            `json:"skills"`
	Endorsements         map[string]int      `json:"endorsements,omitempty"`
	HourlyRate           *float64            `json:"hourlyRate,omitempty"`
	YearsExperience      *float64            `json:"yearsExperience,omitempty"`
	PlatformProjectCount int                 `json:"platformProjectCount"`
	TrustScore           *float64            `json:"trustScore,omitempty"`
	VerificationTier     VerificationTier    `json:"verificationTier,omitempty"`
	ComplianceRecords    []ComplianceRecord  `json:"complianceRecords,omitempty"`
	Clearances           []ClearanceRecord   `json:"clearances,omitempty"`
	Attestations         []AttestationRecord `json:"attestations,omitempty"`
	WorkPattern          *WorkPattern        `json:"workPattern,omitempty"`
	SuccessMetrics       *SuccessMetrics     `json:"successMetrics,omitempty"`
	Degraded             []string            `json:"degraded,omitempty"`
}

func (c CandidateProfile) AvgRating() float64 {
	if c.SuccessMetrics == nil {
		return 0
	}
	return c.SuccessMetrics.AvgRating
}

// CandidateFilter narrows the pool returned by a candidate store.
type CandidateFilter struct {
	ExcludeIDs []string
	Limit      int
}

type CandidateLoadFailure struct {
	CandidateID string
	Err         error
}

// CandidateBatch is the result of one bulk fetch. Failures lists candidates
// whose core profile could not be decoded.
type CandidateBatch struct {
	Profiles []CandidateProfile
	Failures []CandidateLoadFailure
}

type RelatedSkill struct {
	Skill            string  `json:"skill"`
	Strength         float64 `json:"strength"`
	RelationshipType string  `json:"relationshipType"`
}

// RelatedSkillsMap maps a lower-cased skill to its related skills.
type RelatedSkillsMap map[string][]RelatedSkill
