// internal/models/compliance.go
package models

import (
	"strings"
	"time"
)

type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationPending  VerificationStatus = "PENDING"
	VerificationRejected VerificationStatus = "REJECTED"
	VerificationExpired  VerificationStatus = "EXPIRED"
)

type ClearanceLevel string

const (
	ClearancePublicTrust  ClearanceLevel = "PUBLIC_TRUST"
	ClearanceConfidential ClearanceLevel = "CONFIDENTIAL"
	ClearanceSecret       ClearanceLevel = "SECRET"
	ClearanceTopSecret    ClearanceLevel = "TOP_SECRET"
	ClearanceTopSecretSCI ClearanceLevel = "TOP_SECRET_SCI"
)

var clearanceRank = map[ClearanceLevel]int{
	ClearancePublicTrust:  1,
	ClearanceConfidential: 2,
	ClearanceSecret:       3,
	ClearanceTopSecret:    4,
	ClearanceTopSecretSCI: 5,
}

// Rank returns the ordinal of the level, 0 for unknown levels.
func (l ClearanceLevel) Rank() int {
	return clearanceRank[ClearanceLevel(strings.ToUpper(string(l)))]
}

func (l ClearanceLevel) Valid() bool {
	return l.Rank() > 0
}

type ComplianceRecord struct {
	Type         string             `json:"type"`
	Status       VerificationStatus `json:"status"`
	ExpiresAt    *time.Time         `json:"expiresAt,omitempty"`
	SelfAttested bool               `json:"selfAttested"`
}

type ClearanceRecord struct {
	Level     ClearanceLevel `json:"level"`
	GrantedAt *time.Time     `json:"grantedAt,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

type AttestationRecord struct {
	Type       string     `json:"type"`
	AttestedAt time.Time  `json:"attestedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// FreelancerComplianceProfile is a per-run snapshot of a candidate's
// compliance state with derived sets for membership checks.
type FreelancerComplianceProfile struct {
	CandidateID     string                  `json:"candidateId"`
	Records         []ComplianceRecord      `json:"records"`
	Clearances      []ClearanceRecord       `json:"clearances"`
	Attestations    []AttestationRecord     `json:"attestations"`
	ComplianceTypes map[string]bool         `json:"complianceTypes"`
	ClearanceLevels map[ClearanceLevel]bool `json:"clearanceLevels"`
	ExpiringSoon    map[string]time.Time    `json:"expiringSoon,omitempty"`
	BuiltAt         time.Time               `json:"builtAt"`
	Horizon         time.Time               `json:"horizon"`
	SourceDigest    string                  `json:"sourceDigest,omitempty"`
}

// Expiries lists the expiry time of every record, clearance and attestation
// the profile was built from.
func (p *FreelancerComplianceProfile) Expiries() []time.Time {
	if p == nil {
		return nil
	}
	var out []time.Time
	for _, r := range p.Records {
		if r.ExpiresAt != nil {
			out = append(out, *r.ExpiresAt)
		}
	}
	for _, c := range p.Clearances {
		if c.ExpiresAt != nil {
			out = append(out, *c.ExpiresAt)
		}
	}
	for _, a := range p.Attestations {
		if a.ExpiresAt != nil {
			out = append(out, *a.ExpiresAt)
		}
	}
	return out
}

func (p *FreelancerComplianceProfile) Has(code string) bool {
	if p == nil {
		return false
	}
	return p.ComplianceTypes[NormalizeCode(code)]
}

func (p *FreelancerComplianceProfile) IsExpiringSoon(code string) bool {
	if p == nil {
		return false
	}
	_, ok := p.ExpiringSoon[NormalizeCode(code)]
	return ok
}

// HighestClearance returns the highest held clearance rank.
func (p *FreelancerComplianceProfile) HighestClearance() int {
	if p == nil {
		return 0
	}
	highest := 0
	for level := range p.ClearanceLevels {
		if r := level.Rank(); r > highest {
			highest = r
		}
	}
	return highest
}

// MeetsClearance reports whether a held clearance is at or above min.
// A nil minimum is always met.
func (p *FreelancerComplianceProfile) MeetsClearance(min *ClearanceLevel) bool {
	if min == nil || *min == "" {
		return true
	}
	return p.HighestClearance() >= min.Rank()
}

// NormalizeCode canonicalizes compliance codes ("soc 2" -> "SOC_2").
func NormalizeCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	c = strings.ReplaceAll(c, "-", "_")
	return strings.ReplaceAll(c, " ", "_")
}

// NormalizeCodes canonicalizes a list of codes into a set, keeping first-seen
// order and dropping blanks.
func NormalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, raw := range codes {
		code := NormalizeCode(raw)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

type ComplianceStatus struct {
	AllRequirementsMet bool     `json:"allRequirementsMet"`
	Met                []string `json:"met"`
	Missing            []string `json:"missing"`
	Expiring           []string `json:"expiring"`
}
