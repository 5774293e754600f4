// internal/compliance/profile.go
package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"talent-matching-workers/internal/models"
)

const DefaultExpiringWindow = 30 * 24 * time.Hour

// BuildProfile derives the compliance snapshot of a candidate as of asOf.
// Verified records and unexpired attestations count as held; anything that
// expires within window is also flagged as expiring soon.
func BuildProfile(c models.CandidateProfile, asOf time.Time, window time.Duration) *models.FreelancerComplianceProfile {
	if window <= 0 {
		window = DefaultExpiringWindow
	}
	horizon := asOf.Add(window)

	p := &models.FreelancerComplianceProfile{
		CandidateID:     c.ID,
		Records:         c.ComplianceRecords,
		Clearances:      c.Clearances,
		Attestations:    c.Attestations,
		ComplianceTypes: make(map[string]bool),
		ClearanceLevels: make(map[models.ClearanceLevel]bool),
		ExpiringSoon:    make(map[string]time.Time),
		BuiltAt:         asOf,
		Horizon:         horizon,
		SourceDigest:    SourceDigest(c),
	}

	markExpiry := func(code string, exp *time.Time) {
		if exp != nil && !exp.After(horizon) {
			if prev, ok := p.ExpiringSoon[code]; !ok || exp.Before(prev) {
				p.ExpiringSoon[code] = *exp
			}
		}
	}

	for _, r := range c.ComplianceRecords {
		if models.VerificationStatus(strings.ToUpper(string(r.Status))) != models.VerificationVerified {
			continue
		}
		if r.ExpiresAt != nil && !r.ExpiresAt.After(asOf) {
			continue
		}
		code := models.NormalizeCode(r.Type)
		p.ComplianceTypes[code] = true
		markExpiry(code, r.ExpiresAt)
	}

	for _, a := range c.Attestations {
		if a.ExpiresAt != nil && !a.ExpiresAt.After(asOf) {
			continue
		}
		code := models.NormalizeCode(a.Type)
		p.ComplianceTypes[code] = true
		markExpiry(code, a.ExpiresAt)
	}

	for _, cl := range c.Clearances {
		level := models.ClearanceLevel(strings.ToUpper(string(cl.Level)))
		if !level.Valid() {
			continue
		}
		if cl.ExpiresAt != nil && !cl.ExpiresAt.After(asOf) {
			continue
		}
		p.ClearanceLevels[level] = true
		markExpiry(ClearanceCode(level), cl.ExpiresAt)
	}

	// Expiring entries only matter for codes still held.
	for code := range p.ExpiringSoon {
		if strings.HasPrefix(code, "CLEARANCE_") {
			continue
		}
		if !p.ComplianceTypes[code] {
			delete(p.ExpiringSoon, code)
		}
	}
	return p
}

// SourceDigest fingerprints the compliance inputs of a candidate. Two
// candidates with equal digests derive the same profile for a given asOf.
func SourceDigest(c models.CandidateProfile) string {
	data, err := json.Marshal(struct {
		Records      []models.ComplianceRecord  `json:"r"`
		Clearances   []models.ClearanceRecord   `json:"c"`
		Attestations []models.AttestationRecord `json:"a"`
	}{c.ComplianceRecords, c.Clearances, c.Attestations})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Evaluate computes the compliance status of a profile against the hard
// requirements. It is the gate used by matching runs.
func Evaluate(p *models.FreelancerComplianceProfile, required []string, minClearance *models.ClearanceLevel) models.ComplianceStatus {
	status := models.ComplianceStatus{
		Met:      []string{},
		Missing:  []string{},
		Expiring: []string{},
	}
	for _, code := range models.NormalizeCodes(required) {
		if !p.Has(code) {
			status.Missing = append(status.Missing, code)
			continue
		}
		status.Met = append(status.Met, code)
		if p.IsExpiringSoon(code) {
			status.Expiring = append(status.Expiring, code)
		}
	}
	status.AllRequirementsMet = len(status.Missing) == 0 && p.MeetsClearance(minClearance)
	return status
}
