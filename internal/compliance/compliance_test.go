// internal/compliance/compliance_test.go
package compliance

import (
	"testing"
	"time"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := asOf.Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

func testCandidate() models.CandidateProfile {
	return models.CandidateProfile{
		ID: "cand-1",
		ComplianceRecords: []models.ComplianceRecord{
			{Type: "hipaa", Status: models.VerificationVerified, ExpiresAt: at(365)},
			{Type: "SOC 2", Status: models.VerificationVerified, ExpiresAt: at(10)},
			{Type: "PCI-DSS", Status: models.VerificationPending},
			{Type: "ISO27001", Status: models.VerificationVerified, ExpiresAt: at(-1)},
		},
		Clearances: []models.ClearanceRecord{
			{Level: "secret", ExpiresAt: at(200)},
			{Level: models.ClearanceTopSecret, ExpiresAt: at(-30)},
		},
		Attestations: []models.AttestationRecord{
			{Type: "NDA", AttestedAt: asOf.Add(-time.Hour)},
		},
	}
}

func TestBuildProfile(t *testing.T) {
	p := BuildProfile(testCandidate(), asOf, 0)

	assert.Equal(t, "cand-1", p.CandidateID)
	assert.True(t, p.Has("HIPAA"))
	assert.True(t, p.Has("soc_2"))
	assert.True(t, p.Has("nda"))
	assert.False(t, p.Has("PCI_DSS"), "pending records are not held")
	assert.False(t, p.Has("ISO27001"), "expired records are not held")

	assert.True(t, p.ClearanceLevels[models.ClearanceSecret])
	assert.False(t, p.ClearanceLevels[models.ClearanceTopSecret], "expired clearance dropped")

	assert.True(t, p.IsExpiringSoon("SOC_2"))
	assert.False(t, p.IsExpiringSoon("HIPAA"))
	assert.Equal(t, asOf, p.BuiltAt)
	assert.Equal(t, asOf.Add(DefaultExpiringWindow), p.Horizon)
	assert.Equal(t, SourceDigest(testCandidate()), p.SourceDigest)
}

func TestSourceDigest(t *testing.T) {
	c := testCandidate()
	assert.Equal(t, SourceDigest(c), SourceDigest(testCandidate()))

	revoked := testCandidate()
	revoked.ComplianceRecords[0].Status = models.VerificationRejected
	assert.NotEqual(t, SourceDigest(c), SourceDigest(revoked))

	renamed := testCandidate()
	renamed.DisplayName = "Someone Else"
	assert.Equal(t, SourceDigest(c), SourceDigest(renamed), "only compliance inputs count")
}

func TestEvaluate(t *testing.T) {
	p := BuildProfile(testCandidate(), asOf, 0)
	secret := models.ClearanceSecret
	topSecret := models.ClearanceTopSecret

	tests := []struct {
		name      string
		required  []string
		clearance *models.ClearanceLevel
		allMet    bool
		missing   []string
		expiring  []string
	}{
		{"all met", []string{"HIPAA", "soc-2"}, &secret, true, []string{}, []string{"SOC_2"}},
		{"missing code", []string{"HIPAA", "FEDRAMP"}, nil, false, []string{"FEDRAMP"}, []string{}},
		{"clearance too low", []string{"HIPAA"}, &topSecret, false, []string{}, []string{}},
		{"duplicates collapse", []string{"hipaa", "HIPAA"}, nil, true, []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Evaluate(p, tt.required, tt.clearance)
			assert.Equal(t, tt.allMet, s.AllRequirementsMet)
			assert.Equal(t, tt.missing, s.Missing)
			assert.Equal(t, tt.expiring, s.Expiring)
		})
	}
}

func TestEvaluate_NilProfile(t *testing.T) {
	s := Evaluate(nil, []string{"HIPAA"}, nil)
	assert.False(t, s.AllRequirementsMet)
	assert.Equal(t, []string{"HIPAA"}, s.Missing)

	assert.True(t, Evaluate(nil, nil, nil).AllRequirementsMet)
}

func TestChecker_CheckEligibility(t *testing.T) {
	checker := NewChecker(DefaultCatalog(), logger.NewTestLogger(t))
	p := BuildProfile(testCandidate(), asOf, 0)
	topSecret := models.ClearanceTopSecret

	e := checker.CheckEligibility(p, []string{"HIPAA", "SOC2", "SOC_2", "CUSTOM_THING"}, &topSecret)

	assert.False(t, e.Eligible)
	assert.Equal(t, "cand-1", e.CandidateID)
	require.Len(t, e.Requirements, 4)

	byCode := map[string]RequirementCheck{}
	for _, r := range e.Requirements {
		byCode[r.Code] = r
	}
	assert.Equal(t, StateMet, byCode["HIPAA"].State)
	assert.Nil(t, byCode["HIPAA"].Remediation)

	assert.Equal(t, StateExpiring, byCode["SOC_2"].State)
	require.NotNil(t, byCode["SOC_2"].ExpiresAt)
	require.NotNil(t, byCode["SOC_2"].Remediation)

	assert.Equal(t, StateMissing, byCode["SOC2"].State)
	require.NotNil(t, byCode["SOC2"].Remediation)
	assert.Equal(t, 10, byCode["SOC2"].Remediation.EstimatedDays)

	custom := byCode["CUSTOM_THING"]
	assert.Equal(t, StateMissing, custom.State)
	assert.Equal(t, CategoryCode, custom.Category)
	require.NotNil(t, custom.Remediation)
	assert.NotEmpty(t, custom.Remediation.Steps)

	require.NotNil(t, e.Clearance)
	assert.False(t, e.Clearance.Met)
	assert.Equal(t, models.ClearanceSecret, e.Clearance.Highest)
	require.NotNil(t, e.Clearance.Remediation)
	assert.Equal(t, 240, e.Clearance.Remediation.EstimatedDays)
}

func TestChecker_GapAnalysis(t *testing.T) {
	checker := NewChecker(nil, logger.NewNoOpLogger())
	p := BuildProfile(models.CandidateProfile{ID: "cand-2"}, asOf, 0)
	secret := models.ClearanceSecret

	report := checker.GapAnalysis(p, []string{"NDA", "GDPR", "HIPAA", "ITAR"}, &secret)

	require.Len(t, report.Gaps, 5)
	var order []string
	for _, g := range report.Gaps {
		order = append(order, g.Code)
		assert.True(t, g.Blocking)
	}
	assert.Equal(t, []string{"HIPAA", "CLEARANCE_SECRET", "GDPR", "NDA", "ITAR"}, order)

	// HIPAA 14 + SECRET 120 + ITAR 14 run in sequence; GDPR and NDA overlap.
	assert.Equal(t, 148, report.SequentialDays)
	assert.Equal(t, 5, report.ParallelDays)
	assert.Equal(t, 148, report.EstimatedTotalDays)
	assert.InDelta(t, 400.0, report.EstimatedTotalCost, 1e-9)
	assert.Equal(t, 0.0, report.ReadinessPercent)
}

func TestChecker_GapAnalysis_FullyReady(t *testing.T) {
	checker := NewChecker(nil, logger.NewNoOpLogger())
	p := BuildProfile(testCandidate(), asOf, 0)

	report := checker.GapAnalysis(p, []string{"HIPAA", "SOC_2"}, nil)

	assert.Empty(t, report.Gaps)
	assert.Equal(t, 100.0, report.ReadinessPercent)
	assert.Equal(t, []string{"SOC_2"}, report.ExpiringRenewals)
	assert.Equal(t, 0, report.EstimatedTotalDays)
}

func TestStaticCatalog(t *testing.T) {
	c := NewStaticCatalog(
		Requirement{Code: "soc-2", Name: "first"},
		Requirement{Code: "SOC 2", Name: "second"},
	)
	r, ok := c.Lookup("Soc_2")
	require.True(t, ok)
	assert.Equal(t, "second", r.Name)
	assert.Equal(t, 1, c.Len())

	_, ok = DefaultCatalog().Lookup(ClearanceCode(models.ClearanceTopSecretSCI))
	assert.True(t, ok)
}
