// internal/workers/compliance/gap-analysis/handler_test.go
package gapanalysis

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/matching"
	"talent-matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func testCandidate() models.CandidateProfile {
	expires := testNow.Add(7 * 24 * time.Hour)
	return models.CandidateProfile{
		ID: "f-3",
		ComplianceRecords: []models.ComplianceRecord{
			{Type: "HIPAA", Status: models.VerificationVerified, ExpiresAt: &expires},
		},
	}
}

func newTestHandler(store matching.CandidateStore) *Handler {
	svc := matching.NewService(store, matching.Config{}, logger.NewNoOpLogger())
	h := NewHandler(&Config{Timeout: 5 * time.Second}, svc, compliance.NewChecker(nil, logger.NewNoOpLogger()), logger.NewNoOpLogger())
	h.now = func() time.Time { return testNow }
	return h
}

func gapCodes(gaps []compliance.Gap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.Code)
	}
	return out
}

// ==========================
// Execute
// ==========================

func TestExecute_RollsUpGaps(t *testing.T) {
	secret := models.ClearanceSecret
	h := newTestHandler(matching.NewMemoryStore(testCandidate()))

	out, err := h.Execute(context.Background(), &Input{
		CandidateID:        "f-3",
		RequiredCompliance: []string{"HIPAA", "PCI_DSS", "ISO27001", "GDPR"},
		MinClearance:       &secret,
	})
	require.NoError(t, err)

	assert.False(t, out.Ready)
	assert.Equal(t, []string{"ISO27001", "PCI_DSS", "CLEARANCE_SECRET", "GDPR"}, gapCodes(out.Gaps))
	assert.Equal(t, 4, out.BlockingGaps)

	// ISO27001 30d + PCI_DSS 21d + SECRET 120d run in sequence; GDPR runs alongside.
	assert.Equal(t, 171, out.SequentialDays)
	assert.Equal(t, 5, out.ParallelDays)
	assert.Equal(t, 171, out.EstimatedTotalDays)
	assert.InDelta(t, 1500.0, out.EstimatedTotalCost, 0.001)
	assert.InDelta(t, 20.0, out.ReadinessPercent, 0.001)

	assert.Equal(t, []string{"HIPAA"}, out.ExpiringRenewals)
	require.NotNil(t, out.EstimatedReadyAt)
	assert.Equal(t, testNow.AddDate(0, 0, 171), *out.EstimatedReadyAt)
}

func TestExecute_NoGaps(t *testing.T) {
	h := newTestHandler(matching.NewMemoryStore(testCandidate()))

	out, err := h.Execute(context.Background(), &Input{CandidateID: "f-3", RequiredCompliance: []string{"HIPAA"}})
	require.NoError(t, err)

	assert.True(t, out.Ready)
	assert.Empty(t, out.Gaps)
	assert.Equal(t, 100.0, out.ReadinessPercent)
	assert.Nil(t, out.EstimatedReadyAt)
	assert.Equal(t, testNow, out.AnalyzedAt)
}

func TestExecute_UnknownCodeUsesGenericRemediation(t *testing.T) {
	h := newTestHandler(matching.NewMemoryStore(testCandidate()))

	out, err := h.Execute(context.Background(), &Input{CandidateID: "f-3", RequiredCompliance: []string{"nerc-cip"}})
	require.NoError(t, err)

	require.Len(t, out.Gaps, 1)
	assert.Equal(t, "NERC_CIP", out.Gaps[0].Code)
	assert.NotEmpty(t, out.Gaps[0].Remediation.Steps)
}

func TestExecute_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := newTestHandler(matching.NewMemoryStore()).Execute(context.Background(), &Input{CandidateID: "nobody"})
		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeCandidateNotFound, stdErr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		store := matching.NewMemoryStore()
		store.FailWith(errors.New("i/o timeout"))

		_, err := newTestHandler(store).Execute(context.Background(), &Input{CandidateID: "f-3"})
		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeCandidateStoreUnavailable, stdErr.Code)
	})
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.ValidateJSON(`{"candidateId": "f-3", "minClearance": "SECRET"}`).Valid)
	assert.True(t, inputSchema.ValidateJSON(`{"requiredCompliance": ["HIPAA"]}`).HasErrors("candidateId"))
}
