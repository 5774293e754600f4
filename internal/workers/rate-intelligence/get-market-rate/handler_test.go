// internal/workers/rate-intelligence/get-market-rate/handler_test.go
package getmarketrate

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/rateintel"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

var goQuery = models.MarketRateQuery{
	SkillCategory:   "Development",
	PrimarySkill:    "Go",
	ExperienceLevel: "EXPERT",
	Region:          "US",
}

var segmentColumns = []string{
	"skill_category", "primary_skill", "experience_level", "region",
	"sample_size", "min_rate", "max_rate", "avg_rate", "median_rate",
	"p10", "p25", "p75", "p90", "trend_30d", "trend_90d",
	"compliance_premium_pct", "bid_count", "contract_count", "updated_at",
}

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	supplier := rateintel.NewSupplier(rateintel.NewPostgresStore(db), nil, rateintel.Config{}, logger.NewNoOpLogger()).
		WithClock(func() time.Time { return testNow })
	return NewHandler(&Config{Timeout: 5 * time.Second}, supplier, logger.NewNoOpLogger()), mock
}

func expectGoSegment(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM rate_segments").
		WithArgs("development", "go", "EXPERT", "US").
		WillReturnRows(sqlmock.NewRows(segmentColumns).AddRow(
			"development", "go", "EXPERT", "US",
			120, 20.0, 180.0, 70.0, 65.0,
			35.0, 50.0, 85.0, 120.0, 3.2, -1.5,
			18.0, 300, 80, testNow,
		))
}

// ==========================
// Execute
// ==========================

func TestExecute_MarketRate(t *testing.T) {
	h, mock := setupHandler(t)
	expectGoSegment(mock)

	out, err := h.Execute(context.Background(), &Input{Query: goQuery})
	require.NoError(t, err)

	require.NotNil(t, out.Market)
	assert.Equal(t, rateintel.SourceSegment, out.Market.Source)
	assert.Equal(t, 0, out.Market.WideningLevel)
	assert.Equal(t, 65.0, out.Market.Bands.Median)
	assert.Equal(t, models.LevelHigh, out.Market.DemandLevel)
	assert.Nil(t, out.AdjustedMedian)
	assert.Empty(t, out.Factors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_WithFactors(t *testing.T) {
	h, mock := setupHandler(t)
	expectGoSegment(mock)

	out, err := h.Execute(context.Background(), &Input{
		Query: goQuery,
		Factors: &Factors{
			YearsExperience:    10,
			AvgRating:          5,
			SkillMatch:         1,
			ComplianceRequired: true,
		},
	})
	require.NoError(t, err)

	// 65 x1.5 experience x1.0 rating x1.2 skill x1.18 compliance x1.1 demand
	require.NotNil(t, out.AdjustedMedian)
	assert.InDelta(t, 151.87, *out.AdjustedMedian, 0.01)
	assert.InDelta(t, 106.31, *out.SuggestedMin, 0.01)
	assert.InDelta(t, 212.61, *out.SuggestedMax, 0.01)
	require.Len(t, out.Factors, 5)
	assert.Equal(t, "Experience", out.Factors[0].Name)
	assert.Equal(t, models.ImpactPositive, out.Factors[0].Impact)
}

func TestExecute_Errors(t *testing.T) {
	t.Run("query without skill", func(t *testing.T) {
		h, mock := setupHandler(t)

		_, err := h.Execute(context.Background(), &Input{Query: models.MarketRateQuery{Region: "US"}})
		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidRateQuery, stdErr.Code)
		assert.False(t, stdErr.Retryable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("every lookup fails", func(t *testing.T) {
		h, mock := setupHandler(t)
		for i := 0; i < 3; i++ {
			mock.ExpectQuery("FROM rate_segments").WillReturnError(errors.New("connection reset"))
		}

		_, err := h.Execute(context.Background(), &Input{Query: goQuery})
		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeRateDataUnavailable, stdErr.Code)
		assert.True(t, stdErr.Retryable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil input", func(t *testing.T) {
		h, _ := setupHandler(t)
		_, err := h.Execute(context.Background(), nil)
		stdErr, ok := apperrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
	})
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.ValidateJSON(`{"query": {"primarySkill": "Go"}, "factors": {"avgRating": 4.5}}`).Valid)

	res := inputSchema.ValidateJSON(`{"query": {"experienceLevel": "GURU"}, "factors": {"avgRating": 9}}`)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("factors.avgRating"))
}
