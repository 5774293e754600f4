// internal/workers/rate-intelligence/bid-comparison/handler_test.go
package bidcomparison

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/rateintel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var goQuery = models.MarketRateQuery{SkillCategory: "Development", PrimarySkill: "Go", Region: "EU"}

type mockSupplier struct {
	mock.Mock
}

func (m *mockSupplier) BidComparison(ctx context.Context, p rateintel.BidParams) (*rateintel.BidComparison, error) {
	args := m.Called(ctx, p)
	if res := args.Get(0); res != nil {
		return res.(*rateintel.BidComparison), args.Error(1)
	}
	return nil, args.Error(1)
}

func market() *models.MarketRateResult {
	return &models.MarketRateResult{
		Query:      goQuery,
		MatchedKey: goQuery.Key(),
		Source:     rateintel.SourceSegment,
		Bands:      models.PercentileBands{P10: 30, P25: 40, Median: 60, P75: 80, P90: 110},
	}
}

func createTestHandler(s RateSupplier) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, s, logger.NewNoOpLogger())
}

// ==========================
// Execute
// ==========================

func TestExecute_Positions(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		position models.MarketPosition
		delta    float64
		recs     int
	}{
		{"below median", 50, models.PositionBelow, -10, 1},
		{"at market", 70, models.PositionAt, 10, 0},
		{"above p90", 120, models.PositionAbove, 60, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockSupplier{}
			m.On("BidComparison", mock.Anything, rateintel.BidParams{Query: goQuery, Rate: tt.rate}).
				Return(rateintel.CompareBid(market(), tt.rate), nil)

			out, err := createTestHandler(m).Execute(context.Background(), &Input{Query: goQuery, Rate: tt.rate})
			require.NoError(t, err)

			assert.Equal(t, tt.rate, out.Rate)
			assert.Equal(t, tt.position, out.Position)
			assert.Equal(t, tt.delta, out.DeltaFromMedian)
			assert.Len(t, out.Recommendations, tt.recs)
			assert.NotNil(t, out.Market)
			m.AssertExpectations(t)
		})
	}
}

func TestExecute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"invalid query", rateintel.ErrInvalidQuery, apperrors.ErrCodeInvalidRateQuery},
		{"no data", rateintel.ErrRateDataUnavailable, apperrors.ErrCodeRateDataUnavailable},
		{"deadline", context.DeadlineExceeded, apperrors.ErrCodeTimeout},
		{"unexpected", errors.New("boom"), apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockSupplier{}
			m.On("BidComparison", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := createTestHandler(m).Execute(context.Background(), &Input{Query: goQuery, Rate: 50})
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestExecute_ZeroRateRejectedBySupplier(t *testing.T) {
	supplier := rateintel.NewSupplier(nil, nil, rateintel.Config{}, logger.NewNoOpLogger())

	_, err := createTestHandler(supplier).Execute(context.Background(), &Input{Query: goQuery, Rate: 0})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidRateQuery, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.ValidateJSON(`{"query": {"primarySkill": "Go"}, "rate": 75}`).Valid)

	res := inputSchema.ValidateJSON(`{"query": {"primarySkill": "Go"}, "rate": -1}`)
	assert.True(t, res.HasErrors("rate"))
	assert.True(t, inputSchema.ValidateJSON(`{"query": {"primarySkill": "Go"}}`).HasErrors("rate"))
}
