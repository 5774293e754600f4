// internal/common/aws/sns_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"talent-matching-workers/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMatchRunPublisher_PublishMatchRun(t *testing.T) {
	api := new(mockSNS)
	publisher := NewMatchRunPublisher(NewSNSClientWithAPI(api), "arn:aws:sns:us-east-1:123456789012:match-runs")

	event := models.MatchRunEvent{
		RunID:           "run-1",
		ProjectID:       "proj-9",
		Total:           4,
		Scored:          4,
		Gated:           2,
		TopCandidateIDs: []string{"a", "b"},
		CompletedAt:     time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}

	var captured *sns.PublishInput
	api.On("Publish", mock.Anything, mock.AnythingOfType("*sns.PublishInput")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil)

	require.NoError(t, publisher.PublishMatchRun(context.Background(), event))
	api.AssertExpectations(t)

	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:match-runs", *captured.TopicArn)
	assert.Equal(t, EventTypeMatchRunCompleted, *captured.MessageAttributes["eventType"].StringValue)
	assert.Equal(t, "proj-9", *captured.MessageAttributes["projectId"].StringValue)
	assert.Equal(t, "4", *captured.MessageAttributes["total"].StringValue)
	assert.Equal(t, "Number", *captured.MessageAttributes["total"].DataType)

	var decoded models.MatchRunEvent
	require.NoError(t, json.Unmarshal([]byte(*captured.Message), &decoded))
	assert.Equal(t, event.TopCandidateIDs, decoded.TopCandidateIDs)
	assert.Equal(t, 2, decoded.Gated)
}

func TestMatchRunPublisher_PublishError(t *testing.T) {
	api := new(mockSNS)
	publisher := NewMatchRunPublisher(NewSNSClientWithAPI(api), "arn:topic")

	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("Throttling"))

	err := publisher.PublishMatchRun(context.Background(), models.MatchRunEvent{RunID: "run-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-2")
	assert.Contains(t, err.Error(), "Throttling")
}
