// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"talent-matching-workers/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const EventTypeMatchRunCompleted = "match.run.completed"

// SNSAPI is the subset of the SNS client used for publishing.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{client: api}
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}

// MatchRunPublisher announces completed matching runs on an SNS topic.
type MatchRunPublisher struct {
	client   *SNSClient
	topicARN string
}

func NewMatchRunPublisher(client *SNSClient, topicARN string) *MatchRunPublisher {
	return &MatchRunPublisher{client: client, topicARN: topicARN}
}

func (p *MatchRunPublisher) PublishMatchRun(ctx context.Context, event models.MatchRunEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode match run event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": stringAttr(EventTypeMatchRunCompleted),
			"runId":     stringAttr(event.RunID),
			"partial":   stringAttr(strconv.FormatBool(event.Partial)),
			"total": {
				DataType:    awssdk.String("Number"),
				StringValue: awssdk.String(strconv.Itoa(event.Total)),
			},
		},
	}
	if event.ProjectID != "" {
		input.MessageAttributes["projectId"] = stringAttr(event.ProjectID)
	}

	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish match run %s: %w", event.RunID, err)
	}
	return nil
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    awssdk.String("String"),
		StringValue: awssdk.String(v),
	}
}
