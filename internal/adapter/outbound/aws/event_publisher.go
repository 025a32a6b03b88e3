package aws

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/staybook/payments/internal/port/outbound"
)

// SNSPublishAPI is the subset of the SNS client used by the publisher.
type SNSPublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// eventPublisher implements outbound.PaymentEventPublisherPort on SNS.
type eventPublisher struct {
	client   SNSPublishAPI
	topicARN string
}

// NewEventPublisher creates a new SNS payment event publisher.
func NewEventPublisher(client SNSPublishAPI, topicARN string) outbound.PaymentEventPublisherPort {
	return &eventPublisher{client: client, topicARN: topicARN}
}

func (p *eventPublisher) Publish(ctx context.Context, event outbound.PaymentOutcomeEvent) error {
	if p.topicARN == "" {
		return fmt.Errorf("empty topic arn")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(p.topicARN),
		Message:  sdkaws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(event.Type),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", event.Type, err)
	}
	return nil
}

// Compile-time check
var _ outbound.PaymentEventPublisherPort = (*eventPublisher)(nil)
