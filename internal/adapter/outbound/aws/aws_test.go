package aws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/payments/internal/port/outbound"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	return &sns.PublishOutput{MessageId: sdkaws.String("msg-1")}, nil
}

func TestWebhookArchive_Archive(t *testing.T) {
	t.Run("stores payload under dated key", func(t *testing.T) {
		client := &fakeS3{}
		archive := NewWebhookArchive(client, "payments-webhooks", "webhooks/").(*webhookArchive)
		archive.now = func() time.Time { return time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC) }

		payload := []byte(`{"id":"evt_1"}`)
		require.NoError(t, archive.Archive(context.Background(), "stripe", "evt_1", payload))

		assert.Equal(t, "payments-webhooks", sdkaws.ToString(client.input.Bucket))
		assert.Equal(t, "webhooks/stripe/2024/05/01/evt_1.json", sdkaws.ToString(client.input.Key))
		assert.Equal(t, "application/json", sdkaws.ToString(client.input.ContentType))
		assert.Equal(t, payload, client.body)
	})

	t.Run("propagates s3 errors", func(t *testing.T) {
		archive := NewWebhookArchive(&fakeS3{err: errors.New("access denied")}, "bucket", "")
		err := archive.Archive(context.Background(), "stripe", "evt_1", []byte(`{}`))
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestEventPublisher_Publish(t *testing.T) {
	event := outbound.PaymentOutcomeEvent{
		Type:          "payment.succeeded",
		PaymentID:     "6f1c1f7e-1111-4c4c-9c9c-000000000001",
		ReservationID: 42,
		Amount:        35000,
		Currency:      "eur",
		Status:        "succeeded",
		OccurredAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("publishes json with type attribute", func(t *testing.T) {
		client := &fakeSNS{}
		publisher := NewEventPublisher(client, "arn:aws:sns:eu-west-1:000000000000:payments")

		require.NoError(t, publisher.Publish(context.Background(), event))
		assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:payments", sdkaws.ToString(client.input.TopicArn))
		assert.Equal(t, "payment.succeeded", sdkaws.ToString(client.input.MessageAttributes["event_type"].StringValue))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(sdkaws.ToString(client.input.Message)), &decoded))
		assert.Equal(t, "payment.succeeded", decoded["type"])
		assert.Equal(t, float64(42), decoded["reservation_id"])
		assert.Equal(t, float64(35000), decoded["amount"])
		assert.Equal(t, "2024-05-01T12:00:00Z", decoded["occurred_at"])
	})

	t.Run("requires a topic", func(t *testing.T) {
		publisher := NewEventPublisher(&fakeSNS{}, "")
		assert.Error(t, publisher.Publish(context.Background(), event))
	})

	t.Run("propagates sns errors", func(t *testing.T) {
		publisher := NewEventPublisher(&fakeSNS{err: errors.New("throttled")}, "arn")
		assert.ErrorContains(t, publisher.Publish(context.Background(), event), "throttled")
	})
}
