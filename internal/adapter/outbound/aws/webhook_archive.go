package aws

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staybook/payments/internal/port/outbound"
)

// S3PutObjectAPI is the subset of the S3 client used by the archive.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// webhookArchive implements outbound.WebhookArchivePort on S3.
type webhookArchive struct {
	client S3PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewWebhookArchive creates a new S3 webhook archive.
func NewWebhookArchive(client S3PutObjectAPI, bucket, prefix string) outbound.WebhookArchivePort {
	return &webhookArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Archive stores the raw payload under <prefix>/<provider>/<yyyy>/<mm>/<dd>/<event id>.json.
func (a *webhookArchive) Archive(ctx context.Context, provider, eventID string, payload []byte) error {
	key := a.objectKey(provider, eventID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(a.bucket),
		Key:         sdkaws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: sdkaws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive webhook %s: %w", key, err)
	}
	return nil
}

func (a *webhookArchive) objectKey(provider, eventID string) string {
	day := a.now().UTC().Format("2006/01/02")
	return path.Join(a.prefix, provider, day, eventID+".json")
}

// Compile-time check
var _ outbound.WebhookArchivePort = (*webhookArchive)(nil)
