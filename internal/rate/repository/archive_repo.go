package repository

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nholding/rate-calendar/internal/audit"
)

// PutObjectAPI is the part of the S3 client the archive needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores one JSON document per batch:
//
//	<prefix>/<yyyy>/<mm>/<dd>/<batchID>.json
type S3Archive struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3Archive returns an archive writing to bucket under prefix. A zero
// timeout leaves the caller's deadline in charge.
func NewS3Archive(client PutObjectAPI, bucket, prefix string, timeout time.Duration) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix, timeout: timeout}
}

// ObjectKey is the key of a batch document, partitioned by receipt day (UTC).
func ObjectKey(prefix string, b *audit.Batch) string {
	day := b.AuditInfo.ReceivedAt.UTC().Format("2006/01/02")
	return path.Join(prefix, day, b.ID+".json")
}

// Archive uploads the batch document.
//
// Example:
//
//	err := archive.Archive(ctx, batch)
//	// s3://rate-archive/rate-calendar/2021/01/05/01EVX....json
func (a *S3Archive) Archive(ctx context.Context, b *audit.Batch) error {
	doc, err := b.Document()
	if err != nil {
		return err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	key := ObjectKey(a.prefix, b)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"outcome": b.Outcome,
			"stage":   b.Stage,
		},
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}

	return nil
}
