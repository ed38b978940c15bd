package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const jsonContentType = "application/json"

type (
	// ObjectAPI is the subset of *s3.Client used by S3Backend.
	ObjectAPI interface {
		GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
		PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
		HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	}

	// S3Backend keeps the whole list in one object. Each PutObject replaces the
	// object atomically.
	S3Backend struct {
		client ObjectAPI
		bucket string
		key    string
		logger logger.Logger
	}

	listDocument struct {
		Type string     `json:"type"`
		List model.List `json:"list"`
	}
)

func NewS3Backend(client ObjectAPI, bucket, key string, log logger.Logger) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		key:    key,
		logger: log.Component("s3-backend"),
	}
}

func (b *S3Backend) Name() string {
	return "s3"
}

// Load creates the object with an empty list when it does not exist yet.
// Creation is conditional, so a list stored by another writer is kept.
func (b *S3Backend) Load(ctx context.Context) (model.List, error) {
	list, err := b.get(ctx)
	if err == nil || !isMissingObject(err) {
		return list, err
	}

	created, err := b.createEmpty(ctx)
	if err != nil {
		return nil, err
	}

	if created {
		b.logger.Info().Str("bucket", b.bucket).Str("key", b.key).Msg("list object missing, created empty one")

		return model.List{}, nil
	}

	return b.get(ctx)
}

func (b *S3Backend) get(ctx context.Context) (model.List, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", b.bucket, b.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", b.bucket, b.key, err)
	}

	var doc listDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode s3://%s/%s: %w", b.bucket, b.key, err)
	}

	if doc.Type != documentType {
		return nil, fmt.Errorf("object s3://%s/%s holds %q, expected %q", b.bucket, b.key, doc.Type, documentType)
	}

	if doc.List == nil {
		return model.List{}, nil
	}

	return doc.List.Normalize(), nil
}

// createEmpty writes an empty document only if no object exists. It reports
// false when another writer got there first.
func (b *S3Backend) createEmpty(ctx context.Context) (bool, error) {
	err := b.put(ctx, model.List{}, aws.String("*"))
	if err == nil {
		return true, nil
	}

	if isConditionalWriteConflict(err) {
		return false, nil
	}

	return false, err
}

func (b *S3Backend) Replace(ctx context.Context, list model.List) error {
	return b.put(ctx, list, nil)
}

func (b *S3Backend) put(ctx context.Context, list model.List, ifNoneMatch *string) error {
	if list == nil {
		list = model.List{}
	}

	data, err := json.Marshal(listDocument{Type: documentType, List: list})
	if err != nil {
		return fmt.Errorf("failed to encode list: %w", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(jsonContentType),
		IfNoneMatch:   ifNoneMatch,
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", b.bucket, b.key, err)
	}

	return nil
}

func (b *S3Backend) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %s unavailable: %w", b.bucket, err)
	}

	return nil
}

func isMissingObject(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound

	return errors.As(err, &notFound)
}

// isConditionalWriteConflict matches 412 (object exists) and 409 (a concurrent
// conditional write is in flight) responses.
func isConditionalWriteConflict(err error) bool {
	var statusErr interface{ HTTPStatusCode() int }
	if !errors.As(err, &statusErr) {
		return false
	}

	code := statusErr.HTTPStatusCode()

	return code == http.StatusPreconditionFailed || code == http.StatusConflict
}
