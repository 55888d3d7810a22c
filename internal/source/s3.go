package source

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

// ObjectGetter is the slice of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads one JSON export object.
type S3Loader struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Loader creates an S3Loader for s3://bucket/key.
func NewS3Loader(client ObjectGetter, bucket, key string) *S3Loader {
	return &S3Loader{client: client, bucket: bucket, key: key}
}

func (l *S3Loader) Name() string { return fmt.Sprintf("s3://%s/%s", l.bucket, l.key) }

// Load fetches and decodes the object.
func (l *S3Loader) Load(ctx context.Context) ([]interface{}, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", l.Name(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.Name(), err)
	}
	return normalize.DecodePayload(data)
}
