// Package source loads raw conversation payloads for the normalizer.
//
// A Loader returns the payload items in the loose shape Assemble accepts:
// objects with an optional nested "thread" object and a "messages" array.
// Loaders do no normalization of their own.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/config"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/httpretry"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
)

// ErrUnknownType is returned by New for an unsupported source type.
var ErrUnknownType = errors.New("unknown source type")

// Loader fetches one complete raw payload.
type Loader interface {
	Name() string
	Load(ctx context.Context) ([]interface{}, error)
}

// New builds the Loader selected by cfg.Type. The caller owns any
// io.Closer the returned Loader implements.
func New(ctx context.Context, cfg config.SourceConfig, log logger.Sink) (Loader, error) {
	switch cfg.Type {
	case config.SourceFile:
		return NewFileLoader(cfg.File), nil

	case config.SourceS3:
		awsCfg, err := loadAWSConfig(ctx, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
				o.UsePathStyle = true
			}
		})
		return NewS3Loader(client, cfg.S3.Bucket, cfg.S3.Key), nil

	case config.SourceDynamoDB:
		awsCfg, err := loadAWSConfig(ctx, cfg.DynamoDB.Region, "", "")
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
			}
		})
		return NewDynamoLoader(client, cfg.DynamoDB.ThreadsTable, cfg.DynamoDB.MessagesTable, log), nil

	case config.SourcePostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("pinging postgres: %w", err)
		}
		return NewPostgresLoader(db, cfg.Postgres.Table), nil

	case config.SourceHTTP:
		client := httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, cfg.HTTP.MaxRetries,
			httpretry.WithLogger(log))
		return NewHTTPLoader(client, cfg.HTTP.URL, cfg.HTTP.Token), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

// loadAWSConfig uses static credentials when both keys are set and the
// default chain (env, shared config, IAM role) otherwise.
func loadAWSConfig(ctx context.Context, region, accessKey, secretKey string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}
