package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"field-service-compliance/internal/config"
	"field-service-compliance/internal/models"
)

// S3Sink stores the snapshot as one object per organization.
type S3Sink struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Sink builds an S3-backed sink, honoring a custom endpoint for
// MinIO-style local setups.
func NewS3Sink(ctx context.Context, cfg config.Config) (*S3Sink, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 snapshot backend requires SNAPSHOT_S3_BUCKET")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:               cfg.S3Endpoint,
					HostnameImmutable: cfg.S3PathStyle,
					SigningRegion:     cfg.S3Region,
					Source:            aws.EndpointSourceCustom,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
	})
	return &S3Sink{client: client, bucket: cfg.S3Bucket, key: cfg.S3Key}, nil
}

func (s *S3Sink) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: fmt.Errorf("marshal snapshot: %w", err)}
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *S3Sink) Load(ctx context.Context) (Snapshot, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: err}
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: fmt.Errorf("decode snapshot: %w", err)}
	}
	return snap, true, nil
}
