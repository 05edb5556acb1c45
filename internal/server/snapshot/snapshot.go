// Package snapshot periodically exports the account table as a JSON object
// to S3-compatible storage.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/seedvault/internal/logging"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Settings locates and authenticates against the object store.
type S3Settings struct {
	Region       string
	User         string
	Password     string
	BaseEndpoint string
}

// NewS3Client builds a path-style client, which MinIO and most
// S3-compatible stores expect.
func NewS3Client(ctx context.Context, s S3Settings) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.User, s.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// Uploader is the slice of *s3.Client used here.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Source lists the accounts to export.
type Source interface {
	Accounts(ctx context.Context) ([]*models.Account, error)
}

type Snapshotter struct {
	src      Source
	uploader Uploader
	bucket   string
	logger   logging.Logger
	now      func() time.Time
}

func NewSnapshotter(src Source, uploader Uploader, bucket string, logger logging.Logger) *Snapshotter {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Snapshotter{
		src:      src,
		uploader: uploader,
		bucket:   bucket,
		logger:   logger.With("module", "snapshot"),
		now:      time.Now,
	}
}

// Key returns a fresh object key for a snapshot taken at t.
func Key(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("snapshots/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

// Export uploads one snapshot and returns its key.
func (s *Snapshotter) Export(ctx context.Context) (string, error) {
	accs, err := s.src.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	if accs == nil {
		accs = []*models.Account{}
	}

	body, err := json.Marshal(accs)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := Key(s.now())
	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	s.logger.Info(ctx, "snapshot exported", "key", key, "accounts", len(accs))
	return key, nil
}

// Run exports every interval until ctx is done. Failed exports are logged
// and retried on the next tick.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Export(ctx); err != nil {
				s.logger.Error(ctx, "snapshot failed", "error", err)
			}
		}
	}
}
