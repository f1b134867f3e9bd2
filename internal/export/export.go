// Package export publishes zip archives produced by the artifact pages.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink receives a finished archive.
type Sink interface {
	Publish(ctx context.Context, archivePath string) error
}

// Local leaves the archive where it was written.
type Local struct{}

func (Local) Publish(context.Context, string) error { return nil }

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads every archive to Bucket under Prefix/YYYY/MM/DD/.
type S3 struct {
	Bucket string
	Prefix string
	client putObjectAPI
	now    func() time.Time
}

// NewS3 builds an S3 sink from the default AWS credential chain. endpoint, when set,
// points the client at an S3-compatible server such as MinIO.
func NewS3(ctx context.Context, bucket, prefix, region, endpoint string) (*S3, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{Bucket: bucket, Prefix: prefix, client: client, now: time.Now}, nil
}

// Key returns the object key for archivePath.
func (s *S3) Key(archivePath string) string {
	d := s.now().UTC()
	return path.Join(s.Prefix, d.Format("2006/01/02"), filepath.Base(archivePath))
}

func (s *S3) Publish(ctx context.Context, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	key := s.Key(archivePath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}

// Mirror publishes to every sink, logging failures. A failed mirror never fails the export.
func Mirror(ctx context.Context, logger *slog.Logger, archivePath string, sinks ...Sink) {
	for _, s := range sinks {
		if err := s.Publish(ctx, archivePath); err != nil {
			logger.Warn("archive mirror failed", "archive", filepath.Base(archivePath), "error", err)
		}
	}
}
