// Package export stores generated report files outside the process.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mamadbah2/herdfeed/internal/config"
)

const csvContentType = "text/csv; charset=utf-8"

// Sink receives finished export files.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Open selects a sink from configuration: S3 when a bucket is set, the local
// directory when one is set, nil when exports are disabled.
func Open(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch {
	case cfg.S3Bucket != "":
		sink, err := NewS3Sink(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case cfg.Dir != "":
		sink, err := NewDirSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, nil
	}
}

// DirSink writes exports into a local directory.
type DirSink struct {
	root string
}

// NewDirSink creates root when needed.
func NewDirSink(root string) (*DirSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %s: %w", root, err)
	}
	return &DirSink{root: root}, nil
}

// Put writes data to root/name, replacing an older export of the same name.
func (s *DirSink) Put(_ context.Context, name string, data []byte) error {
	clean, err := sanitizeName(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.root, clean), data, 0o644); err != nil {
		return fmt.Errorf("write export %s: %w", clean, err)
	}
	return nil
}

// S3Sink uploads exports to a single bucket (AWS S3 or MinIO).
type S3Sink struct {
	client *s3.Client
	bucket string
}

// NewS3Sink builds an S3 client from the default credential chain.
func NewS3Sink(ctx context.Context, cfg config.ExportConfig) (*S3Sink, error) {
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Sink{client: client, bucket: cfg.S3Bucket}, nil
}

// Put uploads data under key "exports/<name>".
func (s *S3Sink) Put(ctx context.Context, name string, data []byte) error {
	clean, err := sanitizeName(name)
	if err != nil {
		return err
	}
	key := "exports/" + clean
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(csvContentType),
	})
	if err != nil {
		return fmt.Errorf("upload export %s: %w", key, err)
	}
	return nil
}

func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty export name")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid export name %q", name)
	}
	return name, nil
}
