package corpus

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source fetches regulation packs from S3-compatible object storage for
// the offline corpus rebuild. Objects matching pack_*.yaml under the prefix
// are treated as pack documents.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3SourceConfig holds connection settings for an object-storage pack source.
type S3SourceConfig struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (MinIO, LocalStack)
	Prefix   string // Optional key prefix, e.g. "regulations/"
}

// NewS3Source creates an object-storage pack source.
func NewS3Source(ctx context.Context, cfg S3SourceConfig) (*S3Source, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	}

	return &S3Source{
		client: s3.NewFromConfig(awsCfg, clientOpts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Packs lists and downloads every pack document under the prefix.
func (s *S3Source) Packs() (map[string][]byte, error) {
	return s.PacksContext(context.Background())
}

// PacksContext is Packs with caller-controlled cancellation.
func (s *S3Source) PacksContext(ctx context.Context) (map[string][]byte, error) {
	packs := make(map[string][]byte)

	var continuation *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := path.Base(key)
			if !strings.HasPrefix(name, "pack_") || !strings.HasSuffix(name, ".yaml") {
				continue
			}
			data, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			packs[name] = data
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		continuation = page.NextContinuationToken
	}

	if len(packs) == 0 {
		return nil, fmt.Errorf("no regulation packs under s3://%s/%s", s.bucket, s.prefix)
	}
	return packs, nil
}

func (s *S3Source) get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get failed for %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()

	return io.ReadAll(result.Body)
}
