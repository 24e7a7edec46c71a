package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of the S3 client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores objects in a bucket. PublicBaseURL is prefixed to the key to build the URL
// returned to clients (a CDN or the bucket's virtual-hosted endpoint).
type S3 struct {
	client        PutObjectAPI
	bucket        string
	prefix        string
	publicBaseURL string
}

// S3Options configures NewS3.
type S3Options struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
	// Endpoint overrides the service endpoint, for S3-compatible stores.
	Endpoint string
}

// NewS3 loads the default AWS credential chain for opts.Region.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := opts.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return NewS3WithClient(client, opts.Bucket, opts.Prefix, base), nil
}

func NewS3WithClient(client PutObjectAPI, bucket, prefix, publicBaseURL string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, publicBaseURL: publicBaseURL}
}

func (s *S3) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	objectKey := key
	if s.prefix != "" {
		objectKey = s.prefix + "/" + key
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}

	return joinURL(s.publicBaseURL, objectKey), nil
}
