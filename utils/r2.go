// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archive stores scan images and returns their public URL.
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// R2Archive uploads objects to a Cloudflare R2 bucket through its S3 API.
type R2Archive struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

func NewR2Archive(ctx context.Context, rc R2Config) (*R2Archive, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", rc.AccountID)
	cdnBaseURL := strings.TrimRight(rc.CDNBaseURL, "/")
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			rc.AccessKeyID, rc.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2Archive{client: client, bucket: rc.Bucket, cdnBaseURL: cdnBaseURL}, nil
}

// Put uploads data under key (e.g. "scans/<session>/<id>.jpg") and returns the public URL.
func (a *R2Archive) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", a.cdnBaseURL, key), nil
}

// NopArchive is used when no bucket is configured; nothing is stored.
type NopArchive struct{}

func (NopArchive) Put(context.Context, string, string, []byte) (string, error) {
	return "", nil
}
