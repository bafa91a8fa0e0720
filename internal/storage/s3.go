package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignTTL = 15 * time.Minute

// ElementStore hands out presigned URLs for chat attachment blobs; clients
// upload and download directly against S3.
type ElementStore struct {
	presign *s3.PresignClient
	bucket  string
}

func NewElementStore(cfg aws.Config, bucket, endpoint string) *ElementStore {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &ElementStore{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

// PresignUpload returns a fresh object key and a URL the client can PUT to.
func (s *ElementStore) PresignUpload(ctx context.Context, threadID string) (key, url string, err error) {
	key = fmt.Sprintf("elements/%s/%s", threadID, uuid.NewString())

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", "", fmt.Errorf("presigning upload: %w", err)
	}
	return key, req.URL, nil
}

// PresignDownload returns a URL the client can GET an element from.
func (s *ElementStore) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("presigning download: %w", err)
	}
	return req.URL, nil
}
