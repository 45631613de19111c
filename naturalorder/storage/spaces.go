package storage

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

// PhotoService stores condition-verification photos in an S3-compatible
// bucket. Buyers want to see the actual card before confirming a trade.
type PhotoService struct {
	client    *s3.Client
	bucket    string
	region    string
	photoRoot string
}

func NewPhotoService(key, secret, region, bucket, photoRoot string) (*PhotoService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	return &PhotoService{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		region:    region,
		photoRoot: strings.Trim(photoRoot, "/"),
	}, nil
}

func (s *PhotoService) key(userID string, itemID int64) string {
	return fmt.Sprintf("%s/%s/%d.jpg", s.photoRoot, userID, itemID)
}

// UploadConditionPhoto stores a photo for a collection item and returns the
// object key persisted on the item.
func (s *PhotoService) UploadConditionPhoto(ctx context.Context, userID string, itemID int64, data []byte) (string, error) {
	key := s.key(userID, itemID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
		ACL:         "public-read",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload condition photo: %w", err)
	}
	return key, nil
}

// DeleteConditionPhoto removes the stored photo for a collection item.
func (s *PhotoService) DeleteConditionPhoto(ctx context.Context, userID string, itemID int64) error {
	key := s.key(userID, itemID)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete condition photo: %w", err)
	}
	return nil
}

// PhotoURL builds the public URL for a stored photo key.
func (s *PhotoService) PhotoURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key)
}
