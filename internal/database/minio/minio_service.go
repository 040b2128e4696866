package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"

	"account-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient stores profile pictures in a single public-read bucket.
type MinioClient struct {
	client      *minio.Client
	bucket      string
	resourceURL string
}

func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to MinIO client: %w", err)
	}

	if err := ensureBucket(minioClient, cfg.Bucket); err != nil {
		return nil, err
	}

	if err := setPublicBucketPolicy(minioClient, cfg.Bucket); err != nil {
		log.Printf("Failed to set public policy for bucket %s: %v", cfg.Bucket, err)
		return nil, err
	}

	return &MinioClient{
		client:      minioClient,
		bucket:      cfg.Bucket,
		resourceURL: cfg.ResourceURL,
	}, nil
}

// UploadFile stores the object and returns its public URL.
func (m *MinioClient) UploadFile(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}

	return m.resourceURL + path.Join("/", m.bucket, objectName), nil
}

func ensureBucket(client *minio.Client, bucketName string) error {
	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Printf("error checking bucket existence: %v", err)
		return err
	}
	if !exists {
		err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("error creating bucket: %w", err)
		}
		log.Printf("Bucket created successfully %s", bucketName)
	}

	return nil
}

func setPublicBucketPolicy(minioClient *minio.Client, bucketName string) error {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Action":    []string{"s3:GetObject"},
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucketName)},
			},
		},
	}

	policyBytes, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("error marshalling policy: %w", err)
	}

	err = minioClient.SetBucketPolicy(context.Background(), bucketName, string(policyBytes))
	if err != nil {
		return fmt.Errorf("error setting bucket policy: %w", err)
	}

	return nil
}
