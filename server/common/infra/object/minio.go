package object

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
}

func EnsureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore serves public URLs from baseURL, or from the client's own endpoint when
// baseURL is empty.
func NewMinioStore(client *minio.Client, bucket, baseURL string) *MinioStore {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = client.EndpointURL().String()
	}
	return &MinioStore{client: client, bucket: bucket, baseURL: baseURL}
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(reader.Len()), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// SetContentDisposition rewrites the object's metadata in place with a self copy.
func (s *MinioStore) SetContentDisposition(ctx context.Context, key, disposition string) error {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return fmt.Errorf("stat %s/%s: %w", s.bucket, key, err)
	}
	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          key,
		ReplaceMetadata: true,
		UserMetadata: map[string]string{
			"Content-Type":        info.ContentType,
			"Content-Disposition": disposition,
		},
	}
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: key}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("patch metadata %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *MinioStore) PublicURL(key string) string {
	return publicURL(s.baseURL, s.bucket, key)
}
