package object

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com"

type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) SetContentDisposition(ctx context.Context, key, disposition string) error {
	_, err := s.client.Bucket(s.bucket).Object(key).Update(ctx, storage.ObjectAttrsToUpdate{
		ContentDisposition: disposition,
	})
	if err != nil {
		return fmt.Errorf("gcs patch %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) PublicURL(key string) string {
	return publicURL(gcsPublicHost, s.bucket, key)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
