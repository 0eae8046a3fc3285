package object

import (
	"context"
	"strings"
)

// Store is the blob store the upload normalizer writes to. Put and SetContentDisposition
// are separate round trips; nothing rolls back a Put whose patch failed.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SetContentDisposition(ctx context.Context, key, disposition string) error
	PublicURL(key string) string
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimPrefix(key, "/")
}
