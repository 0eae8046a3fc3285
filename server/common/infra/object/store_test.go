package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket/abc.png", publicURL(gcsPublicHost, "bucket", "abc.png"))
	assert.Equal(t, "http://localhost:9000/course-files/abc.pdf", publicURL("http://localhost:9000/", "course-files", "/abc.pdf"))
}

func TestMinioStoreURLFallsBackToEndpoint(t *testing.T) {
	client, err := NewClient("localhost:9000", "minio", "minio123", false)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/course-files/k.png", NewMinioStore(client, "course-files", "").PublicURL("k.png"))
	assert.Equal(t, "https://cdn.example.com/course-files/k.png", NewMinioStore(client, "course-files", "https://cdn.example.com").PublicURL("k.png"))
}

func TestGCSStoreURL(t *testing.T) {
	s := &GCSStore{bucket: "syscourse-uploads"}
	assert.Equal(t, "https://storage.googleapis.com/syscourse-uploads/f00.png", s.PublicURL("f00.png"))
}
