package app

import (
	cmnenv "syscourse/server/common/env"
)

const (
	BackendMinio = "minio"
	BackendGCS   = "gcs"
)

type Config struct {
	Port           string
	StorageBackend string
	MaxUploadBytes int

	GCSBucket string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	PublicBaseURL  string

	CORSAllowOrigins []string

	ServiceAuthPublicKey string
	ServiceAuthAudience  string
}

func LoadConfig() Config {
	return Config{
		Port:                 cmnenv.String("PORT", "8093"),
		StorageBackend:       cmnenv.String("STORAGE_BACKEND", BackendMinio),
		MaxUploadBytes:       cmnenv.Int("MAX_UPLOAD_BYTES", 32<<20),
		GCSBucket:            cmnenv.String("GCS_BUCKET", ""),
		MinioEndpoint:        cmnenv.String("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:       cmnenv.String("MINIO_ACCESS_KEY", "minio"),
		MinioSecretKey:       cmnenv.String("MINIO_SECRET_KEY", "minio123"),
		MinioBucket:          cmnenv.String("MINIO_BUCKET", "syscourse-uploads"),
		MinioUseSSL:          cmnenv.Bool("MINIO_USE_SSL", false),
		PublicBaseURL:        cmnenv.String("STORAGE_PUBLIC_BASE_URL", ""),
		CORSAllowOrigins:     cmnenv.CSV("CORS_ALLOW_ORIGINS", []string{"*"}),
		ServiceAuthPublicKey: cmnenv.String("SERVICE_AUTH_PUBLIC_KEY_FILE", ""),
		ServiceAuthAudience:  cmnenv.String("SERVICE_AUTH_AUDIENCE", ""),
	}
}
