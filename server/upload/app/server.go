package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	commonauth "syscourse/server/common/auth"
	"syscourse/server/common/infra/object"
	"syscourse/server/common/metrics"
	"syscourse/server/common/middleware"
	uploadapi "syscourse/server/upload/api"
	"syscourse/server/upload/service"
)

type Server struct {
	HTTPServer *http.Server
	closers    []func() error
}

func NewServer(cfg Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := &Server{}
	store, err := srv.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var verifier middleware.ServiceTokenVerifier
	if strings.TrimSpace(cfg.ServiceAuthPublicKey) != "" {
		v, err := commonauth.LoadVerifier(cfg.ServiceAuthPublicKey, cfg.ServiceAuthAudience)
		if err != nil {
			return nil, fmt.Errorf("load service auth key: %w", err)
		}
		verifier = v
	}

	m := metrics.New("uploadimage")
	r := gin.Default()
	r.MaxMultipartMemory = int64(cfg.MaxUploadBytes)
	m.Register(r)
	uploadapi.NewHandler(service.NewNormalizer(store, m), verifier, cfg.CORSAllowOrigins...).
		LimitBody(int64(cfg.MaxUploadBytes)).
		RegisterRoutes(r)

	srv.HTTPServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func (s *Server) openStore(ctx context.Context, cfg Config) (object.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case BackendGCS:
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required for the gcs backend")
		}
		store, err := object.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("initialize gcs: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		return store, nil
	case BackendMinio, "":
		client, err := object.NewClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return nil, fmt.Errorf("initialize minio: %w", err)
		}
		if err := object.EnsureBucket(ctx, client, cfg.MinioBucket); err != nil {
			return nil, fmt.Errorf("ensure minio bucket: %w", err)
		}
		return object.NewMinioStore(client, cfg.MinioBucket, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTPServer.Shutdown(ctx)
	for _, closeFn := range s.closers {
		_ = closeFn()
	}
	return err
}
