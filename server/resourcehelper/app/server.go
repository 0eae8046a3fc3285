package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	commonauth "syscourse/server/common/auth"
	"syscourse/server/common/infra/db"
	"syscourse/server/common/metrics"
	"syscourse/server/common/middleware"
	resourceapi "syscourse/server/resourcehelper/api"
	"syscourse/server/resourcehelper/repository"
	"syscourse/server/resourcehelper/service"
)

type Server struct {
	HTTPServer *http.Server
	DB         *pgxpool.Pool
}

func NewServer(cfg Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPool, err := db.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres: %w", err)
	}
	if err := db.Migrate(ctx, dbPool, repository.Schema...); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrate resources: %w", err)
	}

	var verifier middleware.ServiceTokenVerifier
	if strings.TrimSpace(cfg.ServiceAuthPublicKey) != "" {
		v, err := commonauth.LoadVerifier(cfg.ServiceAuthPublicKey, cfg.ServiceAuthAudience)
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("load service auth key: %w", err)
		}
		verifier = v
	}

	resourceSvc := service.NewResourceService(repository.NewResourceRepository(dbPool))
	r := gin.Default()
	metrics.New("resourcehelper").Register(r)
	resourceapi.NewHandler(resourceSvc, verifier, dbPool.Ping).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{HTTPServer: httpServer, DB: dbPool}, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTPServer.Shutdown(ctx)
	if s.DB != nil {
		s.DB.Close()
	}
	return err
}
