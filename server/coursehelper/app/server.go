package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	commonauth "syscourse/server/common/auth"
	"syscourse/server/common/infra/cache"
	"syscourse/server/common/infra/db"
	commonlog "syscourse/server/common/log"
	"syscourse/server/common/metrics"
	"syscourse/server/common/middleware"
	courseapi "syscourse/server/coursehelper/api"
	"syscourse/server/coursehelper/repository"
	"syscourse/server/coursehelper/service"
)

const cachePrefix = "syscourse:courses:"

type Server struct {
	HTTPServer *http.Server
	DB         *pgxpool.Pool
	Redis      *redis.Client
}

func NewServer(cfg Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPool, err := db.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres: %w", err)
	}
	if err := db.Migrate(ctx, dbPool, repository.Schema); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrate courses: %w", err)
	}

	var redisClient *redis.Client
	var courseSvc *service.CourseService
	repo := repository.NewCourseRepository(dbPool)
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisClient = cache.NewClient(cfg.RedisAddr)
		if err := cache.Ping(ctx, redisClient); err != nil {
			commonlog.Warnf("redis unavailable at %s, course list cache misses will hit postgres: %v", cfg.RedisAddr, err)
		}
		courseSvc = service.NewCourseService(repo, cache.NewJSONCache(redisClient, cachePrefix, cfg.CourseCacheTTL))
	} else {
		courseSvc = service.NewCourseService(repo, nil)
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

	r := gin.Default()
	metrics.New("coursehelper").Register(r)
	courseapi.NewHandler(courseSvc, verifier, dbPool.Ping).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{HTTPServer: httpServer, DB: dbPool, Redis: redisClient}, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTPServer.Shutdown(ctx)
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
	return err
}
