package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	commonauth "syscourse/server/common/auth"
	"syscourse/server/common/infra/gateway"
	"syscourse/server/common/infra/mq"
	commonlog "syscourse/server/common/log"
	"syscourse/server/common/metrics"
	webapi "syscourse/server/web/api"
	"syscourse/server/web/service"
)

// session cookies are issued by the sign-in front end and only verified here.
const userTokenTTL = time.Hour

type Server struct {
	HTTPServer *http.Server
	publisher  mq.EventPublisher
	amqpConn   *amqp.Connection
}

func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.UserJWTSecret) == "" {
		return nil, errors.New("USER_JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.JWTEmail) == "" {
		return nil, errors.New("JWT_EMAIL is required")
	}

	srv := &Server{publisher: mq.NopPublisher{}}
	if strings.TrimSpace(cfg.AMQPURL) != "" {
		conn, err := mq.NewConnection(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		pub, err := mq.NewAMQPPublisher(conn, cfg.EventsExchange)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open event publisher: %w", err)
		}
		srv.amqpConn, srv.publisher = conn, pub
	} else {
		commonlog.Warnf("AMQP_URL not set, %s events will only be logged", cfg.NewProductTopic)
	}

	m := metrics.New("web")
	catalog := service.NewCatalogClient(
		gateway.NewClient(gateway.WithTimeout(cfg.GatewayTimeout), gateway.WithObserver(m)),
		cfg.GatewayURL,
		service.KeyfileMinter(cfg.JWTKeyfile, cfg.JWTEmail, cfg.GatewayAudience),
	)
	notify := service.NewNotifications(srv.publisher, cfg.NewProductTopic, m)
	users := commonauth.NewUserTokens(cfg.UserJWTSecret, userTokenTTL)

	r := gin.Default()
	r.MaxMultipartMemory = int64(cfg.MaxUploadBytes)
	r.SetHTMLTemplate(webapi.Templates())
	m.Register(r)
	webapi.NewHandler(catalog, notify, users, cfg.AssetBaseURL).
		LimitBody(int64(cfg.MaxUploadBytes)).
		RegisterRoutes(r)

	srv.HTTPServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTPServer.Shutdown(ctx)
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.amqpConn != nil {
		_ = s.amqpConn.Close()
	}
	return err
}
