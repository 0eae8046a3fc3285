package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"syscourse/server/common/infra/mq"
	commonlog "syscourse/server/common/log"
	"syscourse/server/common/metrics"
	"syscourse/server/common/transport/httpresp"
	"syscourse/server/notifier/service"
)

// eventNewProduct is the event_type the web front end stamps on write notifications.
const eventNewProduct = "new-product-sub"

type Server struct {
	HTTPServer *http.Server
	conn       *amqp.Connection
	consumer   *mq.Consumer
	notifier   *service.Notifier
}

func NewServer(cfg Config) (*Server, error) {
	conn, err := mq.NewConnection(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	consumer, err := mq.NewConsumer(conn, cfg.EventsExchange, cfg.Queue, cfg.NewProductTopic)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open consumer: %w", err)
	}

	var mailer service.Mailer = service.LogMailer{}
	if strings.TrimSpace(cfg.SMTPAddr) != "" {
		mailer = service.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
	} else {
		commonlog.Warnf("SMTP_ADDR not set, notifications will only be logged")
	}

	m := metrics.New("notifier")
	r := gin.Default()
	m.Register(r)
	r.GET("/health", func(c *gin.Context) {
		if conn.IsClosed() {
			c.JSON(http.StatusServiceUnavailable, httpresp.NewStatusResponse("broker disconnected"))
			return
		}
		c.JSON(http.StatusOK, httpresp.NewStatusResponse("ok"))
	})

	return &Server{
		HTTPServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  20 * time.Second,
			WriteTimeout: 20 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conn:     conn,
		consumer: consumer,
		notifier: service.NewNotifier(mailer, eventNewProduct, m),
	}, nil
}

// Consume blocks until ctx is done or the broker goes away.
func (s *Server) Consume(ctx context.Context) error {
	return s.consumer.Run(ctx, s.notifier.Handle)
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTPServer.Shutdown(ctx)
	_ = s.consumer.Close()
	_ = s.conn.Close()
	return err
}
