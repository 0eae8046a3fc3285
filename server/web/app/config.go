package app

import (
	"time"

	cmnenv "syscourse/server/common/env"
	"syscourse/server/common/infra/mq"
	"syscourse/server/web/service"
)

type Config struct {
	Port            string
	GatewayURL      string
	JWTKeyfile      string
	JWTEmail        string
	GatewayAudience string
	GatewayTimeout  time.Duration
	UserJWTSecret   string
	AMQPURL         string
	EventsExchange  string
	NewProductTopic string
	AssetBaseURL    string
	MaxUploadBytes  int
}

func LoadConfig() Config {
	gatewayURL := cmnenv.String("API_GATEWAY_URL", "http://localhost:8090")
	return Config{
		Port:            cmnenv.String("PORT", "8080"),
		GatewayURL:      gatewayURL,
		JWTKeyfile:      cmnenv.String("JWT_KEYFILE", "keyfile.json"),
		JWTEmail:        cmnenv.String("JWT_EMAIL", ""),
		GatewayAudience: cmnenv.String("GATEWAY_AUDIENCE", gatewayURL),
		GatewayTimeout:  cmnenv.Millis("GATEWAY_HTTP_TIMEOUT_MS", 0),
		UserJWTSecret:   cmnenv.String("USER_JWT_SECRET", ""),
		AMQPURL:         cmnenv.String("AMQP_URL", ""),
		EventsExchange:  cmnenv.String("EVENTS_EXCHANGE", mq.DefaultExchange),
		NewProductTopic: cmnenv.String("PUBSUB_TOPIC_NEW_PRODUCT", service.EventNewProduct),
		AssetBaseURL:    cmnenv.String("ASSET_BASE_URL", ""),
		MaxUploadBytes:  cmnenv.Int("MAX_UPLOAD_BYTES", 32<<20),
	}
}
