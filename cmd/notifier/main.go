package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	commonlog "syscourse/server/common/log"
	notifierapp "syscourse/server/notifier/app"
)

func main() {
	commonlog.SetService("notifier")
	cfg := notifierapp.LoadConfig()
	server, err := notifierapp.NewServer(cfg)
	if err != nil {
		log.Fatalf("initialize notifier: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		commonlog.Infof("start notifier http server on :%s", cfg.Port)
		if err := server.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("run notifier http server: %v", err)
		}
	}()

	go func() {
		commonlog.Infof("consume %s from queue %s", cfg.NewProductTopic, cfg.Queue)
		if err := server.Consume(ctx); err != nil {
			commonlog.Errorf("consumer stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		commonlog.Errorf("shutdown notifier gracefully: %v", err)
	}
}
