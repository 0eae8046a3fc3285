package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	commonlog "syscourse/server/common/log"
	uploadapp "syscourse/server/upload/app"
)

func main() {
	commonlog.SetService("uploadimage")
	cfg := uploadapp.LoadConfig()
	server, err := uploadapp.NewServer(cfg)
	if err != nil {
		log.Fatalf("initialize uploadimage server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		commonlog.Infof("start uploadimage http server on :%s", cfg.Port)
		if err := server.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("run uploadimage http server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		commonlog.Errorf("shutdown uploadimage server gracefully: %v", err)
	}
}
