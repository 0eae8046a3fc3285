package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	commonlog "syscourse/server/common/log"
	resourceapp "syscourse/server/resourcehelper/app"
)

func main() {
	commonlog.SetService("resourcehelper")
	cfg := resourceapp.LoadConfig()
	server, err := resourceapp.NewServer(cfg)
	if err != nil {
		log.Fatalf("initialize resourcehelper server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		commonlog.Infof("start resourcehelper http server on :%s", cfg.Port)
		if err := server.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("run resourcehelper http server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		commonlog.Errorf("shutdown resourcehelper server gracefully: %v", err)
	}
}
