package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	commonlog "syscourse/server/common/log"
	courseapp "syscourse/server/coursehelper/app"
)

func main() {
	commonlog.SetService("coursehelper")
	cfg := courseapp.LoadConfig()
	server, err := courseapp.NewServer(cfg)
	if err != nil {
		log.Fatalf("initialize coursehelper server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		commonlog.Infof("start coursehelper http server on :%s", cfg.Port)
		if err := server.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("run coursehelper http server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		commonlog.Errorf("shutdown coursehelper server gracefully: %v", err)
	}
}
