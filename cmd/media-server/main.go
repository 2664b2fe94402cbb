package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claridx/internal/wire"

	"go.uber.org/zap"
)

func main() {
	app, cleanup, err := wire.InitializeMediaServer()
	if err != nil {
		log.Fatalf("Failed to initialize media server: %v", err)
	}
	defer cleanup()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Config.Server.MediaPort),
		Handler:           app.Server,
		ReadHeaderTimeout: time.Duration(app.Config.Server.ReadTimeout) * time.Second,
	}

	go func() {
		app.Logger.Info("media server starting",
			zap.String("addr", server.Addr),
			zap.String("backend", app.Config.Storage.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Fatal("media server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		app.Logger.Warn("media server forced to shutdown", zap.Error(err))
	}
}
