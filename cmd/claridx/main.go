package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claridx/internal/health"
	"claridx/internal/wire"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	logger := app.Logger
	cfg := app.Config

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Health.Start(ctx)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(health.LoggingInterceptor(logger.Named("grpc"))))
	app.Health.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Server.HealthPort))
	if err != nil {
		logger.Fatal("failed to listen for health checks", zap.String("port", cfg.Server.HealthPort), zap.Error(err))
	}
	go func() {
		logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	// WriteTimeout stays zero: WebSocket connections are long-lived.
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:           setupRouter(app),
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("addr", server.Addr), zap.String("environment", cfg.Server.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	app.Health.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	logger.Info("server stopped")
}
