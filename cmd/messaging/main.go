package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"campusconnect/internal/infra/config"
	"campusconnect/internal/infra/messaging"
	"campusconnect/internal/infra/messaging/scylla"
	"campusconnect/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadMessaging()
	if err != nil {
		obs.NewLogger("dev").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	session, err := scylla.NewSession(ctx, cfg, logger)
	if err != nil {
		logger.Error("scylla init failed", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	grpcServer := messaging.NewGRPCServer(&messaging.Server{
		Store:  scylla.NewStore(session, logger),
		Logger: logger,
	}, logger)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "error", err, "addr", cfg.GRPCAddr)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down grpc server")
		grpcServer.GracefulStop()
	}()

	logger.Info("messaging service starting", "addr", cfg.GRPCAddr, "env", cfg.Env)
	if err := grpcServer.Serve(lis); err != nil {
		if errors.Is(err, grpc.ErrServerStopped) {
			logger.Info("grpc server stopped")
			return
		}
		logger.Error("grpc server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("messaging service stopped")
}
