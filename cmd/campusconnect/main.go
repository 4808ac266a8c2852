package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"campusconnect/internal/app/bootstrap"
	"campusconnect/internal/app/handlers/notifications"
	listingapp "campusconnect/internal/app/handlers/listings"
	"campusconnect/internal/app/middleware"
	"campusconnect/internal/app/outbox"
	authsvc "campusconnect/internal/app/services/auth"
	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
	domainuser "campusconnect/internal/domain/user"
	"campusconnect/internal/infra/broker/kafka"
	"campusconnect/internal/infra/config"
	mongostore "campusconnect/internal/infra/db/mongo"
	ginserver "campusconnect/internal/infra/http/gin"
	"campusconnect/internal/infra/lock"
	"campusconnect/internal/infra/messaging"
	"campusconnect/internal/infra/notify"
	"campusconnect/internal/infra/obs"
	infraoutbox "campusconnect/internal/infra/outbox"
	"campusconnect/internal/infra/security"
	"campusconnect/internal/infra/storage/memory"
	"campusconnect/internal/infra/storage/s3"
	"campusconnect/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("campusconnect stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("campusconnect stopped")
}

type storage struct {
	factory     uow.UoWFactory
	users       domainuser.Repository
	outbox      outbox.Outbox
	idempotency middleware.IdempotencyStore
	relay       *infraoutbox.Store
	checks      map[string]obs.ReadinessCheck
	close       func(context.Context) error
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.close(shutdownCtx); err != nil {
			logger.Warn("storage close failed", "error", err)
		}
	}()

	locker := buildLocker(cfg, logger, store.checks)
	uploader := buildUploader(cfg, logger, store.checks)
	chat, closeChat := buildMessaging(ctx, cfg, logger)
	defer closeChat()

	tokens, err := security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	authService := &authsvc.Service{
		Users:         store.users,
		Passwords:     security.BcryptHasher{},
		Tokens:        tokens,
		CollegeDomain: cfg.CollegeDomain,
		Logger:        logger,
	}

	buses := bootstrap.Build(bootstrap.Deps{
		UoWFactory:  store.factory,
		Outbox:      store.outbox,
		Encoder:     outbox.JSONEventEncoder{},
		Locker:      locker,
		Uploader:    uploader,
		Idempotency: store.idempotency,
		Validator:   validation.New(),
		Logger:      logger,
	})
	logger.Info("buses ready", "commands", buses.CommandKeys, "queries", buses.QueryKeys)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: store.checks}, ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Listing:        ginserver.ListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Availability:   ginserver.AvailabilityHandler{Queries: buses.Queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Review:         ginserver.ReviewHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Event:          ginserver.EventHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Message:        ginserver.MessageHandler{Messaging: chat, UoWFactory: store.factory, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if store.relay != nil && len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return err
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       store.relay,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		g.Go(func() error {
			logger.Info("outbox worker starting", "brokers", cfg.KafkaBrokers)
			return worker.Run(gctx)
		})
	}
	return g.Wait()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	if cfg.Storage != config.StorageMongo {
		factory := memory.NewStore()
		dispatcher := &notifications.Dispatcher{Notifier: notify.LogNotifier{Logger: logger}, Logger: logger}
		return storage{
			factory:     factory,
			users:       factory.UsersRepo,
			outbox:      memory.NewOutbox(dispatcher.Deliver),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			checks:      map[string]obs.ReadinessCheck{},
			close:       func(context.Context) error { return nil },
		}, nil
	}

	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, err
	}
	if err := mongostore.EnsureIndexes(ctx, client.DB); err != nil {
		return storage{}, err
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return storage{}, err
	}
	relay, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	factory := mongostore.NewFactory(client.DB)
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS empty, outbox records will accumulate until a relay runs")
	}
	return storage{
		factory:     factory,
		users:       factory.Users(),
		outbox:      relay,
		idempotency: idem,
		relay:       relay,
		checks:      map[string]obs.ReadinessCheck{"mongo": client.Ping},
		close:       client.Disconnect,
	}, nil
}

func buildLocker(cfg config.Config, logger *slog.Logger, checks map[string]obs.ReadinessCheck) domainavailability.Locker {
	if cfg.RedisAddr == "" {
		return lock.NewLocal()
	}
	locker := &lock.Redis{
		Client: lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword),
		TTL:    cfg.LockTTL,
		Logger: logger,
	}
	checks["redis"] = locker.Ping
	return locker
}

func buildUploader(cfg config.Config, logger *slog.Logger, checks map[string]obs.ReadinessCheck) listingapp.PhotoUploader {
	if !cfg.S3Enabled {
		return s3.Disabled{}
	}
	photos, err := s3.NewPhotoStore(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
	if err != nil {
		logger.Warn("photo storage disabled", "error", err)
		return s3.Disabled{}
	}
	checks["s3"] = photos.Ping
	return photos
}

// buildMessaging dials the messaging service. Without MESSAGING_GRPC_ADDR it
// serves one in-process over the in-memory store. A nil client turns the chat
// routes into 503s.
func buildMessaging(ctx context.Context, cfg config.Config, logger *slog.Logger) (*messaging.Client, func()) {
	addr := cfg.MessagingAddr
	stopEmbedded := func() {}
	if addr == "" {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Warn("messaging disabled", "error", err)
			return nil, stopEmbedded
		}
		srv := messaging.NewGRPCServer(&messaging.Server{Store: memory.NewMessageStore(), Logger: logger}, logger)
		go func() {
			if err := srv.Serve(lis); err != nil {
				logger.Warn("embedded messaging stopped", "error", err)
			}
		}()
		stopEmbedded = srv.GracefulStop
		addr = lis.Addr().String()
	}

	client, err := messaging.NewClient(ctx, messaging.Config{
		Addr:        addr,
		DialTimeout: cfg.MessagingDialTimeout,
		CallTimeout: cfg.MessagingCallTimeout,
	}, logger)
	if err != nil {
		logger.Warn("messaging disabled", "error", err, "addr", addr)
		stopEmbedded()
		return nil, func() {}
	}
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("messaging client close failed", "error", err)
		}
		stopEmbedded()
	}
}
