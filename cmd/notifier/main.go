package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusconnect/internal/app/handlers/notifications"
	"campusconnect/internal/infra/broker/kafka"
	"campusconnect/internal/infra/config"
	mongostore "campusconnect/internal/infra/db/mongo"
	"campusconnect/internal/infra/inbox"
	"campusconnect/internal/infra/notify"
	"campusconnect/internal/infra/obs"
	infraoutbox "campusconnect/internal/infra/outbox"
)

const consumerName = "notifier"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env).With("service", consumerName)

	var dedupe kafka.Deduper
	if cfg.MongoURI != "" {
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connect failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutdownCtx)
		}()
		store, err := inbox.NewStore(ctx, client.DB, consumerName)
		if err != nil {
			logger.Error("inbox init failed", "error", err)
			os.Exit(1)
		}
		dedupe = store
	} else {
		logger.Warn("MONGO_URI empty, redelivered events will be notified again")
	}

	handler := kafka.NotificationHandler{
		Inbox: dedupe,
		Deliverer: &notifications.Dispatcher{
			Notifier: notify.LogNotifier{Logger: logger},
			Logger:   logger,
		},
	}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, handler, logger)
	if err != nil {
		logger.Error("kafka consumer init failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	topics := []string{
		infraoutbox.TopicFor(cfg.KafkaTopicPrefix, "booking"),
		infraoutbox.TopicFor(cfg.KafkaTopicPrefix, "review"),
	}
	logger.Info("notifier consuming", "topics", topics, "group", cfg.KafkaGroupID)
	if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
