package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"meetcrm/config"
	"meetcrm/internal/logger"
	"meetcrm/internal/mq"
	"meetcrm/internal/notify"
	"meetcrm/internal/queue"
	"meetcrm/internal/redisclient"
	"meetcrm/internal/reminder"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting meetcrm worker...",
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("mq_url", cfg.MQ.URL),
	)

	rdb := redisclient.New(cfg.Redis)
	defer rdb.Close()

	delayQueue := queue.NewRedisQueue(rdb)

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	runner := queue.NewRunner(delayQueue, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runner.Run(ctx)
	log.Info("Due-job runner started")

	bot, err := notify.NewTelegramBot(cfg.Telegram, log)
	if err != nil {
		log.Fatal("Failed to init telegram bot", zap.Error(err))
	}
	mailer := notify.NewSMTPMailer(cfg.SMTP, log)
	dispatcher := reminder.NewDispatcher(mailer, bot, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "reminder.due.q", mq.ReminderDueKey, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(dispatcher.HandleDue)

	go func() {
		log.Info("Starting reminder.due consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Reminder consumer failed", zap.Error(err))
		}
	}()

	// Metrics and health; the worker has no other HTTP surface.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !publisher.IsConnected() {
			http.Error(w, "mq_not_ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: ":9091", Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	log.Info("meetcrm worker is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down meetcrm worker gracefully...")
	cancel()
	metricsSrv.Close()
	log.Info("meetcrm worker shutdown complete")
}
