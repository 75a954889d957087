package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meetcrm/config"
	"meetcrm/internal/db"
	"meetcrm/internal/handler"
	"meetcrm/internal/httpserver"
	"meetcrm/internal/logger"
	"meetcrm/internal/notify"
	"meetcrm/internal/queue"
	"meetcrm/internal/reconciler"
	"meetcrm/internal/redisclient"
	"meetcrm/internal/reminder"
	"meetcrm/internal/repository"
	"meetcrm/internal/service"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting meetcrm server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redisclient.New(cfg.Redis)
	defer rdb.Close()

	userRepo := repository.NewUserRepository(dbConn)
	tokenRepo := repository.NewRefreshTokenRepository(dbConn)
	meetRepo := repository.NewMeetRepository(dbConn)
	lectureRepo := repository.NewLectureRepository(dbConn)
	eventStore := repository.NewEventStore(meetRepo, lectureRepo)

	delayQueue := queue.NewRedisQueue(rdb)
	scheduler := reminder.NewScheduler(eventStore, delayQueue, log)

	bot, err := notify.NewTelegramBot(cfg.Telegram, log)
	if err != nil {
		log.Fatal("Failed to init telegram bot", zap.Error(err))
	}
	mailer := notify.NewSMTPMailer(cfg.SMTP, log)
	shortener := service.NewShortener()

	authService := service.NewAuthService(userRepo, tokenRepo, cfg.JWT.Secret, log)
	userService := service.NewUserService(userRepo)
	meetService := service.NewMeetService(meetRepo, shortener, mailer, bot, scheduler, log)
	lectureService := service.NewLectureService(lectureRepo, scheduler, log)
	exportService := service.NewExportService(meetRepo, lectureRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.BootstrapAdmin(ctx, cfg.Admin); err != nil {
		cancel()
		log.Fatal("Failed to bootstrap admin user", zap.Error(err))
	}
	cancel()

	recon := reconciler.New(eventStore, scheduler, tokenRepo, log)
	if err := recon.Start(); err != nil {
		log.Fatal("Failed to start reconciler", zap.Error(err))
	}
	defer recon.Stop()

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Users:     handler.NewUserHandler(userService, log),
		Meets:     handler.NewMeetHandler(meetService, log),
		Lectures:  handler.NewLectureHandler(lectureService, log),
		Downloads: handler.NewDownloadHandler(exportService, log),
	}, cfg.JWT.Secret, log, dbConn)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("meetcrm server is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down meetcrm server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("meetcrm server shutdown complete")
}
