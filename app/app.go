package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/config"
	"github.com/walterfan/reminder-service/internal/handler"
	"github.com/walterfan/reminder-service/internal/repository"
	"github.com/walterfan/reminder-service/internal/server"
	"github.com/walterfan/reminder-service/internal/service"
	"github.com/walterfan/reminder-service/migrations"
	"github.com/walterfan/reminder-service/pkg/kafka"
	"github.com/walterfan/reminder-service/pkg/logger"
	"github.com/walterfan/reminder-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "reminder")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	bookRepo, err := repository.NewBookRepository(db, log)
	if err != nil {
		log.Fatal("book repo", zap.Error(err))
	}
	taskRepo, err := repository.NewTaskRepository(db, log)
	if err != nil {
		log.Fatal("task repo", zap.Error(err))
	}
	tenantRepo, err := repository.NewTenantRepository(db, log)
	if err != nil {
		log.Fatal("tenant repo", zap.Error(err))
	}

	var enq service.Enqueuer
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		defer producer.Close()
		enq = service.NewEnqueuer(producer)
	}

	bookSvc := service.NewBookService(bookRepo, enq, log)
	taskSvc := service.NewTaskService(taskRepo, log)
	tenantSvc := service.NewTenantService(tenantRepo, log)

	h := handler.New(bookSvc, taskSvc, tenantSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
