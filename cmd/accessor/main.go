package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chen-kiso-golan/TodoApp/internal/app/handlers"
	"github.com/chen-kiso-golan/TodoApp/internal/app/repositories"
	"github.com/chen-kiso-golan/TodoApp/internal/app/services"
	"github.com/chen-kiso-golan/TodoApp/internal/config"
	"github.com/chen-kiso-golan/TodoApp/internal/kafka"
	"github.com/chen-kiso-golan/TodoApp/internal/logging"
	"github.com/chen-kiso-golan/TodoApp/internal/metrics"
	"github.com/chen-kiso-golan/TodoApp/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "accessor",
		Short:         "Serve the todo store over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadAccessor(configFile, cmd.Flags())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err := run(cmd.Context(), cfg, log); err != nil {
				log.WithError(err).Error("accessor stopped")
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to a config file")
	cmd.Flags().String("accessor.port", "", "port to listen on")
	cmd.Flags().String("accessor.store.driver", "", "postgres or sqlite")
	return cmd
}

type store interface {
	repositories.TodoRepository
	Close() error
}

func openStore(cfg config.Accessor) (store, error) {
	if cfg.StoreDriver == "sqlite" {
		db, err := repositories.OpenSQLite(cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		return sqliteStore{repositories.NewSQLiteTodoRepo(db), db}, nil
	}
	repo, err := repositories.NewPostgresTodoRepo(cfg.StoreDSN)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

type sqliteStore struct {
	*repositories.SQLiteTodoRepo
	db *sql.DB
}

func (s sqliteStore) Close() error { return s.db.Close() }

func run(ctx context.Context, cfg config.Accessor, log *logrus.Logger) error {
	repo, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreDriver, err)
	}
	defer repo.Close()

	opts := []services.TodoServiceOption{services.WithLogger(log)}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		opts = append(opts, services.WithCache(repositories.NewRedisTodoCache(rdb), cfg.RedisTTL))
		log.WithField("addr", cfg.RedisAddr).Info("todo cache enabled")
	}

	if cfg.KafkaBroker != "" {
		producer := kafka.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		defer producer.Close()
		opts = append(opts, services.WithEvents(producer))
		log.WithFields(logrus.Fields{"broker": cfg.KafkaBroker, "topic": cfg.KafkaTopic}).Info("todo events enabled")
	}

	service := services.NewTodoService(repo, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("accessor", reg, reg)

	gin.SetMode(gin.ReleaseMode)
	r := server.NewEngine(log, m)
	handlers.RegisterAccessorRoutes(r, service)
	handlers.RegisterHealth(r, repo)

	log.WithField("port", cfg.Port).Info("accessor started")
	return server.Run(ctx, ":"+cfg.Port, r, log)
}
