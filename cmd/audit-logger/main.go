package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chen-kiso-golan/TodoApp/internal/config"
	"github.com/chen-kiso-golan/TodoApp/internal/kafka"
	"github.com/chen-kiso-golan/TodoApp/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "audit-logger",
		Short:         "Append todo events from Kafka to an audit log file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadAuditLogger(configFile, cmd.Flags())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to a config file")
	cmd.Flags().String("audit.logfile", "", "file to append audit entries to")
	return cmd
}

func run(ctx context.Context, cfg config.AuditLogger) error {
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	file, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.WithError(err).Error("failed to open log file")
		return err
	}
	defer file.Close()

	audit := logrus.New()
	audit.SetOutput(file)
	audit.SetFormatter(&logrus.JSONFormatter{})

	r := kafka.NewReader(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroup)
	defer r.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{"topic": cfg.KafkaTopic, "file": cfg.LogFile}).Info("audit logger started")
	return kafka.Consume(ctx, r, audit, log)
}
