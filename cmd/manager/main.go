package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chen-kiso-golan/TodoApp/internal/app/handlers"
	"github.com/chen-kiso-golan/TodoApp/internal/app/queryclient"
	"github.com/chen-kiso-golan/TodoApp/internal/app/services"
	"github.com/chen-kiso-golan/TodoApp/internal/config"
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
		Use:           "manager",
		Short:         "Validate todo requests and read todos through the accessor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadManager(configFile, cmd.Flags())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			log := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err := run(cmd.Context(), cfg, log); err != nil {
				log.WithError(err).Error("manager stopped")
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to a config file")
	cmd.Flags().String("manager.port", "", "port to listen on")
	cmd.Flags().String("manager.transport", "", "how to reach the accessor: http or dapr")
	return cmd
}

func newRouter(cfg config.Manager, log logrus.FieldLogger, reg *prometheus.Registry) (*gin.Engine, error) {
	m := metrics.New("manager", reg, reg)

	queries, err := queryclient.New(cfg.QueryClient, log, m)
	if err != nil {
		return nil, err
	}

	r := server.NewEngine(log, m)
	handlers.RegisterManagerRoutes(r, queries, services.NewIntakeService(log))
	handlers.RegisterHealth(r)
	return r, nil
}

func run(ctx context.Context, cfg config.Manager, log *logrus.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	r, err := newRouter(cfg, log, reg)
	if err != nil {
		return err
	}

	fields := logrus.Fields{"port": cfg.Port, "transport": cfg.QueryClient.Transport}
	if cfg.QueryClient.Transport == queryclient.TransportDapr {
		fields["sidecar"] = cfg.QueryClient.DaprEndpoint
		fields["app_id"] = cfg.QueryClient.DaprAppID
	} else {
		fields["accessor"] = cfg.QueryClient.BaseURL
	}
	log.WithFields(fields).Info("manager started")

	return server.Run(ctx, ":"+cfg.Port, r, log)
}
