package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/logging"
	"github.com/chen-kiso-golan/TodoApp/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// NewEngine returns a gin engine with request logging, request metrics and
// recovery installed and /metrics mounted. Recovery runs innermost so a
// panicking handler is still logged and counted as a 500.
func NewEngine(log logrus.FieldLogger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(log), m.Middleware(), gin.Recovery())
	r.GET("/metrics", gin.WrapH(m.Handler()))
	return r
}

// Run serves h on addr until ctx is done or SIGINT/SIGTERM arrives, then
// drains in-flight requests.
func Run(ctx context.Context, addr string, h http.Handler, log logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
