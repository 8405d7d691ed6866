package logging

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// New builds a logger writing to stdout. An unparsable level falls back to info.
// format is "json", "text", or "" to pick text on a terminal and json otherwise.
func New(level, format string) *logrus.Logger {
	return newLogger(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()), level, format)
}

func newLogger(out io.Writer, tty bool, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	switch {
	case format == "json", format == "" && !tty:
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Middleware logs one line per request in place of gin.Logger.
func Middleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		if status >= 500 {
			entry.Error("request")
			return
		}
		entry.Info("request")
	}
}
