// Package config loads the accessor, manager, and audit-logger settings.
//
// Values are layered: built-in defaults, then an optional config file, then
// environment variables (TODO_ prefix, dots become underscores), then any
// command-line flags bound by the caller. The returned structs are plain
// values and are not read from viper again after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chen-kiso-golan/TodoApp/internal/app/queryclient"
)

const envPrefix = "TODO"

type Logging struct {
	Level  string
	Format string
}

type Accessor struct {
	Port        string
	StoreDriver string
	StoreDSN    string
	RedisAddr   string
	RedisTTL    time.Duration
	KafkaBroker string
	KafkaTopic  string
	Log         Logging
}

type Manager struct {
	Port        string
	QueryClient queryclient.Config
	Log         Logging
}

type AuditLogger struct {
	KafkaBroker string
	KafkaTopic  string
	KafkaGroup  string
	LogFile     string
	Log         Logging
}

func newViper(configFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	if configFile == "" {
		configFile = os.Getenv(envPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	return v, nil
}

func logging(v *viper.Viper) Logging {
	return Logging{Level: v.GetString("log.level"), Format: v.GetString("log.format")}
}

// LoadAccessor reads accessor settings. flags may be nil; a flag is bound to
// the key of the same name (e.g. "accessor.port").
func LoadAccessor(configFile string, flags *pflag.FlagSet) (Accessor, error) {
	v, err := newViper(configFile, flags)
	if err != nil {
		return Accessor{}, err
	}

	v.SetDefault("accessor.port", "5292")
	v.SetDefault("accessor.store.driver", "postgres")
	v.SetDefault("accessor.redis.ttl", 5*time.Minute)
	v.SetDefault("accessor.kafka.topic", "todo-events")
	// ASP.NET-style connection string variable, kept for existing deployments.
	_ = v.BindEnv("accessor.store.dsn", envPrefix+"_ACCESSOR_STORE_DSN", "ConnectionStrings__TodoDb")

	cfg := Accessor{
		Port:        v.GetString("accessor.port"),
		StoreDriver: v.GetString("accessor.store.driver"),
		StoreDSN:    v.GetString("accessor.store.dsn"),
		RedisAddr:   v.GetString("accessor.redis.addr"),
		RedisTTL:    v.GetDuration("accessor.redis.ttl"),
		KafkaBroker: v.GetString("accessor.kafka.broker"),
		KafkaTopic:  v.GetString("accessor.kafka.topic"),
		Log:         logging(v),
	}

	switch cfg.StoreDriver {
	case "postgres":
		if cfg.StoreDSN == "" {
			return Accessor{}, errors.New("accessor.store.dsn is not configured")
		}
	case "sqlite":
		if cfg.StoreDSN == "" {
			cfg.StoreDSN = "todos.db"
		}
	default:
		return Accessor{}, fmt.Errorf("unknown accessor.store.driver %q", cfg.StoreDriver)
	}
	if cfg.Port == "" {
		return Accessor{}, errors.New("accessor.port is not configured")
	}
	return cfg, nil
}

// LoadManager reads manager settings. The accessor base URL can always be
// overridden by TODOACCESSOR_BASEURL.
func LoadManager(configFile string, flags *pflag.FlagSet) (Manager, error) {
	v, err := newViper(configFile, flags)
	if err != nil {
		return Manager{}, err
	}

	daprPort := os.Getenv("DAPR_HTTP_PORT")
	if daprPort == "" {
		daprPort = "3500"
	}

	v.SetDefault("manager.port", "8080")
	v.SetDefault("manager.transport", queryclient.TransportHTTP)
	v.SetDefault("manager.timeout", 10*time.Second)
	v.SetDefault("todoaccessor.baseurl", "http://localhost:5292")
	v.SetDefault("dapr.http.endpoint", "http://localhost:"+daprPort)
	v.SetDefault("dapr.appid", queryclient.DefaultAccessorAppID)
	_ = v.BindEnv("todoaccessor.baseurl", "TODOACCESSOR_BASEURL", envPrefix+"_TODOACCESSOR_BASEURL")
	_ = v.BindEnv("dapr.apitoken", "DAPR_API_TOKEN")

	cfg := Manager{
		Port: v.GetString("manager.port"),
		QueryClient: queryclient.Config{
			Transport:    v.GetString("manager.transport"),
			BaseURL:      v.GetString("todoaccessor.baseurl"),
			DaprEndpoint: v.GetString("dapr.http.endpoint"),
			DaprAppID:    v.GetString("dapr.appid"),
			DaprAPIToken: v.GetString("dapr.apitoken"),
			Timeout:      v.GetDuration("manager.timeout"),
		},
		Log: logging(v),
	}

	switch cfg.QueryClient.Transport {
	case queryclient.TransportHTTP, queryclient.TransportDapr:
	default:
		return Manager{}, fmt.Errorf("unknown manager.transport %q", cfg.QueryClient.Transport)
	}
	if cfg.Port == "" {
		return Manager{}, errors.New("manager.port is not configured")
	}
	return cfg, nil
}

func LoadAuditLogger(configFile string, flags *pflag.FlagSet) (AuditLogger, error) {
	v, err := newViper(configFile, flags)
	if err != nil {
		return AuditLogger{}, err
	}

	v.SetDefault("kafka.topic", "todo-events")
	v.SetDefault("kafka.group", "todo-audit-logger")

	cfg := AuditLogger{
		KafkaBroker: v.GetString("kafka.broker"),
		KafkaTopic:  v.GetString("kafka.topic"),
		KafkaGroup:  v.GetString("kafka.group"),
		LogFile:     v.GetString("audit.logfile"),
		Log:         logging(v),
	}
	if cfg.KafkaBroker == "" || cfg.KafkaTopic == "" || cfg.LogFile == "" {
		return AuditLogger{}, errors.New("kafka.broker, kafka.topic or audit.logfile is not configured")
	}
	return cfg, nil
}
