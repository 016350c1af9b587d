package config

import (
	"time"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
)

// Namespace prefixes every environment variable, e.g. ATTENDANCE_DB_HOST.
const Namespace = "ATTENDANCE"

type Config struct {
	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:8080"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		AllowedOrigins  []string      `conf:"default:http://localhost:3000"`
	}
	Storage string `conf:"default:postgres,help:postgres or memory"`
	DB      struct {
		User       string `conf:"default:postgres"`
		Password   string `conf:"default:postgres,noprint"`
		Host       string `conf:"default:localhost:5432"`
		Name       string `conf:"default:attendance"`
		DisableTLS bool   `conf:"default:true"`
		Debug      bool   `conf:"default:false"`
	}
	Redis struct {
		Enabled  bool          `conf:"default:false"`
		Addr     string        `conf:"default:localhost:6379"`
		Password string        `conf:"noprint"`
		DB       int           `conf:"default:0"`
		RuleTTL  time.Duration `conf:"default:10m"`
	}
	Auth struct {
		JWTKey string `conf:"noprint"`
	}
	Workflow struct {
		RetryDelay time.Duration `conf:"default:100ms"`
	}
	PolicyFile string `conf:"default:policy.yaml"`
}

// Parse fills a Config from defaults, environment and command line flags.
// conf.ErrHelpWanted is returned unwrapped so callers can print usage.
func Parse(args []string) (Config, error) {
	var cfg Config

	if err := conf.Parse(args, Namespace, &cfg); err != nil {
		if err == conf.ErrHelpWanted {
			return cfg, err
		}
		return cfg, errors.Wrap(err, "parsing config")
	}

	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return cfg, errors.Errorf("unknown storage %q", cfg.Storage)
	}
	if cfg.Auth.JWTKey == "" {
		return cfg, errors.New("missing required auth configuration: jwt key")
	}

	return cfg, nil
}

// Usage renders the help text for the config.
func Usage() (string, error) {
	var cfg Config
	return conf.Usage(Namespace, &cfg)
}

// String renders the effective config with secrets masked.
func (c Config) String() string {
	out, err := conf.String(&c)
	if err != nil {
		return err.Error()
	}
	return out
}
