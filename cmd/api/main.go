package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"
	"coaching/attendance/internal/commands"
	"coaching/attendance/internal/middleware"
	"coaching/attendance/internal/pkg/config"
	"coaching/attendance/internal/pkg/metrics"
	"coaching/attendance/internal/pkg/repository/postgresql"
	"coaching/attendance/internal/repository/inmem"
	"coaching/attendance/internal/router"
	"coaching/attendance/internal/service/holiday"
	"coaching/attendance/internal/service/workflow"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	attendance_postgres "coaching/attendance/internal/repository/postgres/attendance"
	holiday_postgres "coaching/attendance/internal/repository/postgres/holiday"
	registry_postgres "coaching/attendance/internal/repository/postgres/registry"
	shift_postgres "coaching/attendance/internal/repository/postgres/shift"
	holiday_redis "coaching/attendance/internal/repository/redis/holiday"
	shift_controller "coaching/attendance/internal/controller/http/v1/shift"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Println("creating logger:", err)
		os.Exit(1)
	}
	log := logger.Sugar().With("service", "attendance")
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			os.Exit(0)
		}
		log.Errorw("startup", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	ledger   workflow.Ledger
	registry workflow.Registry
	shifts   interface {
		workflow.Shifts
		shift_controller.Shifts
	}
	rules holiday.Store
	close func()
}

func run(log *zap.SugaredLogger) error {
	args := os.Args[1:]
	migrate := len(args) > 0 && args[0] == "migrate"
	if migrate {
		args = args[1:]
	}

	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, uerr := config.Usage()
			if uerr != nil {
				return errors.Wrap(uerr, "generating usage")
			}
			fmt.Println(usage)
		}
		return err
	}
	log.Infow("startup", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policies, err := config.LoadPolicies(cfg.PolicyFile)
	if err != nil {
		return errors.Wrap(err, "loading tenant policies")
	}

	var s stores
	switch cfg.Storage {
	case "memory":
		if migrate {
			return errors.New("migrate needs postgres storage")
		}
		log.Warnw("using in-memory storage; data is lost on exit")
		s = stores{
			ledger:   inmem.NewLedger(),
			registry: inmem.NewRegistry(),
			shifts:   inmem.NewShifts(),
			rules:    inmem.NewRules(),
			close:    func() {},
		}
	default:
		db, err := postgresql.New(ctx, postgresql.Config{
			User:       cfg.DB.User,
			Password:   cfg.DB.Password,
			Host:       cfg.DB.Host,
			Name:       cfg.DB.Name,
			DisableTLS: cfg.DB.DisableTLS,
			Debug:      cfg.DB.Debug,
		})
		if err != nil {
			return errors.Wrap(err, "connecting to db")
		}

		if migrate {
			defer db.Close()
			return commands.MigrateUP(ctx, db, log)
		}

		s = stores{
			ledger:   attendance_postgres.NewRepository(db),
			registry: registry_postgres.NewRepository(db),
			shifts:   shift_postgres.NewRepository(db),
			rules:    holiday_postgres.NewRepository(db),
			close:    func() { _ = db.Close() },
		}
	}
	defer s.close()

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unreachable, holiday cache will fall through", "addr", cfg.Redis.Addr, "error", err)
		}
		s.rules = holiday_redis.NewCache(s.rules, rdb, cfg.Redis.RuleTTL, log)
	}

	a, err := auth.New(cfg.Auth.JWTKey)
	if err != nil {
		return errors.Wrap(err, "configuring auth")
	}

	resolver := holiday.NewResolver(s.rules)
	wf := workflow.New(
		s.ledger,
		s.registry,
		s.shifts,
		resolver,
		policies,
		log,
		metrics.New(prometheus.DefaultRegisterer),
		workflow.Config{RetryDelay: cfg.Workflow.RetryDelay},
	)

	app := web.NewApp(log, middleware.Logger())
	r := router.NewRouter(app, a, wf, s.rules, resolver, s.shifts, cfg.Web.AllowedOrigins)
	if err := r.Init(); err != nil {
		return errors.Wrap(err, "registering routes")
	}

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      app,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("api listening", "addr", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case <-ctx.Done():
		log.Infow("shutdown started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			_ = api.Close()
			return errors.Wrap(err, "could not stop server gracefully")
		}
		log.Infow("shutdown complete")
	}

	return nil
}
