// cmd/loan-form/app.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/decision"
	"loan-intake/internal/form"
	"loan-intake/internal/guard"
	"loan-intake/internal/journal"
)

// interactiveLogFile receives logs while the terminal form owns the screen.
const interactiveLogFile = "loan-form.log"

type app struct {
	cfg     *config.Config
	zapLog  *zap.Logger
	log     logger.Logger
	obs     *observability.Observability
	ctrl    *form.Controller
	server  *http.Server
	closers []func() error
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, cfgPath string, interactive bool) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	output := cfg.Logging.Output
	if interactive && (output == "" || output == "stdout" || output == "stderr") {
		output = interactiveLogFile
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, output)
	log := logger.NewZapAdapter(zapLog)

	a := &app{
		cfg:    cfg,
		zapLog: zapLog,
		log:    log,
		obs:    observability.New(cfg.App.Name),
	}

	client := decision.NewClient(decision.LoadConfig(cfg.Decision), a.obs, log)

	var opts []form.Option
	if cfg.Journal.Enabled {
		if store := a.openJournal(ctx); store != nil {
			opts = append(opts, form.WithJournal(store))
		}
	}
	if cfg.Guard.Enabled {
		if g := a.openGuard(ctx); g != nil {
			opts = append(opts, form.WithGuard(g))
		}
	}

	a.ctrl = form.NewController(form.LoadConfig(cfg.Form), client, log, opts...)

	if cfg.Metrics.Address != "" {
		a.startMetricsServer(cfg.Metrics.Address)
	}

	log.Info("loan form ready", map[string]interface{}{
		"endpoint":    cfg.Decision.Endpoint(),
		"environment": cfg.App.Environment,
		"journal":     cfg.Journal.Enabled,
		"guard":       cfg.Guard.Enabled,
	})
	return a, nil
}

// openJournal connects the outcome journal. The form keeps working without it.
func (a *app) openJournal(ctx context.Context) *journal.Store {
	pg, err := database.NewPostgres(a.cfg.Database.Postgres)
	if err != nil {
		a.log.Warn("journal disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	err = retryWithBackoff(func() error {
		return pg.Ping(ctx)
	}, 3, 500*time.Millisecond, a.log, "PostgreSQL connection")
	if err != nil {
		a.log.Warn("journal disabled", map[string]interface{}{"error": err.Error()})
		_ = pg.Close()
		return nil
	}

	store := journal.NewStore(pg.DB, a.log)
	if err := store.EnsureSchema(ctx); err != nil {
		a.log.Warn("journal disabled", map[string]interface{}{"error": err.Error()})
		_ = pg.Close()
		return nil
	}

	a.closers = append(a.closers, pg.Close)
	return store
}

// openGuard connects the duplicate submission guard. The form keeps working
// without it.
func (a *app) openGuard(ctx context.Context) *guard.Redis {
	rdb := database.NewRedis(a.cfg.Database.Redis)
	err := retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 3, 500*time.Millisecond, a.log, "Redis connection")
	if err != nil {
		a.log.Warn("submission guard disabled", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}

	a.closers = append(a.closers, rdb.Close)
	return guard.NewRedis(rdb.Client, config.GetDuration(a.cfg.Guard.TTL), a.log)
}

func (a *app) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.log.Info("metrics server listening", map[string]interface{}{"address": addr})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.server.Shutdown(ctx)
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.obs.Shutdown()
	_ = a.zapLog.Sync()
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
