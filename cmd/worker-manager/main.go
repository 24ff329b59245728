// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"travel-workers/internal/app"
	"travel-workers/internal/common/camunda"
	"travel-workers/internal/common/config"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/observability"
	"travel-workers/pkg/registry"

	ab "travel-workers/internal/workers/loyalty/award-badge"
	gls "travel-workers/internal/workers/loyalty/get-loyalty-summary"
	mr "travel-workers/internal/workers/loyalty/manage-referral"
	rp "travel-workers/internal/workers/loyalty/redeem-points"
	rb "travel-workers/internal/workers/loyalty/reward-booking"
	isq "travel-workers/internal/workers/search/interpret-search-query"
	mla "travel-workers/internal/workers/search/manage-location-aliases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("starting worker manager", map[string]interface{}{
		"environment": cfg.App.Environment,
		"broker":      cfg.Camunda.BrokerAddress,
	})

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, log, app.StartupRetry)
	if err != nil {
		zapLog.Fatal("service wiring failed", zap.Error(err))
	}
	defer services.Close()
	defer obs.Observe(services.Bus)()

	zeebe, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer func() { _ = zeebe.Close() }()
	log.Info("zeebe client connected", nil)

	workers := registerWorkers(cfg, services, zeebe, obs, log)
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	srv := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newMux(services, zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown", map[string]interface{}{"error": err})
	}
	log.Info("worker manager stopped", nil)
}

func registerWorkers(
	cfg *config.Config,
	s *app.Services,
	zeebe *camunda.Client,
	obs *observability.Observability,
	log logger.Logger,
) []*camunda.CamundaWorker {
	var started []*camunda.CamundaWorker
	activities := registry.Default()
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		if a, ok := activities.Find(taskType); ok {
			log.Debug("registering activity", map[string]interface{}{
				"taskType":    taskType,
				"displayName": a.DisplayName,
				"bpmnErrors":  a.BPMNErrors,
			})
		} else {
			log.Warn("task type missing from activity registry", map[string]interface{}{"taskType": taskType})
		}
		started = append(started, camunda.NewWorker(zeebe.GetClient(), taskType, wcfg, handler, obs, log))
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- Search ---
	start(isq.TaskType, isq.NewHandler(
		&isq.Config{
			Timeout:       timeout(isq.TaskType),
			MaxQueryLen:   cfg.Search.MaxQueryLen,
			EnableAliases: cfg.Search.EnableAliases,
		},
		s.Interpreter, s.Catalog, log,
	))
	start(mla.TaskType, mla.NewHandler(&mla.Config{Timeout: timeout(mla.TaskType)}, s.Repository, log))

	// --- Loyalty ---
	start(rb.TaskType, rb.NewHandler(&rb.Config{Timeout: timeout(rb.TaskType)}, s.Ledger, log))
	start(rp.TaskType, rp.NewHandler(
		&rp.Config{
			Timeout:          timeout(rp.TaskType),
			MaxPerRedemption: cfg.Loyalty.MaxRedemption,
		},
		s.Ledger, log,
	))
	start(ab.TaskType, ab.NewHandler(&ab.Config{Timeout: timeout(ab.TaskType)}, s.Ledger, log))
	start(gls.TaskType, gls.NewHandler(
		&gls.Config{
			Timeout:     timeout(gls.TaskType),
			RecentLimit: cfg.Loyalty.RecentTransactions,
		},
		s.Ledger, log,
	))
	start(mr.TaskType, mr.NewHandler(&mr.Config{Timeout: timeout(mr.TaskType)}, s.Ledger, log))

	return started
}

func newMux(s *app.Services, zeebe *camunda.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
	})
	mux.HandleFunc("/activities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, registry.Default())
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		failures := s.Ping(r.Context())
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			failures["zeebe"] = err.Error()
		}
		if len(failures) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "not ready",
				"failures": failures,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
