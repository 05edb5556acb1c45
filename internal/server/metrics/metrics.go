// Package metrics exposes Prometheus collectors for the ledger and serves
// them over HTTP.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/logging"
	"github.com/dmitrijs2005/seedvault/internal/server/ledger"
)

const namespace = "seedvault"

// Collector records instruction outcomes, locked lamports and RPC calls.
// It implements ledger.Observer.
type Collector struct {
	registry     *prometheus.Registry
	instructions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	locked       prometheus.Gauge
	rpcs         *prometheus.CounterVec
}

var _ ledger.Observer = (*Collector)(nil)

// NewCollector registers all collectors on a fresh registry, so several
// collectors can coexist in one process.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		registry: reg,
		instructions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instructions_total",
			Help:      "Vault instructions by outcome.",
		}, []string{"op", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "instruction_duration_seconds",
			Help:      "Time to execute and commit a vault instruction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
		locked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vault_lamports_locked",
			Help:      "Lamports currently held by vault accounts.",
		}),
		rpcs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "gRPC calls by method and status code.",
		}, []string{"method", "code"}),
	}
}

// Registry returns the registry the collectors live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) InstructionDone(op ledger.Op, err error, elapsed time.Duration) {
	c.instructions.WithLabelValues(string(op), Result(err)).Inc()
	c.duration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

func (c *Collector) LockedChanged(delta int64) {
	c.locked.Add(float64(delta))
}

// SetLocked resets the locked gauge, typically from storage at startup.
func (c *Collector) SetLocked(lamports uint64) {
	c.locked.Set(float64(lamports))
}

// RPCDone counts one finished gRPC call.
func (c *Collector) RPCDone(method, code string) {
	c.rpcs.WithLabelValues(method, code).Inc()
}

var results = []struct {
	err   error
	label string
}{
	{common.ErrUnauthorized, "unauthorized"},
	{common.ErrAddressMismatch, "address_mismatch"},
	{common.ErrInvalidAmount, "invalid_amount"},
	{common.ErrVaultAlreadyExists, "already_exists"},
	{common.ErrAccountAlreadyExists, "already_exists"},
	{common.ErrInsufficientFundsForRent, "insufficient_funds_for_rent"},
	{common.ErrInsufficientFunds, "insufficient_funds"},
	{common.ErrInvalidSeeds, "invalid_seeds"},
}

// Result turns an instruction error into a low-cardinality label.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range results {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "error"
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Serve runs the /metrics endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, c *Collector, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Stopping metrics server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Starting metrics server", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
