// Package metrics exposes Prometheus counters for the trigger engine and the
// cycle aligner, and the HTTP endpoint that serves them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/sleep-alarm/internal/logger"
)

const (
	namespace = "sleep_alarm"

	// readHeaderTimeout bounds slow metric scrapers.
	readHeaderTimeout = 5 * time.Second
)

//nolint:gochecknoglobals // Collectors are registered once with the default registry.
var (
	alarmsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_fired_total",
			Help:      "Number of alarms that started firing, by source.",
		},
		[]string{"source"},
	)

	alarmsStopped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_stopped_total",
			Help:      "Number of firing alarms that stopped, by reason.",
		},
		[]string{"reason"},
	)

	tickErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_errors_total",
			Help:      "Number of trigger evaluations that failed.",
		},
	)

	alignerToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aligner_toggles_total",
			Help:      "Number of sleep-now presses, by outcome.",
		},
		[]string{"result"},
	)

	engineFiring = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engine_firing",
			Help:      "1 while an alarm is firing, 0 otherwise.",
		},
	)
)

// AlarmFired counts an alarm that started, by source ("normal" or "aligned").
func AlarmFired(source string) {
	alarmsFired.WithLabelValues(source).Inc()
	engineFiring.Set(1)
}

// AlarmStopped counts a firing alarm that stopped, by reason.
func AlarmStopped(reason string) {
	alarmsStopped.WithLabelValues(reason).Inc()
	engineFiring.Set(0)
}

// TickFailed counts a failed trigger evaluation.
func TickFailed() {
	tickErrors.Inc()
}

// AlignerToggled counts a sleep-now press outcome.
func AlignerToggled(result string) {
	alignerToggles.WithLabelValues(result).Inc()
}

// Serve exposes /metrics on addr until ctx is canceled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), readHeaderTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	logger.InfoKV(ctx, "Metrics endpoint listening", "metrics_address", addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
