// Package metrics exports command dispatch and registration counters to
// Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/steviee/mccmd/internal/command"
)

// Metrics holds the Prometheus collectors shared by every plugin label.
type Metrics struct {
	DispatchTotal      *prometheus.CounterVec // Dispatches by label, command path and outcome
	RegistrationErrors *prometheus.CounterVec // Definitions left out of a registration pass, by kind
	RegisteredCommands *prometheus.GaugeVec   // Nodes in the tree after the last pass
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	dispatchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mccmd_dispatch_total",
		Help: "Total number of command dispatches by outcome",
	}, []string{"label", "command", "outcome"})

	registrationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mccmd_registration_errors_total",
		Help: "Total number of command definitions rejected during registration",
	}, []string{"label", "kind"})

	registered := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mccmd_registered_commands",
		Help: "Number of commands registered by the last registration pass",
	}, []string{"label"})

	reg.MustRegister(dispatchTotal)
	reg.MustRegister(registrationErrors)
	reg.MustRegister(registered)

	return &Metrics{
		DispatchTotal:      dispatchTotal,
		RegistrationErrors: registrationErrors,
		RegisteredCommands: registered,
	}
}

// Observer returns a command observer recording under the plugin label.
// It also implements command.RegistrationObserver.
func (m *Metrics) Observer(label string) command.Observer {
	return &labelObserver{metrics: m, label: label}
}

type labelObserver struct {
	metrics *Metrics
	label   string
}

func (o *labelObserver) ObserveDispatch(path string, outcome command.Outcome) {
	o.metrics.DispatchTotal.WithLabelValues(o.label, path, string(outcome)).Inc()
}

func (o *labelObserver) ObserveRegistration(report *command.Report) {
	o.metrics.RegisteredCommands.WithLabelValues(o.label).Set(float64(report.Registered))
	for _, err := range report.Errors {
		o.metrics.RegistrationErrors.WithLabelValues(o.label, ErrorKind(err)).Inc()
	}
}

// ErrorKind classifies a registration error for the kind label by its
// outermost type, so a child of a cycle counts as unresolved_parent.
func ErrorKind(err error) string {
	switch err.(type) {
	case *command.CyclicParentError:
		return "cyclic_parent"
	case *command.UnresolvedParentError:
		return "unresolved_parent"
	case *command.DuplicateCommandError:
		return "duplicate"
	case *command.MissingRequiredMetadataError:
		return "missing_metadata"
	case *command.RegistrationError:
		return "host_rejected"
	}
	return "other"
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes g on addr at path until ctx is cancelled.
func Serve(ctx context.Context, addr, path string, g prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr, "path", path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
		return nil
	}
}
