package command

import "log/slog"

// Outcome is the single action a dispatch ended with.
type Outcome string

// Dispatch outcomes.
const (
	OutcomeExecuted         Outcome = "executed"
	OutcomeUsage            Outcome = "usage"
	OutcomeFailed           Outcome = "failed"
	OutcomeSenderRejected   Outcome = "sender_rejected"
	OutcomePermissionDenied Outcome = "permission_denied"
)

// Observer receives one call per dispatch. path is the space separated node
// path, e.g. "warp delete".
type Observer interface {
	ObserveDispatch(path string, outcome Outcome)
}

// RegistrationObserver is optionally implemented by an Observer that also
// wants the result of every registration pass.
type RegistrationObserver interface {
	ObserveRegistration(report *Report)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(path string, outcome Outcome)

// ObserveDispatch calls f.
func (f ObserverFunc) ObserveDispatch(path string, outcome Outcome) {
	f(path, outcome)
}

// Option configures nodes built by NewNode or RegisterCommands.
type Option func(*options)

type options struct {
	observer Observer
	logger   *slog.Logger
}

// WithObserver reports every dispatch outcome to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithLogger sets the logger used for registration and handler failures.
// slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

func (o *options) observe(path string, outcome Outcome) {
	if o.observer != nil {
		o.observer.ObserveDispatch(path, outcome)
	}
}
