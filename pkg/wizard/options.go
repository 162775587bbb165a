package wizard

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-memora/pkg/gateway"
)

// DefaultSubmitTimeout bounds a single gateway call.
const DefaultSubmitTimeout = 30 * time.Second

// Recorder observes flow activity. internal/metrics provides a Prometheus
// implementation.
type Recorder interface {
	Transition(flow string, from, to int)
	Blocked(flow string, step int)
	Submitted(flow string, success bool, elapsed time.Duration)
}

// TokenSource supplies the session token attached to submissions.
type TokenSource interface {
	Token() string
}

type nopRecorder struct{}

func (nopRecorder) Transition(string, int, int) {}
func (nopRecorder) Blocked(string, int) {}
func (nopRecorder) Submitted(string, bool, time.Duration) {}

type settings struct {
	id       string
	logger   *slog.Logger
	gateway  gateway.Gateway
	timeout  time.Duration
	recorder Recorder
	session  TokenSource
}

// Option configures a Flow.
type Option func(*settings)

// WithID sets the flow identifier. A random one is generated otherwise.
func WithID(id string) Option {
	return func(s *settings) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger sets the logger used for transitions and submissions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGateway sets the gateway Submit hands the assembled form to.
func WithGateway(gw gateway.Gateway) Option {
	return func(s *settings) {
		if gw != nil {
			s.gateway = gw
		}
	}
}

// WithSubmitTimeout bounds each gateway call. Zero disables the bound.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithRecorder installs a metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *settings) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithSession attaches a session whose token is sent with the submission.
func WithSession(session TokenSource) Option {
	return func(s *settings) {
		s.session = session
	}
}
