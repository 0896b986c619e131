package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Query is forwarded verbatim to the backend. Period is opaque here.
type Query struct {
	Period string
}

// API fetches one analytics envelope.
type API interface {
	GetAnalytics(ctx context.Context, q Query) (*Envelope, error)
}

// ClosedMessage is returned by Load after Close.
const ClosedMessage = "Analytics view is closed."

// Loader issues exactly one fetch per Load and keeps the outcome of the most
// recent invocation. A result that arrives after a newer Load was issued, or
// after Close, is returned to its caller but never stored.
type Loader struct {
	api API
	log *zap.Logger

	mu      sync.Mutex
	seq     uint64
	closed  bool
	current Outcome
}

// NewLoader creates a loader whose current outcome is Loading.
func NewLoader(api API, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		api:     api,
		log:     logger,
		current: LoadingOutcome(),
	}
}

// Load fetches analytics for period and returns the derived outcome.
func (l *Loader) Load(ctx context.Context, period string) Outcome {
	token, ok := l.begin()
	if !ok {
		return FailedOutcome(ClosedMessage)
	}

	start := time.Now()
	var (
		env *Envelope
		err error
	)
	if l.api == nil {
		err = &TransportError{}
	} else {
		env, err = l.api.GetAnalytics(ctx, Query{Period: period})
	}
	out := Derive(env, err)

	applied := l.commit(token, out)
	l.log.Debug("analytics load finished",
		zap.String("period", period),
		zap.Uint64("invocation", token),
		zap.Stringer("phase", out.Phase),
		zap.Bool("summary_present", out.SummaryPresent),
		zap.Bool("applied", applied),
		zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		l.log.Warn("analytics fetch failed", zap.String("period", period), zap.Error(err))
	}
	return out
}

// Current returns the outcome of the most recent committed invocation.
func (l *Loader) Current() Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Close tears the loader down; pending fetches complete as no-ops.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *Loader) begin() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, false
	}
	l.seq++
	l.current = LoadingOutcome()
	return l.seq, true
}

// commit stores out only if token is still the latest invocation.
func (l *Loader) commit(token uint64, out Outcome) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || token != l.seq {
		return false
	}
	l.current = out
	return true
}
