package procbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

const (
	DefaultTimeout          = 2 * time.Second
	defaultFailureThreshold = 3
	defaultOpenDuration     = 30 * time.Second

	// waitDelay bounds how long a killed process's children may keep stdout open.
	waitDelay = 250 * time.Millisecond
)

// Runner executes a single read-only external command and captures its output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// Bridge is the default Runner. Each call spawns one process and blocks until
// it exits and stdout is drained, or until the per-call timeout expires.
//
// A circuit breaker is kept per executable name: after a run of consecutive
// spawn failures or timeouts the executable is not started again until the
// open period elapses, so a missing tool costs one failed spawn instead of one
// per listed entry.
type Bridge struct {
	timeout          time.Duration
	failureThreshold uint32
	openDuration     time.Duration
	logger           *log.Logger
	metrics          *metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

type Option func(*Bridge)

// WithTimeout bounds every invocation. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

func WithLogger(logger *log.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRegisterer exposes invocation counters and durations on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(b *Bridge) { b.metrics = newMetrics(reg) }
}

// WithCircuit sets how many consecutive failures open the circuit for an
// executable and how long it stays open.
func WithCircuit(failures uint32, open time.Duration) Option {
	return func(b *Bridge) {
		if failures > 0 {
			b.failureThreshold = failures
		}
		if open > 0 {
			b.openDuration = open
		}
	}
}

func New(opts ...Option) *Bridge {
	b := &Bridge{
		timeout:          DefaultTimeout,
		failureThreshold: defaultFailureThreshold,
		openDuration:     defaultOpenDuration,
		logger:           log.New(io.Discard),
		breakers:         make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ Runner = (*Bridge)(nil)

// Run executes name with args. Arguments are passed as a vector; nothing is
// quoted, escaped or interpreted by a shell.
func (b *Bridge) Run(ctx context.Context, name string, args ...string) Result {
	started := timeNow()
	command := commandLine(name, args)

	var res Result
	_, err := b.breaker(name).Execute(func() (interface{}, error) {
		res = b.exec(ctx, name, args)
		switch {
		case res.Outcome == SpawnFailed:
			return nil, res.Err
		case res.Outcome == TimedOut && errors.Is(res.Err, context.DeadlineExceeded):
			return nil, res.Err
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		res = Result{
			Outcome:  SpawnFailed,
			ExitCode: -1,
			Err:      fmt.Errorf("%s: %w", name, ErrCircuitOpen),
		}
	}
	res.Command = command
	res.Duration = timeNow().Sub(started)

	b.metrics.observe(name, res)
	if res.Err != nil {
		b.logger.Debug("external command degraded", "cmd", command, "outcome", res.Outcome, "err", res.Err)
	} else {
		b.logger.Debug("external command", "cmd", command, "outcome", res.Outcome, "took", res.Duration)
	}
	return res
}

func (b *Bridge) exec(ctx context.Context, name string, args []string) Result {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := execCommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	err := cmd.Run()

	return classify(ctx, err, stdout.String(), stderr.String())
}

func classify(ctx context.Context, err error, stdout, stderr string) Result {
	res := Result{Stdout: stdout, Stderr: stderr}

	if isCtxDone(ctx) {
		res.Outcome = TimedOut
		res.ExitCode = -1
		res.Err = fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		return res
	}

	if err == nil {
		if stdout == "" {
			res.Outcome = Empty
		} else {
			res.Outcome = OK
		}
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Outcome = NonZeroExit
		res.ExitCode = exitErr.ExitCode()
		res.Err = fmt.Errorf("%w: exit status %d", ErrNonZeroExit, res.ExitCode)
		return res
	}

	res.Outcome = SpawnFailed
	res.ExitCode = -1
	res.Err = fmt.Errorf("%w: %w", ErrSpawn, err)
	return res
}

func (b *Bridge) breaker(name string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[name]; ok {
		return cb
	}
	threshold := b.failureThreshold
	logger := b.logger
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     b.openDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("command circuit changed", "cmd", name, "from", from.String(), "to", to.String())
		},
	})
	b.breakers[name] = cb
	return cb
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
