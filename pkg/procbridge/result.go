package procbridge

import (
	"errors"
	"time"
)

var (
	ErrSpawn       = errors.New("failed to start process")
	ErrNonZeroExit = errors.New("process exited with non-zero status")
	ErrTimeout     = errors.New("process did not finish in time")
	ErrCircuitOpen = errors.New("command is temporarily disabled after repeated failures")
)

// Outcome classifies how an invocation ended.
type Outcome int

const (
	// OK means the process exited with status 0 and wrote something to stdout.
	OK Outcome = iota
	// Empty means the process exited with status 0 and wrote nothing to stdout.
	Empty
	// SpawnFailed means the process never ran (missing executable, permissions, open circuit).
	SpawnFailed
	// NonZeroExit means the process ran and exited with a non-zero status.
	NonZeroExit
	// TimedOut means the context expired or was canceled before the process exited.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Empty:
		return "empty"
	case SpawnFailed:
		return "spawn_failed"
	case NonZeroExit:
		return "non_zero_exit"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single external invocation.
//
// Stdout is kept for every outcome: a command that exits non-zero still
// reports whatever it printed, so best-effort callers can keep using Text()
// and stricter callers can look at Outcome or Err.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Text returns captured stdout regardless of the exit status.
func (r Result) Text() string {
	return r.Stdout
}

// Succeeded reports whether the process ran and exited with status 0.
func (r Result) Succeeded() bool {
	return r.Outcome == OK || r.Outcome == Empty
}
