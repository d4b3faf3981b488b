package procbridge

import (
	"context"
	"sync"
)

var defaultBridge = sync.OnceValue(func() *Bridge {
	return New()
})

// Run executes a full command line and returns its stdout.
//
// The exit status is not inspected: a failing command yields whatever it
// printed, and a command that cannot be started yields "". Use RunContext
// when the distinction matters.
func Run(command string) string {
	return RunContext(context.Background(), command).Text()
}

// RunContext splits command into an argument vector and runs it on the
// package's default Bridge.
func RunContext(ctx context.Context, command string) Result {
	words, err := SplitCommand(command)
	if err != nil {
		return Result{Command: command, Outcome: SpawnFailed, ExitCode: -1, Err: err}
	}
	if len(words) == 0 {
		return Result{Command: command, Outcome: Empty}
	}
	return defaultBridge().Run(ctx, words[0], words[1:]...)
}
