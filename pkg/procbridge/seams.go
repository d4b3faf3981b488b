package procbridge

import (
	"context"
	"os/exec"
	"time"
)

var (
	execCommandContext = exec.CommandContext
	timeNow            = time.Now

	isCtxDone = func(ctx context.Context) bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
)
