// Package profiling writes pprof profiles for slow listings.
package profiling

import (
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	osCreate              = os.Create
	pprofStartCPUProfile  = pprof.StartCPUProfile
	pprofStopCPUProfile   = pprof.StopCPUProfile
	pprofWriteHeapProfile = pprof.WriteHeapProfile
	memProfilingInterval  = 10 * time.Second
)

// DoCPUProfiling starts a CPU profile written to path. The returned func
// stops it; it is never nil.
func DoCPUProfiling(path string, logger *log.Logger) (stop func()) {
	f, err := osCreate(path)
	if err != nil {
		logger.Error("could not create CPU profile", "path", path, "err", err)
		return func() {}
	}
	if err = pprofStartCPUProfile(f); err != nil {
		logger.Error("could not start CPU profile", "err", err)
		_ = f.Close()
		return func() {}
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			pprofStopCPUProfile()
			if err := f.Close(); err != nil {
				logger.Error("could not close CPU profile", "path", path, "err", err)
			}
		})
	}
}

// DoMemProfiling rewrites a heap profile at path every memProfilingInterval
// and once more when the returned func is called.
func DoMemProfiling(path string, logger *log.Logger) (stop func()) {
	write := func() {
		f, err := osCreate(path)
		if err != nil {
			logger.Error("could not create memory profile", "path", path, "err", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err = pprofWriteHeapProfile(f); err != nil {
			logger.Error("could not write memory profile", "err", err)
		}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(memProfilingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				write()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
			write()
		})
	}
}
