package provider

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rexplorer/rexp/pkg/files"
)

var (
	configureOnce   sync.Once
	defaultProvider atomic.Pointer[Provider]
)

// Configure binds the session-wide provider with the given summary limit and
// default settings for everything else. Only the first call has an effect; it
// must complete before the first package-level query.
func Configure(limit int) {
	cfg := DefaultConfig()
	cfg.SummaryLimit = limit
	// the default language command always parses, so New cannot fail here
	p, _ := New(cfg)
	SetDefault(p)
}

// SetDefault binds p as the session-wide provider. It reports false when a
// provider was already bound, in which case p is ignored.
func SetDefault(p *Provider) bool {
	bound := false
	configureOnce.Do(func() {
		defaultProvider.Store(p)
		bound = true
	})
	return bound
}

// Default returns the session-wide provider. Calling it before Configure is
// a programming error and panics.
func Default() *Provider {
	p := defaultProvider.Load()
	if p == nil {
		panic("provider: query issued before Configure")
	}
	return p
}

func CommitSummary(e files.Entry) string {
	return Default().CommitSummary(context.Background(), e)
}

func PrimaryLanguage(e files.Entry) string {
	return Default().PrimaryLanguage(context.Background(), e)
}

func LastModifiedRelative(e files.Entry) string {
	return Default().LastModifiedRelative(context.Background(), e)
}

func LastAuthor(e files.Entry) string {
	return Default().LastAuthor(context.Background(), e)
}
