// Package provider derives per-entry version-control facts for listing
// columns: last commit summary, author, relative age and primary language.
//
// Every query is best effort. Display methods always return something
// printable and never fail; the matching ...Result methods carry the reason a
// value is missing for callers that want to log or retry.
package provider

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/procbridge"
	"golang.org/x/sync/singleflight"
)

// Unknown is shown when no language could be detected.
const Unknown = "Unknown"

const (
	DefaultSummaryLimit = 40
	defaultCacheSize    = 4096
)

// Query names one of the facts a Provider can derive.
type Query string

const (
	QuerySummary  Query = "summary"
	QueryLanguage Query = "language"
	QueryModified Query = "modified"
	QueryAuthor   Query = "author"
)

// Queries lists every query in display order.
func Queries() []Query {
	return []Query{QuerySummary, QueryLanguage, QueryModified, QueryAuthor}
}

func ParseQuery(s string) (Query, error) {
	q := Query(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Queries() {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuery, s)
}

// Config is fixed when a Provider is built.
type Config struct {
	// SummaryLimit is the number of characters a commit summary may have
	// before it is cut and suffixed with "..".
	SummaryLimit int
	// Timeout bounds each external invocation.
	Timeout time.Duration
	// CacheTTL enables result caching when positive.
	CacheTTL  time.Duration
	CacheSize int
	// Exclude holds doublestar patterns matched against the slash-separated
	// absolute path and against the base name. Matching entries are never
	// queried.
	Exclude  []string
	Language LanguageConfig
}

func DefaultConfig() Config {
	return Config{
		SummaryLimit: DefaultSummaryLimit,
		Timeout:      procbridge.DefaultTimeout,
		CacheSize:    defaultCacheSize,
		Language: LanguageConfig{
			Detector: DetectorCommand,
			Command:  DefaultLanguageCommand,
			Field:    DefaultLanguageField,
		},
	}
}

// Result is a query value plus the reason it may be incomplete. Text is what
// a listing shows; Err is nil only when the value came back cleanly.
type Result struct {
	Text string
	Err  error
}

type Provider struct {
	cfg      Config
	runner   procbridge.Runner
	detector LanguageDetector
	logger   *log.Logger
	repos    *repoLocator
	exclude  []string
	cache    *expirable.LRU[string, Result]
	group    singleflight.Group
}

type Option func(*Provider)

// WithRunner replaces the process bridge, mostly for tests.
func WithRunner(r procbridge.Runner) Option {
	return func(p *Provider) { p.runner = r }
}

func WithLogger(logger *log.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLanguageDetector overrides the detector chosen by Config.Language.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(p *Provider) { p.detector = d }
}

// New builds a Provider. It fails only when the language detector
// configuration cannot be used.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.SummaryLimit < 0 {
		cfg.SummaryLimit = 0
	}
	p := &Provider{
		cfg:    cfg,
		logger: log.New(io.Discard),
		repos:  newRepoLocator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = procbridge.New(
			procbridge.WithTimeout(cfg.Timeout),
			procbridge.WithLogger(p.logger),
		)
	}
	if p.detector == nil {
		d, err := newLanguageDetector(cfg.Language, p.runner)
		if err != nil {
			return nil, err
		}
		p.detector = d
	}
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			p.logger.Warn("ignoring invalid exclude pattern", "pattern", pattern)
			continue
		}
		p.exclude = append(p.exclude, pattern)
	}
	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		p.cache = expirable.NewLRU[string, Result](size, nil, cfg.CacheTTL)
	}
	return p, nil
}

func (p *Provider) Config() Config {
	return p.cfg
}

// CommitSummary returns the subject of the last commit touching the entry,
// cut to the configured limit. It is empty when there is no history.
func (p *Provider) CommitSummary(ctx context.Context, e files.Entry) string {
	return p.CommitSummaryResult(ctx, e).Text
}

func (p *Provider) CommitSummaryResult(ctx context.Context, e files.Entry) Result {
	return p.query(ctx, QuerySummary, e, func() Result {
		r := p.gitLog(ctx, e, "%s")
		r.Text = Truncate(r.Text, p.cfg.SummaryLimit)
		return r
	})
}

// PrimaryLanguage returns the detected language, or Unknown. It never
// returns an empty string.
func (p *Provider) PrimaryLanguage(ctx context.Context, e files.Entry) string {
	return p.PrimaryLanguageResult(ctx, e).Text
}

func (p *Provider) PrimaryLanguageResult(ctx context.Context, e files.Entry) Result {
	r := p.query(ctx, QueryLanguage, e, func() Result {
		return p.detector.Detect(ctx, e)
	})
	if r.Text == "" {
		r.Text = Unknown
	}
	return r
}

// LastModifiedRelative returns git's relative commit date, e.g. "3 days ago".
func (p *Provider) LastModifiedRelative(ctx context.Context, e files.Entry) string {
	return p.LastModifiedRelativeResult(ctx, e).Text
}

func (p *Provider) LastModifiedRelativeResult(ctx context.Context, e files.Entry) Result {
	return p.query(ctx, QueryModified, e, func() Result {
		return p.gitLog(ctx, e, "%cr")
	})
}

// LastAuthor returns the author name of the last commit touching the entry.
func (p *Provider) LastAuthor(ctx context.Context, e files.Entry) string {
	return p.LastAuthorResult(ctx, e).Text
}

func (p *Provider) LastAuthorResult(ctx context.Context, e files.Entry) Result {
	return p.query(ctx, QueryAuthor, e, func() Result {
		return p.gitLog(ctx, e, "%an")
	})
}

// Lookup runs q by name.
func (p *Provider) Lookup(ctx context.Context, q Query, e files.Entry) (Result, error) {
	switch q {
	case QuerySummary:
		return p.CommitSummaryResult(ctx, e), nil
	case QueryLanguage:
		return p.PrimaryLanguageResult(ctx, e), nil
	case QueryModified:
		return p.LastModifiedRelativeResult(ctx, e), nil
	case QueryAuthor:
		return p.LastAuthorResult(ctx, e), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownQuery, q)
	}
}

func (p *Provider) query(ctx context.Context, q Query, e files.Entry, fn func() Result) Result {
	if p.excluded(e.Path) {
		return Result{Err: ErrExcluded}
	}
	key := string(q) + "\x00" + e.Path
	if p.cache != nil {
		if r, ok := p.cache.Get(key); ok {
			return r
		}
	}
	ch := p.group.DoChan(key, func() (interface{}, error) {
		return p.run(ctx, key, fn), nil
	})
	var r Result
	select {
	case res := <-ch:
		f := res.Val.(flight)
		r = f.result
		// the caller that ran fn gave up; its degraded result is not ours
		if f.canceled && ctx.Err() == nil {
			r = p.run(ctx, key, fn).result
		}
	case <-ctx.Done():
		r = Result{Err: fmt.Errorf("%w: %w", procbridge.ErrTimeout, ctx.Err())}
	}
	if r.Err != nil {
		p.logger.Debug("query degraded", "query", q, "path", e.Path, "err", r.Err)
	}
	return r
}

// flight is what one shared evaluation hands to every waiting caller.
type flight struct {
	result   Result
	canceled bool
}

func (p *Provider) run(ctx context.Context, key string, fn func() Result) flight {
	r := fn()
	if ctx.Err() != nil {
		// a canceled listing must not poison the cache
		return flight{result: r, canceled: true}
	}
	if p.cache != nil {
		p.cache.Add(key, r)
	}
	return flight{result: r}
}

// gitLog asks git for one --format placeholder of the last commit touching
// the entry. Non-zero exits keep whatever git printed on stdout.
func (p *Provider) gitLog(ctx context.Context, e files.Entry, format string) Result {
	dir, pathspec, err := queryTarget(e.Path, e.IsDir)
	if err != nil {
		return Result{Err: err}
	}
	if p.repos.root(dir) == "" {
		return Result{Err: ErrNotInRepository}
	}
	res := p.runner.Run(ctx, "git", "-C", dir, "log", "-1", "--format="+format, "--", pathspec)
	text := StripLineTerminators(res.Text())
	switch {
	case res.Err != nil:
		return Result{Text: text, Err: res.Err}
	case text == "":
		return Result{Err: ErrNoOutput}
	default:
		return Result{Text: text}
	}
}

func (p *Provider) excluded(path string) bool {
	if len(p.exclude) == 0 {
		return false
	}
	abs, err := filepathAbs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.ToSlash(abs)
	base := filepath.Base(abs)
	for _, pattern := range p.exclude {
		if ok, _ := doublestar.Match(pattern, abs); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
