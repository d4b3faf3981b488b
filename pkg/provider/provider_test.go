package provider

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/procbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	run   func(name string, args []string) procbridge.Result
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) procbridge.Result {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	return f.run(name, args)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

// gitOutput answers git log calls by --format placeholder.
func gitOutput(byFormat map[string]string) *fakeRunner {
	return &fakeRunner{run: func(name string, args []string) procbridge.Result {
		for _, a := range args {
			format, ok := strings.CutPrefix(a, "--format=")
			if !ok {
				continue
			}
			if out, ok := byFormat[format]; ok && out != "" {
				return procbridge.Result{Stdout: out, Outcome: procbridge.OK}
			}
		}
		return procbridge.Result{Outcome: procbridge.Empty}
	}}
}

func initRepoWithCommit(t *testing.T, message string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	filePath := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(filePath, []byte("package main\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("main.go")
	require.NoError(t, err)
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: time.Now().Add(-72 * time.Hour)},
	})
	require.NoError(t, err)
	return dir, filePath
}

func newTestProvider(t *testing.T, cfg Config, opts ...Option) *Provider {
	t.Helper()
	p, err := New(cfg, opts...)
	require.NoError(t, err)
	return p
}

func fileEntry(path string) files.Entry {
	return files.Entry{Path: path, Name: filepath.Base(path)}
}

func TestCommitSummary(t *testing.T) {
	dir, filePath := initRepoWithCommit(t, "init")

	tests := []struct {
		name  string
		raw   string
		limit int
		want  string
	}{
		{name: "truncated", raw: "Fix off-by-one error in parser\n", limit: 10, want: "Fix off-by.."},
		{name: "within_limit", raw: "Fix bug\n", limit: 10, want: "Fix bug"},
		{name: "exact_limit", raw: "0123456789\n", limit: 10, want: "0123456789"},
		{name: "no_history", raw: "", limit: 10, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := gitOutput(map[string]string{"%s": tt.raw})
			cfg := DefaultConfig()
			cfg.SummaryLimit = tt.limit
			p := newTestProvider(t, cfg, WithRunner(runner))

			got := p.CommitSummary(context.Background(), fileEntry(filePath))
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "\n")

			call := runner.lastCall()
			require.NotNil(t, call)
			assert.Equal(t, []string{"git", "-C", dir, "log", "-1", "--format=%s", "--", "main.go"}, call)
		})
	}
}

func TestCommitSummaryResult_NoOutput(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	p := newTestProvider(t, DefaultConfig(), WithRunner(gitOutput(nil)))

	r := p.CommitSummaryResult(context.Background(), fileEntry(filePath))
	assert.Equal(t, "", r.Text)
	assert.ErrorIs(t, r.Err, ErrNoOutput)
}

func TestLastAuthorAndModified_StripLineTerminators(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := gitOutput(map[string]string{
		"%an": "Jane\r\nDoe\n",
		"%cr": "3 days ago\r\n",
	})
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))

	assert.Equal(t, "JaneDoe", p.LastAuthor(context.Background(), fileEntry(filePath)))
	assert.Equal(t, "3 days ago", p.LastModifiedRelative(context.Background(), fileEntry(filePath)))
}

func TestGitQueries_NonZeroExitKeepsStdout(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := &fakeRunner{run: func(string, []string) procbridge.Result {
		return procbridge.Result{
			Stdout:   "Jane Doe\n",
			Outcome:  procbridge.NonZeroExit,
			ExitCode: 128,
			Err:      procbridge.ErrNonZeroExit,
		}
	}}
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))

	r := p.LastAuthorResult(context.Background(), fileEntry(filePath))
	assert.Equal(t, "Jane Doe", r.Text)
	assert.ErrorIs(t, r.Err, procbridge.ErrNonZeroExit)
}

func TestGitQueries_SpawnFailureIsEmpty(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := &fakeRunner{run: func(string, []string) procbridge.Result {
		return procbridge.Result{Outcome: procbridge.SpawnFailed, ExitCode: -1, Err: procbridge.ErrSpawn}
	}}
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))

	e := fileEntry(filePath)
	assert.Equal(t, "", p.LastAuthor(context.Background(), e))
	assert.Equal(t, "", p.LastModifiedRelative(context.Background(), e))
	assert.Equal(t, "", p.CommitSummary(context.Background(), e))
	assert.ErrorIs(t, p.LastAuthorResult(context.Background(), e).Err, procbridge.ErrSpawn)
}

func TestGitQueries_OutsideRepositoryDoNotSpawn(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(filePath, nil, 0o644))

	runner := gitOutput(map[string]string{"%an": "should not be used"})
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner), WithLanguageDetector(LexerDetector{}))

	r := p.LastAuthorResult(context.Background(), fileEntry(filePath))
	assert.Equal(t, "", r.Text)
	assert.ErrorIs(t, r.Err, ErrNotInRepository)
	assert.Equal(t, 0, runner.callCount())
}

func TestGitQueries_DirectoryIsQueriedFromInside(t *testing.T) {
	dir, _ := initRepoWithCommit(t, "init")
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))

	runner := gitOutput(map[string]string{"%an": "Jane Doe\n"})
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))

	got := p.LastAuthor(context.Background(), files.Entry{Path: sub, Name: "pkg/", IsDir: true})
	assert.Equal(t, "Jane Doe", got)
	assert.Equal(t, []string{"git", "-C", sub, "log", "-1", "--format=%an", "--", "."}, runner.lastCall())
}

func TestRepoLocator_Memoizes(t *testing.T) {
	dir, _ := initRepoWithCommit(t, "init")

	var opened atomic.Int32
	old := gitPlainOpen
	gitPlainOpen = func(path string) (*git.Repository, error) {
		opened.Add(1)
		return old(path)
	}
	t.Cleanup(func() { gitPlainOpen = old })

	l := newRepoLocator()
	root := l.root(dir)
	assert.NotEmpty(t, root)
	assert.Equal(t, root, l.root(dir))
	assert.Equal(t, int32(1), opened.Load())
}

func TestRepoLocator_DifferentDirsOpenConcurrently(t *testing.T) {
	dir, _ := initRepoWithCommit(t, "init")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	var inside sync.WaitGroup
	inside.Add(2)
	old := gitPlainOpen
	gitPlainOpen = func(path string) (*git.Repository, error) {
		inside.Done()
		// both opens must be in flight before either may finish
		inside.Wait()
		return old(path)
	}
	t.Cleanup(func() { gitPlainOpen = old })

	l := newRepoLocator()
	roots := make(chan string, 2)
	for _, d := range []string{dir, sub} {
		go func(d string) { roots <- l.root(d) }(d)
	}
	for range 2 {
		select {
		case root := <-roots:
			assert.NotEmpty(t, root)
		case <-time.After(5 * time.Second):
			t.Fatal("repository lookups ran one at a time")
		}
	}
}

func TestRepoLocator_WorktreeError(t *testing.T) {
	dir, _ := initRepoWithCommit(t, "init")
	old := repoWorktree
	repoWorktree = func(*git.Repository) (*git.Worktree, error) {
		return nil, git.ErrIsBareRepository
	}
	t.Cleanup(func() { repoWorktree = old })

	assert.Equal(t, "", newRepoLocator().root(dir))
}

func TestQueryTarget_AbsError(t *testing.T) {
	old := filepathAbs
	filepathAbs = func(string) (string, error) { return "", errors.New("abs boom") }
	t.Cleanup(func() { filepathAbs = old })

	p := newTestProvider(t, DefaultConfig(), WithRunner(gitOutput(nil)))
	r := p.LastAuthorResult(context.Background(), fileEntry("whatever"))
	assert.Error(t, r.Err)
	assert.Equal(t, "", r.Text)
}

func TestPrimaryLanguage(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		outcome procbridge.Outcome
		err     error
		want    string
	}{
		{name: "detected", stdout: `{"language": "Go"}`, outcome: procbridge.OK, want: "Go"},
		{name: "empty_object", stdout: `{}`, outcome: procbridge.OK, want: Unknown},
		{name: "unparsable", stdout: `not json at all`, outcome: procbridge.OK, want: Unknown},
		{name: "no_output", stdout: "", outcome: procbridge.Empty, want: Unknown},
		{name: "tool_missing", outcome: procbridge.SpawnFailed, err: procbridge.ErrSpawn, want: Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{run: func(string, []string) procbridge.Result {
				return procbridge.Result{Stdout: tt.stdout, Outcome: tt.outcome, Err: tt.err}
			}}
			p := newTestProvider(t, DefaultConfig(), WithRunner(runner))

			e := fileEntry("/src/my file.go")
			got := p.PrimaryLanguage(context.Background(), e)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
			assert.Equal(t, []string{"enry", "-json", "/src/my file.go"}, runner.lastCall())
		})
	}
}

func TestPrimaryLanguage_CustomCommandAndField(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) procbridge.Result {
		return procbridge.Result{Stdout: `{"result": {"lang": "Zig"}}`, Outcome: procbridge.OK}
	}}
	cfg := DefaultConfig()
	cfg.Language = LanguageConfig{Detector: "command", Command: "detect --path={path} --json", Field: "result.lang"}
	p := newTestProvider(t, cfg, WithRunner(runner))

	assert.Equal(t, "Zig", p.PrimaryLanguage(context.Background(), fileEntry("/x/build.zig")))
	assert.Equal(t, []string{"detect", "--path=/x/build.zig", "--json"}, runner.lastCall())
}

func TestPrimaryLanguage_LexerDetector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language.Detector = DetectorLexer
	runner := gitOutput(nil)
	p := newTestProvider(t, cfg, WithRunner(runner))

	assert.Equal(t, "Go", p.PrimaryLanguage(context.Background(), fileEntry("/x/main.go")))
	assert.Equal(t, "Python", p.PrimaryLanguage(context.Background(), fileEntry("/x/tool.py")))
	assert.Equal(t, Unknown, p.PrimaryLanguage(context.Background(), fileEntry("/x/data.unknownext")))
	assert.Equal(t, Unknown, p.PrimaryLanguage(context.Background(), files.Entry{Path: "/x/src", Name: "src/", IsDir: true}))
	assert.Equal(t, 0, runner.callCount())
}

func TestNew_InvalidLanguageConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language.Detector = "magic"
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidDetector)

	cfg = DefaultConfig()
	cfg.Language.Command = `enry "unterminated`
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_NegativeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SummaryLimit = -3
	p := newTestProvider(t, cfg, WithRunner(gitOutput(nil)))
	assert.Equal(t, 0, p.Config().SummaryLimit)
}

func TestExclude(t *testing.T) {
	dir, filePath := initRepoWithCommit(t, "init")
	lockPath := filepath.Join(dir, "go.lock")
	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))

	runner := gitOutput(map[string]string{"%an": "Jane Doe\n"})
	cfg := DefaultConfig()
	cfg.Exclude = []string{"*.lock", "[invalid"}
	p := newTestProvider(t, cfg, WithRunner(runner))

	r := p.LastAuthorResult(context.Background(), fileEntry(lockPath))
	assert.ErrorIs(t, r.Err, ErrExcluded)
	assert.Equal(t, Unknown, p.PrimaryLanguage(context.Background(), fileEntry(lockPath)))
	assert.Equal(t, 0, runner.callCount())

	assert.Equal(t, "Jane Doe", p.LastAuthor(context.Background(), fileEntry(filePath)))
}

func TestCache(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := gitOutput(map[string]string{"%an": "Jane Doe\n"})

	t.Run("disabled_by_default", func(t *testing.T) {
		p := newTestProvider(t, DefaultConfig(), WithRunner(runner))
		before := runner.callCount()
		p.LastAuthor(context.Background(), fileEntry(filePath))
		p.LastAuthor(context.Background(), fileEntry(filePath))
		assert.Equal(t, before+2, runner.callCount())
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CacheTTL = time.Minute
		p := newTestProvider(t, cfg, WithRunner(runner))
		before := runner.callCount()
		assert.Equal(t, "Jane Doe", p.LastAuthor(context.Background(), fileEntry(filePath)))
		assert.Equal(t, "Jane Doe", p.LastAuthor(context.Background(), fileEntry(filePath)))
		assert.Equal(t, before+1, runner.callCount())
	})

	t.Run("canceled_results_are_not_cached", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CacheTTL = time.Minute
		p := newTestProvider(t, cfg, WithRunner(runner))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		before := runner.callCount()
		p.LastAuthor(ctx, fileEntry(filePath))
		p.LastAuthor(context.Background(), fileEntry(filePath))
		assert.Equal(t, before+2, runner.callCount())
	})
}

func TestLookup(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := gitOutput(map[string]string{"%s": "subject\n", "%an": "Jane\n", "%cr": "now\n"})
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner), WithLanguageDetector(LexerDetector{}))

	want := map[Query]string{
		QuerySummary:  "subject",
		QueryLanguage: "Go",
		QueryModified: "now",
		QueryAuthor:   "Jane",
	}
	for _, q := range Queries() {
		r, err := p.Lookup(context.Background(), q, fileEntry(filePath))
		require.NoError(t, err)
		assert.Equal(t, want[q], r.Text, string(q))
	}
	_, err := p.Lookup(context.Background(), Query("size"), fileEntry(filePath))
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(" Author ")
	require.NoError(t, err)
	assert.Equal(t, QueryAuthor, q)

	_, err = ParseQuery("size")
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

// blockingRunner holds its first call until that caller's context ends and
// answers every later call at once.
type blockingRunner struct {
	started chan struct{}
	calls   atomic.Int32
}

func (b *blockingRunner) Run(ctx context.Context, _ string, _ ...string) procbridge.Result {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-ctx.Done()
		return procbridge.Result{Outcome: procbridge.TimedOut, Err: errors.Join(procbridge.ErrTimeout, ctx.Err())}
	}
	return procbridge.Result{Stdout: "Jane Doe\n", Outcome: procbridge.OK}
}

func TestQuery_CanceledCallerDoesNotDegradeWaiters(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := &blockingRunner{started: make(chan struct{})}
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))
	e := fileEntry(filePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	canceled := make(chan string, 1)
	go func() { canceled <- p.LastAuthor(ctx, e) }()
	<-runner.started

	live := make(chan string, 1)
	go func() { live <- p.LastAuthor(context.Background(), e) }()
	// give the second caller time to join the running lookup
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.Equal(t, "", <-canceled)
	assert.Equal(t, "Jane Doe", <-live)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestQuery_CallerContextEndsWhileWaiting(t *testing.T) {
	_, filePath := initRepoWithCommit(t, "init")
	runner := &blockingRunner{started: make(chan struct{})}
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))
	e := fileEntry(filePath)

	leader, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()
	go p.LastAuthorResult(leader, e)
	<-runner.started

	waiter, cancelWaiter := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelWaiter()
	r := p.LastAuthorResult(waiter, e)
	assert.Equal(t, "", r.Text)
	assert.ErrorIs(t, r.Err, procbridge.ErrTimeout)
	assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
}

func TestConcurrentQueries(t *testing.T) {
	dir, _ := initRepoWithCommit(t, "init")
	runner := gitOutput(map[string]string{"%an": "Jane Doe\n"})
	p := newTestProvider(t, DefaultConfig(), WithRunner(runner))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := filepath.Join(dir, "f"+string(rune('a'+i%26))+".txt")
			assert.Equal(t, "Jane Doe", p.LastAuthor(context.Background(), fileEntry(name)))
		}(i)
	}
	wg.Wait()
}

func TestWithRealGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
	_, filePath := initRepoWithCommit(t, "Fix off-by-one error in parser")

	cfg := DefaultConfig()
	cfg.SummaryLimit = 10
	cfg.Language.Detector = DetectorLexer
	p := newTestProvider(t, cfg)

	e := fileEntry(filePath)
	assert.Equal(t, "Fix off-by..", p.CommitSummary(context.Background(), e))
	assert.Equal(t, "Jane Doe", p.LastAuthor(context.Background(), e))
	assert.Equal(t, "3 days ago", p.LastModifiedRelative(context.Background(), e))
	assert.Equal(t, "Go", p.PrimaryLanguage(context.Background(), e))
}
