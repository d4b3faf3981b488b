// Package view shows a listing in a terminal table.
package view

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/listing"
	"github.com/rexplorer/rexp/pkg/modules"
	"github.com/rexplorer/rexp/pkg/theme"
	"github.com/rivo/tview"
)

// Explorer renders one directory at a time. Columns backed by external
// processes start empty and are filled in by a worker pool.
type Explorer struct {
	app         App
	reg         *modules.Registry
	pool        *listing.Pool
	logger      *log.Logger
	parallelism int
	async       func(name string) bool

	root   *tview.Flex
	header *tview.TextView
	table  *tview.Table

	mu      sync.Mutex
	listing *listing.Listing
	gen     uint64
	cancel  context.CancelFunc
}

type Option func(*Explorer)

func WithLogger(logger *log.Logger) Option {
	return func(e *Explorer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithParallelism bounds how many rows are evaluated at once and sizes the
// worker pool.
func WithParallelism(n int) Option {
	return func(e *Explorer) { e.parallelism = n }
}

// WithAsync decides which columns are evaluated in the background.
func WithAsync(async func(name string) bool) Option {
	return func(e *Explorer) { e.async = async }
}

func New(app App, reg *modules.Registry, opts ...Option) *Explorer {
	e := &Explorer{
		app:    app,
		reg:    reg,
		logger: log.New(io.Discard),
		async:  modules.IsProviderModule,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pool = listing.NewPool(e.parallelism)

	e.header = tview.NewTextView()
	e.table = tview.NewTable()
	e.table.SetSelectable(true, false)
	e.table.SetSelectedFunc(func(row, _ int) {
		e.open(row)
	})
	e.table.SetInputCapture(e.inputCapture)

	e.root = tview.NewFlex().SetDirection(tview.FlexRow)
	e.root.AddItem(e.header, 1, 0, false)
	e.root.AddItem(e.table, 0, 1, true)
	e.applyTheme(reg.Theme())
	return e
}

func (e *Explorer) Root() tview.Primitive {
	return e.root
}

// Attach makes the explorer the application's full-screen root with the
// table focused.
func (e *Explorer) Attach() {
	e.app.SetRoot(e.root, true)
	e.app.SetFocus(e.table)
}

// Close stops background evaluation.
func (e *Explorer) Close() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()
	e.pool.Close()
}

func (e *Explorer) applyTheme(th theme.Theme) {
	bg := th.BG.TCell()
	e.header.SetBackgroundColor(bg)
	e.header.SetTextColor(th.Highlight.TCell())
	e.table.SetBackgroundColor(bg)
	e.table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(th.Selected.FG.TCell()).
		Background(th.Selected.BG.TCell()))
	e.root.SetBackgroundColor(bg)
}

// Load replaces the table with dir. Background columns of a previous
// directory are abandoned.
func (e *Explorer) Load(ctx context.Context, dir string) error {
	entries, err := files.ReadDir(ctx, dir)
	if err != nil {
		return err
	}

	columns := e.reg.Active()
	immediate := make([]modules.Column, len(columns))
	var background []int
	for i, c := range columns {
		if e.async(c.Name) {
			background = append(background, i)
			immediate[i] = modules.Column{Name: c.Name, Module: modules.Spacer(0)}
			continue
		}
		immediate[i] = c
	}
	l, err := listing.Compute(ctx, entries, immediate, e.parallelism)
	if err != nil {
		return err
	}
	l.Dir = dir
	l.Columns = columns

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	bgCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.gen++
	gen := e.gen
	e.listing = l
	e.render(0)
	e.mu.Unlock()

	if len(background) > 0 {
		go e.fill(bgCtx, gen, l, background)
	}
	return nil
}

func (e *Explorer) fill(ctx context.Context, gen uint64, l *listing.Listing, background []int) {
	columns := make([]modules.Column, len(background))
	for i, idx := range background {
		columns[i] = l.Columns[idx]
	}
	for i, entry := range l.Entries {
		if entry.IsParent() {
			continue
		}
		req := listing.Request{
			Ctx:     ctx,
			Index:   i,
			Entry:   entry,
			Columns: columns,
			Callback: func(index int, cells []string) {
				// a stopped application no longer drains its update queue
				go e.app.QueueUpdateDraw(func() {
					e.setCells(gen, index, background, cells)
				})
			},
		}
		if !e.pool.SubmitWait(ctx, req) {
			return
		}
	}
}

func (e *Explorer) setCells(gen uint64, row int, background []int, cells []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	for i, idx := range background {
		e.listing.Rows[row][idx] = cells[i]
	}
	e.listing.UpdateWidths()
	selected, _ := e.table.GetSelection()
	e.render(selected)
}

// render must be called with mu held.
func (e *Explorer) render(selected int) {
	l := e.listing
	th := e.reg.Theme()
	e.header.SetText(l.Dir)
	e.table.Clear()
	for i, line := range l.Lines() {
		color := th.FG
		if l.Entries[i].IsDir {
			color = th.Highlight
		}
		cell := tview.NewTableCell(line).
			SetTextColor(color.TCell()).
			SetBackgroundColor(th.BG.TCell()).
			SetExpansion(1)
		e.table.SetCell(i, 0, cell)
	}
	if selected >= len(l.Rows) {
		selected = 0
	}
	e.table.Select(selected, 0)
}

// Lines returns the rendered rows.
func (e *Explorer) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listing == nil {
		return nil
	}
	return e.listing.Lines()
}

// Dir is the directory on screen.
func (e *Explorer) Dir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listing == nil {
		return ""
	}
	return e.listing.Dir
}

func (e *Explorer) open(row int) {
	e.mu.Lock()
	if e.listing == nil || row < 0 || row >= len(e.listing.Entries) {
		e.mu.Unlock()
		return
	}
	entry := e.listing.Entries[row]
	e.mu.Unlock()
	if !entry.IsDir {
		return
	}
	if err := e.Load(context.Background(), entry.Path); err != nil {
		e.logger.Error("failed to open directory", "path", entry.Path, "err", err)
	}
}

func (e *Explorer) inputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRune:
		if event.Rune() == 'q' {
			e.app.Stop()
			return nil
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.open(0)
		return nil
	}
	return event
}
