// Package listing turns a directory into rows of display-module cells.
package listing

import (
	"context"
	"runtime"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/modules"
	"golang.org/x/sync/errgroup"
)

// Listing holds one evaluated directory. Rows[i] belongs to Entries[i] and
// has one cell per column.
type Listing struct {
	Dir     string
	Columns []modules.Column
	Entries []files.Entry
	Rows    [][]string
	Widths  []int
}

// Load reads dir and evaluates the registry's active columns for every entry.
func Load(ctx context.Context, dir string, reg *modules.Registry, parallelism int) (*Listing, error) {
	entries, err := files.ReadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	l, err := Compute(ctx, entries, reg.Active(), parallelism)
	if err != nil {
		return nil, err
	}
	l.Dir = dir
	return l, nil
}

// Compute evaluates every column for every entry, at most parallelism rows at
// a time. Parallelism below 1 means one row per CPU.
func Compute(ctx context.Context, entries []files.Entry, columns []modules.Column, parallelism int) (*Listing, error) {
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	rows := make([][]string, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = EvaluateRow(gctx, e, columns)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	l := &Listing{
		Columns: columns,
		Entries: entries,
		Rows:    rows,
	}
	l.UpdateWidths()
	return l, nil
}

// EvaluateRow runs columns in order for e. Columns after ctx ends are left
// empty.
func EvaluateRow(ctx context.Context, e files.Entry, columns []modules.Column) []string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		if ctx.Err() != nil {
			break
		}
		cells[i] = c.Module(ctx, e)
	}
	return cells
}

// UpdateWidths recomputes the column widths. The parent row does not count.
func (l *Listing) UpdateWidths() {
	skip := 0
	if len(l.Entries) > 0 && l.Entries[0].IsParent() {
		skip = 1
	}
	if skip > len(l.Rows) {
		skip = len(l.Rows)
	}
	l.Widths = ColumnWidths(l.Rows[skip:], len(l.Columns))
}

// ColumnWidths returns the widest display width per column.
func ColumnWidths(rows [][]string, columns int) []int {
	widths := make([]int, columns)
	for _, cells := range rows {
		for i, cell := range cells {
			if i >= columns {
				break
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

// FormatRow left-aligns every cell to its column width. Columns are not
// separated; spacer modules do that.
func FormatRow(cells []string, widths []int) string {
	var sb strings.Builder
	for i, cell := range cells {
		if i < len(widths) {
			cell = runewidth.FillRight(cell, widths[i])
		}
		sb.WriteString(cell)
	}
	return sb.String()
}

// Lines formats every row of the listing.
func (l *Listing) Lines() []string {
	lines := make([]string, len(l.Rows))
	for i, cells := range l.Rows {
		lines[i] = FormatRow(cells, l.Widths)
	}
	return lines
}
