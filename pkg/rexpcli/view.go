package rexpcli

import (
	"context"

	"github.com/rexplorer/rexp/pkg/view"
	"github.com/rivo/tview"
)

var newApplication = tview.NewApplication

type application interface{ Run() error }

// runApp is swapped in tests so no terminal is needed.
var runApp = func(app application) error {
	return app.Run()
}

func (s *session) runView(ctx context.Context, dir string) error {
	tapp := newApplication()
	app := view.NewApp(tapp)
	ex := view.New(app, s.registry,
		view.WithLogger(s.logger.WithPrefix("view")),
		view.WithParallelism(s.cfg.Parallelism),
	)
	defer ex.Close()
	if err := ex.Load(ctx, dir); err != nil {
		return err
	}
	ex.Attach()
	return runApp(app)
}
