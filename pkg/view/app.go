package view

import (
	"github.com/rivo/tview"
)

// App is the part of *tview.Application the explorer drives. Tests swap the
// pieces they need through AppMethod options.
type App interface {
	Run() error
	QueueUpdateDraw(f func())
	SetFocus(p tview.Primitive)
	SetRoot(root tview.Primitive, fullscreen bool)
	Stop()
}

type (
	UpdateDrawQueuer func(f func())
	Focuser          func(p tview.Primitive)
	RootSetter       func(root tview.Primitive, fullscreen bool)
)

type AppMethod func(a *appProxy)

func NewApp(app *tview.Application, o ...AppMethod) App {
	a := &appProxy{}
	if app != nil {
		a.queueUpdateDraw = func(f func()) {
			app.QueueUpdateDraw(f)
		}
		a.setFocus = func(p tview.Primitive) {
			app.SetFocus(p)
		}
		a.setRoot = func(root tview.Primitive, fullscreen bool) {
			app.SetRoot(root, fullscreen)
		}
		a.run = app.Run
		a.stop = app.Stop
	}
	for _, m := range o {
		m(a)
	}
	return a
}

func WithQueueUpdateDraw(queueUpdateDraw UpdateDrawQueuer) AppMethod {
	return func(a *appProxy) {
		a.queueUpdateDraw = queueUpdateDraw
	}
}

func WithSetFocus(setFocus Focuser) AppMethod {
	return func(a *appProxy) {
		a.setFocus = setFocus
	}
}

func WithSetRoot(setRoot RootSetter) AppMethod {
	return func(a *appProxy) {
		a.setRoot = setRoot
	}
}

func WithRun(run func() error) AppMethod {
	return func(a *appProxy) {
		a.run = run
	}
}

func WithStop(stop func()) AppMethod {
	return func(a *appProxy) {
		a.stop = stop
	}
}

var _ App = (*appProxy)(nil)

type appProxy struct {
	queueUpdateDraw UpdateDrawQueuer
	setFocus        Focuser
	setRoot         RootSetter
	run             func() error
	stop            func()
}

// QueueUpdateDraw runs f directly when no application is attached.
func (a *appProxy) QueueUpdateDraw(f func()) {
	if a.queueUpdateDraw == nil {
		f()
		return
	}
	a.queueUpdateDraw(f)
}

func (a *appProxy) SetFocus(p tview.Primitive) {
	if a.setFocus != nil {
		a.setFocus(p)
	}
}

func (a *appProxy) SetRoot(root tview.Primitive, fullscreen bool) {
	if a.setRoot != nil {
		a.setRoot(root, fullscreen)
	}
}

func (a *appProxy) Run() error {
	if a.run == nil {
		return nil
	}
	return a.run()
}

func (a *appProxy) Stop() {
	if a.stop != nil {
		a.stop()
	}
}
