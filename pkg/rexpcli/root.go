// Package rexpcli implements the rexp command line.
package rexpcli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rexplorer/rexp/pkg/config"
	"github.com/rexplorer/rexp/pkg/fsutils"
	"github.com/rexplorer/rexp/pkg/modules"
	"github.com/rexplorer/rexp/pkg/procbridge"
	"github.com/rexplorer/rexp/pkg/profiling"
	"github.com/rexplorer/rexp/pkg/provider"
	"github.com/rexplorer/rexp/pkg/theme"
	"github.com/spf13/cobra"
)

var (
	// Version is set via -ldflags.
	Version = "dev"
)

// session is what every command works with once the init file is loaded.
type session struct {
	cfgFile    string
	verbose    bool
	stats      bool
	cpuProfile string
	memProfile string
	profiles   []func()

	logger   *log.Logger
	cfg      *config.Config
	cfgPath  string
	theme    theme.Theme
	registry *modules.Registry
	provider *provider.Provider
	metrics  *prometheus.Registry
}

// NewRootCommand builds the rexp command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&session{})
}

func newRootCommand(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "rexp [dir]",
		Short:         "A terminal file explorer with version-control columns",
		Version:       Version,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			return s.runView(cmd.Context(), dir)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !s.stats || s.metrics == nil {
				return nil
			}
			return printStats(cmd.OutOrStdout(), s.metrics)
		},
	}
	root.PersistentFlags().StringVar(&s.cfgFile, "config", "", "init file (default is $XDG_CONFIG_HOME/rexp/init.toml)")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "log absorbed query failures")
	root.PersistentFlags().BoolVar(&s.stats, "stats", false, "print external command counters on exit")
	root.PersistentFlags().StringVar(&s.cpuProfile, "cpuprofile", "", "write a CPU profile to `file`")
	root.PersistentFlags().StringVar(&s.memProfile, "memprofile", "", "write a heap profile to `file`")
	_ = root.PersistentFlags().MarkHidden("cpuprofile")
	_ = root.PersistentFlags().MarkHidden("memprofile")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(
		newLsCommand(s),
		newQueryCommand(s),
		newThemesCommand(s),
		newInitCommand(s),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	s := &session{}
	defer s.stopProfiling()
	cmd := newRootCommand(s)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, newStyles(stderr, theme.MochaTheme()).Error.Render("Error:"), err)
		var usage *usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}

// usageError marks errors caused by bad arguments rather than by the system.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func (s *session) setup(stderr io.Writer) error {
	s.logger = log.NewWithOptions(stderr, log.Options{Prefix: "rexp"})
	if s.verbose {
		s.logger.SetLevel(log.DebugLevel)
	}
	s.startProfiling()

	cfg, path, err := config.Load(s.cfgFile)
	if err != nil {
		return err
	}
	s.cfg, s.cfgPath = cfg, path
	if path != "" {
		s.logger.Debug("loaded init file", "path", path)
	}

	if s.theme, err = cfg.ThemeValue(); err != nil {
		return err
	}
	pc, err := cfg.ProviderConfig()
	if err != nil {
		return err
	}

	s.metrics = prometheus.NewRegistry()
	runner := newRunner(
		procbridge.WithTimeout(pc.Timeout),
		procbridge.WithLogger(s.logger.WithPrefix("procbridge")),
		procbridge.WithRegisterer(s.metrics),
	)
	s.provider, err = provider.New(pc,
		provider.WithRunner(runner),
		provider.WithLogger(s.logger.WithPrefix("provider")),
	)
	if err != nil {
		return err
	}
	if !provider.SetDefault(s.provider) {
		s.logger.Debug("session provider already bound")
	}

	s.registry = modules.NewRegistry(cfg.NerdFonts)
	modules.RegisterProvider(s.registry, s.provider)
	s.registry.SetTheme(s.theme)
	if len(cfg.Modules) > 0 {
		if err := s.registry.SetDisplayModules(cfg.Modules...); err != nil {
			return fmt.Errorf("init file %s: %w", s.cfgPath, err)
		}
	} else {
		_ = s.registry.SetDisplayModules(modules.DefaultNames(cfg.NerdFonts)...)
	}
	return nil
}

func (s *session) startProfiling() {
	logger := s.logger.WithPrefix("profiling")
	if s.cpuProfile != "" {
		s.profiles = append(s.profiles, profiling.DoCPUProfiling(s.cpuProfile, logger))
	}
	if s.memProfile != "" {
		s.profiles = append(s.profiles, profiling.DoMemProfiling(s.memProfile, logger))
	}
}

func (s *session) stopProfiling() {
	for _, stop := range s.profiles {
		stop()
	}
	s.profiles = nil
}

var newRunner = func(opts ...procbridge.Option) procbridge.Runner {
	return procbridge.New(opts...)
}

var errNotDir = errors.New("not a directory")

// dirArg returns the directory named on the command line, "." by default.
func dirArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	ok, err := fsutils.DirExists(dir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &usageError{err: fmt.Errorf("%w: %s", errNotDir, dir)}
	}
	return dir, nil
}
