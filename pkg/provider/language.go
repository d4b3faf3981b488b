package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/procbridge"
)

const (
	DetectorCommand = "command"
	DetectorLexer   = "lexer"

	DefaultLanguageCommand = "enry -json {path}"
	DefaultLanguageField   = "language"
)

// LanguageDetector finds the dominant language of an entry. A Result with an
// empty Text means nothing was detected.
type LanguageDetector interface {
	Detect(ctx context.Context, e files.Entry) Result
}

// LanguageConfig selects and configures the detector.
type LanguageConfig struct {
	Detector string
	Command  string
	Field    string
}

func newLanguageDetector(cfg LanguageConfig, runner procbridge.Runner) (LanguageDetector, error) {
	switch strings.ToLower(cfg.Detector) {
	case "", DetectorCommand:
		command := cfg.Command
		if command == "" {
			command = DefaultLanguageCommand
		}
		return NewCommandDetector(runner, command, cfg.Field)
	case DetectorLexer:
		return LexerDetector{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDetector, cfg.Detector)
	}
}

// CommandDetector runs an external tool that prints a JSON document and reads
// one string field out of it.
type CommandDetector struct {
	runner   procbridge.Runner
	template procbridge.Template
	field    string
}

// NewCommandDetector parses command once; {path} is replaced by the entry
// path as a single argument on every call.
func NewCommandDetector(runner procbridge.Runner, command, field string) (*CommandDetector, error) {
	tmpl, err := procbridge.ParseTemplate(command)
	if err != nil {
		return nil, err
	}
	if field == "" {
		field = DefaultLanguageField
	}
	return &CommandDetector{runner: runner, template: tmpl, field: field}, nil
}

func (d *CommandDetector) Detect(ctx context.Context, e files.Entry) Result {
	name, args := d.template.Expand(map[string]string{"path": e.Path})
	res := d.runner.Run(ctx, name, args...)
	lang, err := ExtractField(res.Stdout, d.field)
	if err != nil {
		if res.Err != nil {
			err = errors.Join(err, res.Err)
		}
		return Result{Err: err}
	}
	return Result{Text: lang}
}

// LexerDetector guesses the language from the file name using chroma's lexer
// registry. It spawns nothing, which makes it a cheap alternative when no
// detection tool is installed.
type LexerDetector struct{}

func (LexerDetector) Detect(_ context.Context, e files.Entry) Result {
	if e.IsDir {
		return Result{Err: ErrNoOutput}
	}
	lexer := lexers.Match(filepath.Base(e.Path))
	if lexer == nil {
		return Result{Err: ErrNoOutput}
	}
	return Result{Text: lexer.Config().Name}
}
