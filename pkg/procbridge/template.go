package procbridge

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

var ErrEmptyCommand = errors.New("empty command")

// SplitCommand breaks a command line into words using POSIX shell quoting
// rules. No shell is started: command substitution is rejected and the words
// are meant to be handed to Runner.Run as an argument vector.
func SplitCommand(command string) ([]string, error) {
	words, err := shell.Fields(command, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to split command %q: %w", command, err)
	}
	return words, nil
}

// Template is a command line with {name} placeholders, split into words once
// so that substituted values always stay inside a single argument.
type Template struct {
	source string
	words  []string
}

func ParseTemplate(command string) (Template, error) {
	words, err := SplitCommand(command)
	if err != nil {
		return Template{}, err
	}
	if len(words) == 0 {
		return Template{}, fmt.Errorf("%w: %q", ErrEmptyCommand, command)
	}
	return Template{source: command, words: words}, nil
}

func (t Template) String() string {
	return t.source
}

// Expand substitutes {key} placeholders in every word. A value containing
// spaces or quotes is never re-split.
func (t Template) Expand(vars map[string]string) (name string, args []string) {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	expanded := make([]string, len(t.words))
	for i, w := range t.words {
		expanded[i] = r.Replace(w)
	}
	return expanded[0], expanded[1:]
}
