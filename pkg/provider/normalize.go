package provider

import (
	"strings"

	"github.com/rivo/uniseg"
	"github.com/tidwall/gjson"
)

// Ellipsis marks text cut by Truncate.
const Ellipsis = ".."

var lineTerminators = strings.NewReplacer("\r", "", "\n", "")

// StripLineTerminators removes every CR and LF, so multi-line tool output can
// sit in a single listing cell.
func StripLineTerminators(s string) string {
	return lineTerminators.Replace(s)
}

// Truncate returns s unchanged when it has at most limit characters, and
// otherwise its first limit characters followed by Ellipsis. Characters are
// grapheme clusters, so accents and emoji are never split.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if uniseg.GraphemeClusterCount(s) <= limit {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < limit && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString(Ellipsis)
	return b.String()
}

// ExtractField pulls a non-empty string field out of a JSON payload. path uses
// gjson syntax, so nested fields ("file.language") work too.
func ExtractField(payload, path string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrNoOutput
	}
	if !gjson.Valid(payload) {
		return "", ErrMalformedPayload
	}
	v := gjson.Get(payload, path)
	if !v.Exists() || v.Type != gjson.String {
		return "", ErrFieldMissing
	}
	s := strings.TrimSpace(StripLineTerminators(v.String()))
	if s == "" {
		return "", ErrFieldMissing
	}
	return s, nil
}
