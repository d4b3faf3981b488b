package modules

import (
	"strings"

	"github.com/rexplorer/rexp/pkg/files"
)

const (
	dirIcon   = "\U000F024B"
	fileIcon  = "\U000F0219"
	cmakeIcon = "\uE615"
)

// icons maps a lower-cased extension, or a whole lower-cased name without a
// dot, to a nerd-font glyph.
var icons = map[string]string{
	// programming
	"rs":         "\U000F1617",
	"c":          "\uE61E",
	"cpp":        "\uE61D",
	"cc":         "\uE61D",
	"cxx":        "\uE61D",
	"py":         "\uE606",
	"java":       "\uE738",
	"class":      "\uE738",
	"js":         "\uE60C",
	"jsx":        "\uE60C",
	"json":       "\uE60B",
	"html":       "\uE60E",
	"css":        "\uE614",
	"go":         "\uE627",
	"php":        "\uE608",
	"rb":         "\uE791",
	"swift":      "\uE755",
	"ts":         "\uE628",
	"tsx":        "\uE628",
	"sh":         "\uE795",
	"bash":       "\uE795",
	"lua":        "\uE620",
	"r":          "\uEDC1",
	"dart":       "\uE798",
	"kotlin":     "\uE634",
	"kt":         "\uE634",
	"scala":      "\uE737",
	"elixir":     "\uE62D",
	"ex":         "\uE62D",
	"exs":        "\uE62D",
	"hs":         "\uE61F",
	"clj":        "\uE768",
	"cljs":       "\uE768",
	"cljc":       "\uE768",
	"edn":        "\uE768",
	"cljr":       "\uE768",
	"erl":        "\uE7B1",
	"ml":         "\uE67A",
	"mli":        "\uE67A",
	"sql":        "\uE706",
	"m":          "\uE82A",
	"cs":         "\uE7B2",
	"pl":         "\uE769",
	"asm":        "\uE6AB",
	"s":          "\uE6AB",
	"ps1":        "\uE86C",
	"groovy":     "\uE775",
	"jl":         "\uE624",
	"fs":         "\uE7A7",
	"fsx":        "\uE7A7",
	"fsi":        "\uE7A7",
	"lisp":       "\uE6B0",
	"lsp":        "\uE6B0",
	"f":          "\U000F121A",
	"for":        "\U000F121A",
	"f90":        "\U000F121A",
	"ada":        "\uE6B5",

	// config
	"yaml":       "\uE615",
	"yml":        "\uE615",
	"ini":        "\uE615",
	"config":     "\uE615",
	"babelrc":    "\uE615",
	"toml":       "\uE6B2",
	"lock":       "\uF023",
	"xml":        "\uE60E",
	"env":        "\U000F048B",
	"dockerfile": "\U000F0868",
	"makefile":   "\uE673",

	// media
	"mp3":        "\uE638",
	"wav":        "\uE638",
	"flac":       "\uE638",
	"mp4":        "\uF52C",
	"mkv":        "\uF52C",
	"avi":        "\uF52C",
	"jpg":        "\uE60D",
	"jpeg":       "\uE60D",
	"png":        "\uE60D",
	"gif":        "\uE60D",
	"svg":        "\uE60D",

	// documents
	"txt":        "\uE612",
	"md":         "\uE609",
	"pdf":        "\uEAEB",
	"doc":        "\uE6A5",
	"docx":       "\uE6A5",

	// archives
	"zip":        "\uF1C6",
	"rar":        "\uF1C6",
	"7z":         "\uF1C6",
	"tar":        "\uF1C6",
	"gz":         "\uF1C6",

	// git
	"git":        "\uE725",
	"github":     "\uE709",
	"gitignore":  "\uE702",
}

// FileIcon picks a nerd-font glyph for a display name. Directory names end in
// "/" and fall back to a folder glyph.
func FileIcon(name string) string {
	ext := files.Entry{Name: name}.Ext()
	if ext == "txt" && strings.EqualFold(name, "CMakeLists.txt") {
		return cmakeIcon
	}
	if icon, ok := icons[ext]; ok {
		return icon
	}
	if strings.HasSuffix(name, "/") {
		return dirIcon
	}
	return fileIcon
}
