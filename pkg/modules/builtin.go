package modules

import (
	"context"
	"strings"
	"time"

	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/fsutils"
)

const (
	NameIcon         = "Icon"
	NameName         = "Name"
	NameCreationDate = "CreationDate"
	NameSize         = "Size"
	NameSmallSpacer  = "SmallSpacer"
	NameMediumSpacer = "MediumSpacer"
	NameLargeSpacer  = "LargeSpacer"
)

func builtins() map[string]Module {
	return map[string]Module{
		NameIcon:         Icon,
		NameName:         Name,
		NameCreationDate: CreationDate,
		NameSize:         Size,
		NameSmallSpacer:  Spacer(2),
		NameMediumSpacer: Spacer(4),
		NameLargeSpacer:  Spacer(8),
	}
}

func Icon(_ context.Context, e files.Entry) string {
	return FileIcon(e.Name)
}

func Name(_ context.Context, e files.Entry) string {
	return e.Name
}

// CreationDate renders the entry time in the ctime(3) layout.
func CreationDate(_ context.Context, e files.Entry) string {
	return e.Created.Format(time.ANSIC)
}

// Size is empty for directories.
func Size(_ context.Context, e files.Entry) string {
	if e.IsDir {
		return ""
	}
	return fsutils.FormatSize(e.Size)
}

func Spacer(width int) Module {
	s := strings.Repeat(" ", width)
	return func(context.Context, files.Entry) string {
		return s
	}
}
