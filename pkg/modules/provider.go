package modules

import (
	"github.com/rexplorer/rexp/pkg/provider"
)

const (
	NameCommitSummary   = "CommitSummary"
	NamePrimaryLanguage = "PrimaryLanguage"
	NameLastModified    = "LastModified"
	NameLastAuthor      = "LastAuthor"
)

// ProviderNames lists the modules RegisterProvider adds.
func ProviderNames() []string {
	return []string{NameCommitSummary, NamePrimaryLanguage, NameLastModified, NameLastAuthor}
}

// RegisterProvider exposes the version-control facts of p as display modules.
func RegisterProvider(r *Registry, p *provider.Provider) {
	r.Register(NameCommitSummary, p.CommitSummary)
	r.Register(NamePrimaryLanguage, p.PrimaryLanguage)
	r.Register(NameLastModified, p.LastModifiedRelative)
	r.Register(NameLastAuthor, p.LastAuthor)
}

// IsProviderModule reports whether name is backed by an external process and
// may be slow to evaluate.
func IsProviderModule(name string) bool {
	switch name {
	case NameCommitSummary, NamePrimaryLanguage, NameLastModified, NameLastAuthor:
		return true
	default:
		return false
	}
}
