// Package all installs every built-in step into a registry.
package all

import (
	"tabula/internal/transform"
	"tabula/steps/external"
	"tabula/steps/fillempty"
	"tabula/steps/remote"
	"tabula/steps/rename"
	"tabula/steps/window"
)

// Deps carries the shared collaborators some steps need. The zero value is
// usable.
type Deps struct {
	Fetcher     external.Fetcher
	ExternalURL string
	RemoteDial  remote.Dialer
}

func Modules(d Deps) []transform.Module {
	return []transform.Module{
		rename.Module{},
		fillempty.Module{},
		external.Module{Fetcher: d.Fetcher, DefaultURL: d.ExternalURL},
		window.Module{},
		remote.Module{Dial: d.RemoteDial},
	}
}

func Register(r *transform.Registry, d Deps) error {
	return r.Install(Modules(d)...)
}
