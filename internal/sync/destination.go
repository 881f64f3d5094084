package sync

import (
	"strings"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/fs"
	"github.com/calvin-dev/calvin/internal/lock"
)

// DestKind identifies where a deploy lands.
type DestKind string

const (
	DestProject DestKind = "project"
	DestHome    DestKind = "home"
	DestRemote  DestKind = "remote"
)

// Destination binds a deploy to its filesystem ports and lockfile. Port is
// the primary root (project tree, home tree, or remote base); HomePort
// handles user-scope outputs when it differs from the primary — a
// project-scope deploy still routes scope=user assets to the local home
// tree.
type Destination struct {
	Kind         DestKind
	Port         fs.Port
	HomePort     fs.Port // nil means user-scope outputs use Port
	LockfilePath string  // always a local path, also for remote deploys
}

// PortFor routes an output scope to the right filesystem port.
func (d *Destination) PortFor(scope asset.Scope) fs.Port {
	if scope == asset.ScopeUser && d.HomePort != nil {
		return d.HomePort
	}
	return d.Port
}

// NamespaceFor picks the lockfile namespace for an output scope.
func (d *Destination) NamespaceFor(scope asset.Scope) lock.Namespace {
	if d.Kind == DestHome || scope == asset.ScopeUser {
		return lock.NamespaceHome
	}
	return lock.NamespaceProject
}

// PortForNamespace is the inverse routing used for orphans, whose scope is
// only recorded via their key's namespace.
func (d *Destination) PortForNamespace(ns lock.Namespace) fs.Port {
	if ns == lock.NamespaceHome && d.Kind != DestHome && d.HomePort != nil {
		return d.HomePort
	}
	return d.Port
}

// DiskPath strips the display-only "~/" prefix a home-namespaced key
// carries, yielding the path relative to the port's root.
func DiskPath(keyPath string) string {
	return strings.TrimPrefix(keyPath, "~/")
}
