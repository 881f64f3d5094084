package lock

import "strings"

// Namespace identifies which deployment scope a lockfile entry belongs to,
// letting one lockfile track multiple destinations without key collisions.
type Namespace string

const (
	NamespaceProject Namespace = "project"
	NamespaceHome    Namespace = "home"
)

// ParseNamespace parses the literal namespace token.
func ParseNamespace(s string) (Namespace, bool) {
	switch Namespace(s) {
	case NamespaceProject, NamespaceHome:
		return Namespace(s), true
	default:
		return "", false
	}
}

// Key builds a namespaced lockfile key from a namespace and a relative path.
//
// A path beginning with "~" is always namespaced "home:" regardless of the
// requested namespace. A Home-namespace path that doesn't already start with
// "~" gets "~/" prepended.
func Key(ns Namespace, path string) string {
	if strings.HasPrefix(path, "~") {
		return "home:" + path
	}
	if ns == NamespaceHome {
		return "home:~/" + path
	}
	return string(ns) + ":" + path
}

// ParseKey splits a lockfile key back into its namespace and path.
func ParseKey(key string) (ns Namespace, path string, ok bool) {
	if p, found := strings.CutPrefix(key, "project:"); found {
		return NamespaceProject, p, true
	}
	if p, found := strings.CutPrefix(key, "home:"); found {
		return NamespaceHome, p, true
	}
	return "", "", false
}
