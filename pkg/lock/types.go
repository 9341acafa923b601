// Package lock models a resolved dependency set: the pairing of declared
// requirements with the concrete packages a resolver chose for them, plus
// the pool of package indexes the project pulls from.
//
// The types here are read-only inputs to the exporter. [Locker] provides
// the file-backed implementation of [Resolver], reading poetry.lock and
// pyproject.toml from a project directory.
package lock

import "strings"

// FileRecord pairs a distributable filename with its integrity hash as
// recorded by the resolver. The hash is either "algorithm:digest" or a bare
// digest, in which case the algorithm is understood to be sha256.
type FileRecord struct {
	File string `toml:"file" json:"file"`
	Hash string `toml:"hash" json:"hash"`
}

// Package is the concrete resolution of a dependency: the exact version
// pinned by the lockfile together with where it came from.
type Package struct {
	Name            string       // package name as locked
	Version         string       // exact pinned version
	Develop         bool         // editable install (pip -e)
	SourceType      string       // "", "legacy", "git", "url", "file" or "directory"
	SourceURL       string       // index or location URL, empty for the default index
	SourceReference string       // VCS reference (branch, tag, or revision)
	Files           []FileRecord // distributable files with integrity hashes
}

// Dependency is the abstract requirement as declared by the project.
type Dependency struct {
	Name        string // normalized package name
	Requirement string // canonical PEP 508 requirement string
	Marker      string // environment-marker expression, empty when unconditional

	// Direct-reference predicates: how the requirement was declared.
	VCS       bool // version-control location (git)
	URL       bool // direct download URL
	File      bool // local file path
	Directory bool // local directory path
}

// IsDirectReference reports whether the dependency was declared against a
// concrete location (VCS checkout, URL, local file or directory) rather
// than as a named package resolved from an index. Direct references bypass
// name==version pinning: their requirement string already captures the
// download location.
func (d Dependency) IsDirectReference() bool {
	return d.VCS || d.URL || d.File || d.Directory
}

// ResolvedEntry pairs a declared dependency with its concrete resolution.
// The package is guaranteed by the upstream resolver to satisfy the
// dependency's constraints; the exporter does not re-validate it.
type ResolvedEntry struct {
	Dependency Dependency
	Package    Package
}

// Scope selects which part of the resolved graph an export covers.
type Scope struct {
	Dev    bool   // include dev-category packages
	Extras Extras // which optional packages to include
}

// Resolver yields the ordered resolved entries for a scope.
type Resolver interface {
	Resolve(scope Scope) ([]ResolvedEntry, error)
}

// Extras selects optional packages: none, all, or a named subset.
type Extras struct {
	all   bool
	names []string
}

// NoExtras selects no optional packages.
func NoExtras() Extras { return Extras{} }

// AllExtras selects every optional package.
func AllExtras() Extras { return Extras{all: true} }

// SomeExtras selects the optional packages belonging to the named extras.
func SomeExtras(names ...string) Extras { return Extras{names: names} }

// All reports whether every optional package is selected.
func (e Extras) All() bool { return e.all }

// Includes reports whether the named extra is selected.
func (e Extras) Includes(name string) bool {
	if e.all {
		return true
	}
	for _, n := range e.names {
		if NormalizeName(n) == NormalizeName(name) {
			return true
		}
	}
	return false
}

// NormalizeName canonicalizes a package or extra name per PEP 503:
// lowercase, with runs of ".", "-" and "_" collapsed to a single dash.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '.' || r == '-' || r == '_' {
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
			continue
		}
		prevDash = false
		b.WriteRune(r)
	}
	return b.String()
}
