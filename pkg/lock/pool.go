package lock

import "strings"

// Repository is one package index a project may pull from.
type Repository struct {
	Name             string // source name from pyproject.toml
	URL              string // plain index URL
	AuthenticatedURL string // URL with embedded credentials, same as URL when none
}

// Pool is the ordered collection of repositories configured for a project.
// When the pool has a default repository it is the first element; the
// default is rendered as the primary index rather than an extra index.
type Pool struct {
	repos      []Repository
	hasDefault bool
}

// NewPool creates a pool over the given repositories. When hasDefault is
// true the first repository is the default source.
func NewPool(repos []Repository, hasDefault bool) *Pool {
	return &Pool{repos: repos, hasDefault: hasDefault}
}

// Repositories returns the ordered repository list.
func (p *Pool) Repositories() []Repository { return p.repos }

// HasDefault reports whether the pool designates a default repository.
func (p *Pool) HasDefault() bool { return p.hasDefault }

// Default returns the default repository when the pool has one.
func (p *Pool) Default() (Repository, bool) {
	if !p.hasDefault || len(p.repos) == 0 {
		return Repository{}, false
	}
	return p.repos[0], true
}

// Match finds the repository whose URL equals the given index URL, with any
// trailing slash on the index URL stripped before comparing.
func (p *Pool) Match(indexURL string) (Repository, bool) {
	trimmed := strings.TrimRight(indexURL, "/")
	for _, r := range p.repos {
		if r.URL == trimmed {
			return r, true
		}
	}
	return Repository{}, false
}

// IsDefault reports whether r is the pool's default repository.
func (p *Pool) IsDefault(r Repository) bool {
	d, ok := p.Default()
	return ok && d.URL == r.URL
}
