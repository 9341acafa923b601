package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lockport/pkg/errors"
)

// Locker reads a project's poetry.lock and pyproject.toml and yields the
// resolved entries recorded there. It implements [Resolver].
type Locker struct {
	dir string
}

// NewLocker creates a locker rooted at the given project directory.
func NewLocker(dir string) *Locker {
	return &Locker{dir: dir}
}

// lockFile mirrors the poetry.lock TOML layout.
type lockFile struct {
	Packages []lockPackage       `toml:"package"`
	Extras   map[string][]string `toml:"extras"`
}

type lockPackage struct {
	Name     string       `toml:"name"`
	Version  string       `toml:"version"`
	Category string       `toml:"category"`
	Optional bool         `toml:"optional"`
	Develop  bool         `toml:"develop"`
	Marker   string       `toml:"marker"`
	Source   *lockSource  `toml:"source"`
	Files    []FileRecord `toml:"files"`
}

type lockSource struct {
	Type      string `toml:"type"`
	URL       string `toml:"url"`
	Reference string `toml:"reference"`
}

// Resolve reads poetry.lock and returns the entries selected by scope, in
// lockfile order. Dev-category packages are skipped unless scope.Dev is
// set; optional packages are skipped unless one of their extras is
// selected.
func (l *Locker) Resolve(scope Scope) ([]ResolvedEntry, error) {
	path := filepath.Join(l.dir, "poetry.lock")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no lockfile at %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to read %s", path)
	}

	var lock lockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse %s", path)
	}

	membership := extrasMembership(lock.Extras)

	var entries []ResolvedEntry
	for _, pkg := range lock.Packages {
		// Names flow verbatim into requirements lines; reject anything
		// that could inject content or escape a path.
		if err := errors.ValidatePackageName(pkg.Name); err != nil {
			return nil, err
		}
		if pkg.Category == "dev" && !scope.Dev {
			continue
		}
		if pkg.Optional && !selected(membership[NormalizeName(pkg.Name)], scope.Extras) {
			continue
		}
		entries = append(entries, entry(pkg))
	}
	return entries, nil
}

// extrasMembership inverts the lockfile's extras table into a map from
// normalized package name to the extras it belongs to. Requirement strings
// in the table carry constraints ("bar (>=1.0)") which are stripped.
func extrasMembership(extras map[string][]string) map[string][]string {
	membership := make(map[string][]string)
	for extra, requirements := range extras {
		for _, req := range requirements {
			name := requirementName(req)
			if name == "" {
				continue
			}
			membership[name] = append(membership[name], extra)
		}
	}
	return membership
}

// requirementName extracts the normalized package name from a requirement
// string such as "bar (>=1.0)" or "baz[extra]>=2; python_version >= '3.8'".
func requirementName(req string) string {
	name := strings.TrimSpace(req)
	if idx := strings.IndexAny(name, " ([<>=!~;"); idx >= 0 {
		name = name[:idx]
	}
	return NormalizeName(name)
}

func selected(extras []string, selection Extras) bool {
	if selection.All() {
		return true
	}
	for _, e := range extras {
		if selection.Includes(e) {
			return true
		}
	}
	return false
}

// entry converts one lockfile package into the dependency/package pair the
// exporter consumes.
func entry(pkg lockPackage) ResolvedEntry {
	p := Package{
		Name:    NormalizeName(pkg.Name),
		Version: pkg.Version,
		Develop: pkg.Develop,
		Files:   pkg.Files,
	}
	if pkg.Source != nil {
		p.SourceType = pkg.Source.Type
		p.SourceURL = pkg.Source.URL
		p.SourceReference = pkg.Source.Reference
	}

	d := Dependency{
		Name:   p.Name,
		Marker: pkg.Marker,
	}
	switch p.SourceType {
	case "git":
		d.VCS = true
	case "url":
		d.URL = true
	case "file":
		d.File = true
	case "directory":
		d.Directory = true
	}
	d.Requirement = requirementString(d, p)

	return ResolvedEntry{Dependency: d, Package: p}
}

// requirementString renders the canonical PEP 508 form of the dependency.
// Direct references pin the download location; registry packages pin
// name==version. The marker, when present, follows after ";".
func requirementString(d Dependency, p Package) string {
	var req string
	switch {
	case d.VCS:
		ref := p.SourceURL
		if !strings.HasPrefix(ref, "git+") {
			ref = "git+" + ref
		}
		if p.SourceReference != "" {
			ref += "@" + p.SourceReference
		}
		req = fmt.Sprintf("%s @ %s", p.Name, ref)
	case d.URL:
		req = fmt.Sprintf("%s @ %s", p.Name, p.SourceURL)
	case d.File, d.Directory:
		loc := p.SourceURL
		if !strings.Contains(loc, "://") {
			loc = "file://" + loc
		}
		req = fmt.Sprintf("%s @ %s", p.Name, loc)
	default:
		req = fmt.Sprintf("%s==%s", p.Name, p.Version)
	}
	if d.Marker != "" {
		req += " ; " + d.Marker
	}
	return req
}

// Pool builds the repository pool from pyproject.toml's
// [[tool.poetry.source]] entries. A missing pyproject.toml yields an empty
// pool. A source flagged default moves to the front of the pool.
func (l *Locker) Pool() (*Pool, error) {
	var pyproject struct {
		Tool struct {
			Poetry struct {
				Name   string `toml:"name"`
				Source []struct {
					Name    string `toml:"name"`
					URL     string `toml:"url"`
					Default bool   `toml:"default"`
				} `toml:"source"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}

	path := filepath.Join(l.dir, "pyproject.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewPool(nil, false), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to read %s", path)
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse %s", path)
	}

	var repos []Repository
	hasDefault := false
	for _, src := range pyproject.Tool.Poetry.Source {
		repo := Repository{
			Name:             src.Name,
			URL:              strings.TrimRight(src.URL, "/"),
			AuthenticatedURL: authenticatedURL(src.Name, strings.TrimRight(src.URL, "/")),
		}
		if src.Default && !hasDefault {
			repos = append([]Repository{repo}, repos...)
			hasDefault = true
			continue
		}
		repos = append(repos, repo)
	}
	return NewPool(repos, hasDefault), nil
}

// ProjectName returns the project name from pyproject.toml, or "" when it
// cannot be determined.
func (l *Locker) ProjectName() string {
	data, err := os.ReadFile(filepath.Join(l.dir, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var pyproject struct {
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return ""
	}
	if pyproject.Tool.Poetry.Name != "" {
		return pyproject.Tool.Poetry.Name
	}
	return pyproject.Project.Name
}

// authenticatedURL embeds basic-auth credentials from the environment into
// the index URL. Credentials are looked up as
// LOCKPORT_HTTP_BASIC_<NAME>_USERNAME / _PASSWORD with the source name
// uppercased and dashes mapped to underscores.
func authenticatedURL(name, url string) string {
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	user := os.Getenv("LOCKPORT_HTTP_BASIC_" + key + "_USERNAME")
	pass := os.Getenv("LOCKPORT_HTTP_BASIC_" + key + "_PASSWORD")
	if user == "" {
		return url
	}
	scheme, rest, found := strings.Cut(url, "://")
	if !found {
		return url
	}
	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	return scheme + "://" + cred + "@" + rest
}
