package export

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/matzehuels/lockport/pkg/lock"
)

// requirementsTXT renders the entry set as a pip requirements file:
// an optional index-configuration header, then one requirement line per
// entry, deduplicated and sorted lexicographically, newline-terminated.
func requirementsTXT(entries []lock.ResolvedEntry, pool *lock.Pool, opts Options) string {
	lines := make(map[string]struct{})
	indexes := make(map[string]struct{})

	for _, entry := range entries {
		dep := entry.Dependency
		pkg := entry.Package

		line := ""
		if pkg.Develop {
			line += "-e "
		}

		if dep.IsDirectReference() {
			// The requirement string already pins the download location.
			line = dep.Requirement
		} else {
			line += fmt.Sprintf("%s==%s", pkg.Name, pkg.Version)
			if _, rest, found := strings.Cut(dep.Requirement, ";"); found {
				if markers := strings.TrimSpace(rest); markers != "" {
					line += "; " + markers
				}
			}
			if pkg.SourceURL != "" {
				indexes[pkg.SourceURL] = struct{}{}
			}
		}

		if opts.WithHashes && len(pkg.Files) > 0 {
			if hashes := fileHashes(pkg.Files); len(hashes) > 0 {
				line += " \\\n"
				for i, h := range hashes {
					line += "    --hash=" + h
					if i < len(hashes)-1 {
						line += " \\\n"
					}
				}
			}
		}

		lines[line] = struct{}{}
	}

	content := ""
	if len(lines) > 0 {
		sorted := maps.Keys(lines)
		slices.Sort(sorted)
		content = strings.Join(sorted, "\n") + "\n"
	}

	if header := indexHeader(indexes, pool, opts.WithCredentials); header != "" {
		content = header + "\n" + content
	}
	return content
}

// indexHeader renders the index-configuration block for the collected
// source URLs. URLs with no matching pool repository are skipped. The
// pool's default repository renders as --index-url and never as an extra
// index; every other match renders as --extra-index-url, preceded by
// --trusted-host when the scheme is unencrypted http.
func indexHeader(indexes map[string]struct{}, pool *lock.Pool, withCredentials bool) string {
	if len(indexes) == 0 {
		return ""
	}

	var indexLine string
	var extras strings.Builder
	sorted := maps.Keys(indexes)
	slices.Sort(sorted)
	for _, index := range sorted {
		repo, ok := pool.Match(index)
		if !ok {
			continue
		}

		repoURL := repo.URL
		if withCredentials {
			repoURL = repo.AuthenticatedURL
		}

		if pool.HasDefault() && pool.IsDefault(repo) {
			indexLine = fmt.Sprintf("--index-url %s\n", repoURL)
			continue
		}

		if parsed, err := url.Parse(repoURL); err == nil && parsed.Scheme == "http" {
			extras.WriteString(fmt.Sprintf("--trusted-host %s\n", parsed.Host))
		}
		extras.WriteString(fmt.Sprintf("--extra-index-url %s\n", repoURL))
	}

	return indexLine + extras.String()
}
