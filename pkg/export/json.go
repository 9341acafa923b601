package export

import (
	"encoding/json"

	"github.com/matzehuels/lockport/pkg/errors"
	"github.com/matzehuels/lockport/pkg/lock"
	"github.com/matzehuels/lockport/pkg/marker"
)

// record is one dependency entry in the JSON manifest. Fields are declared
// in alphabetical order; encoding/json emits struct fields in declaration
// order, which keeps the object keys sorted.
type record struct {
	Dev           bool              `json:"dev"`
	Hashes        map[string]string `json:"hashes"`
	Name          string            `json:"name"`
	PythonVersion string            `json:"python_version"`
	SourceURL     *string           `json:"source_url"`
	SysPlatform   *string           `json:"sys_platform"`
	Version       string            `json:"version"`
}

type manifest struct {
	Dependencies []record `json:"dependencies"`
}

// jsonManifest renders the entry set as a JSON manifest. Records keep the
// resolver's iteration order; one entry always yields one record.
func jsonManifest(entries []lock.ResolvedEntry, opts Options) (string, error) {
	records := make([]record, 0, len(entries))
	for _, entry := range entries {
		expr, err := marker.Parse(entry.Dependency.Marker)
		if err != nil {
			return "", err
		}

		rec := record{
			Dev:           entry.Package.Develop,
			Hashes:        map[string]string{},
			Name:          entry.Package.Name,
			PythonVersion: marker.PythonVersions(expr),
			Version:       entry.Package.Version,
		}

		if opts.WithHashes {
			for _, f := range entry.Package.Files {
				if h, ok := NormalizeHash(f.Hash); ok {
					rec.Hashes[f.File] = h
				}
			}
		}
		if entry.Package.SourceURL != "" {
			u := entry.Package.SourceURL
			rec.SourceURL = &u
		}
		if platform, ok := marker.Platform(expr); ok {
			p := platform
			rec.SysPlatform = &p
		}

		records = append(records, rec)
	}

	data, err := json.Marshal(manifest{Dependencies: records})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "failed to encode manifest")
	}
	return string(data), nil
}
