package export

import (
	"strings"

	"github.com/matzehuels/lockport/pkg/lock"
)

// allowedHashAlgorithms is the fixed allow-list of integrity hash
// algorithms; initialized once, never modified.
var allowedHashAlgorithms = map[string]bool{
	"sha256": true,
	"sha384": true,
	"sha512": true,
}

// NormalizeHash parses a raw integrity string into its rendered
// "algorithm:digest" form. A string without an algorithm prefix is taken
// to be a sha256 digest. Hashes with algorithms outside the allow-list are
// suppressed (ok=false) rather than failing the export.
func NormalizeHash(raw string) (normalized string, ok bool) {
	algorithm, digest := "sha256", raw
	if i := strings.Index(raw, ":"); i >= 0 {
		algorithm, digest = raw[:i], raw[i+1:]
	}
	if !allowedHashAlgorithms[algorithm] {
		return "", false
	}
	return algorithm + ":" + digest, true
}

// fileHashes normalizes the hashes of the package's file records in order,
// dropping suppressed ones.
func fileHashes(files []lock.FileRecord) []string {
	var hashes []string
	for _, f := range files {
		if h, ok := NormalizeHash(f.Hash); ok {
			hashes = append(hashes, h)
		}
	}
	return hashes
}
