// Package export converts a resolved dependency set into installer
// interchange formats.
//
// Two formats are supported: a pinned, pip-consumable requirements.txt and
// a structured JSON manifest. The exporter is stateless: each call
// materializes the entry set from its [lock.Resolver], formats it, and
// writes the result through an [Output]. Output is byte-stable — exporting
// the same entry set twice produces identical bytes.
package export

import (
	"strings"

	"github.com/matzehuels/lockport/pkg/errors"
	"github.com/matzehuels/lockport/pkg/lock"
)

// Supported export format identifiers.
const (
	FormatRequirementsTXT = "requirements.txt"
	FormatJSON            = "json"
)

// acceptedFormats is fixed process-wide configuration; never modified.
var acceptedFormats = []string{FormatRequirementsTXT, FormatJSON}

// Options controls what an export includes.
type Options struct {
	WithHashes      bool        // emit --hash lines / hashes objects
	Dev             bool        // include dev-category packages
	Extras          lock.Extras // optional-package selection
	WithCredentials bool        // render authenticated index URLs
}

// DefaultOptions returns the options used when none are specified:
// hashes on, dev off, no extras, no credentials.
func DefaultOptions() Options {
	return Options{WithHashes: true}
}

// Exporter formats resolved dependency sets. Construct with [New]; the
// zero value is not usable.
type Exporter struct {
	resolver lock.Resolver
	pool     *lock.Pool
}

// New creates an exporter over the given resolver and repository pool.
// A nil pool behaves as an empty one.
func New(resolver lock.Resolver, pool *lock.Pool) *Exporter {
	if pool == nil {
		pool = lock.NewPool(nil, false)
	}
	return &Exporter{resolver: resolver, pool: pool}
}

// Export resolves the entry set selected by opts, renders it in the given
// format, and writes the result to out. Unknown formats fail with an
// INVALID_FORMAT error naming the accepted set before anything is
// resolved or written.
func (e *Exporter) Export(format string, out Output, opts Options) error {
	if format != FormatRequirementsTXT && format != FormatJSON {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid export format: %s (accepted formats: %s)",
			format, strings.Join(acceptedFormats, ", "))
	}

	entries, err := e.resolver.Resolve(lock.Scope{Dev: opts.Dev, Extras: opts.Extras})
	if err != nil {
		return err
	}

	var content string
	switch format {
	case FormatRequirementsTXT:
		content = requirementsTXT(entries, e.pool, opts)
	case FormatJSON:
		content, err = jsonManifest(entries, opts)
		if err != nil {
			return err
		}
	}

	return out.Write(content)
}
