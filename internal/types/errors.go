package types

import "errors"

// Error kinds surfaced across the engine. Wrap with %w so callers can
// classify with errors.Is regardless of the layer that failed.
var (
	// ErrNotFound covers unknown decision, principle, and template ids.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable is a transient persistence failure; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCorpusInvariant means malformed thinker or principle data.
	// Fatal at import; at runtime the offending record is skipped and logged.
	ErrCorpusInvariant = errors.New("corpus invariant violated")

	// ErrProvenanceViolation is a hash, link, or signature mismatch.
	// Never recovered automatically.
	ErrProvenanceViolation = errors.New("provenance violation")

	// ErrInvalidInput covers empty questions, unknown enum values, and
	// schema-invalid tool arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsecureKey means the signing key file is readable by group or world.
	ErrInsecureKey = errors.New("insecure key file permissions")
)
