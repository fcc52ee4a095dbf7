// Package book holds the provider-neutral pieces of ISBN metadata lookup: the
// candidate record, the normalized item each provider decodes into, and the
// rules that decide whether an item is usable.
package book

import (
	"context"
)

// Provider fetches candidate metadata for an ISBN from one external source.
// Each implementation handles its own request construction, rate limiting and
// payload decoding.
type Provider interface {
	// Name returns the human-readable name of the source (e.g., "NDL").
	Name() string

	// Lookup resolves the ISBN in req to a candidate.
	// Errors are the package sentinels (ErrInvalidISBN, ErrNoResult, ...),
	// *IncompleteError, or a transport failure wrapping the cause.
	Lookup(ctx context.Context, req Request) (Candidate, error)
}

// Request is the input of a single lookup.
type Request struct {
	ISBN string `json:"isbn"`

	// Credentials holds provider-specific parameters such as "api_key" or
	// "application_id". Unused keys are ignored.
	Credentials map[string]string `json:"credentials,omitempty"`
}

// Credential keys understood by the bundled providers.
const (
	CredentialAPIKey        = "api_key"
	CredentialApplicationID = "application_id"
	CredentialAccessKey     = "access_key"
	CredentialSecretKey     = "secret_key"
	CredentialAssociateTag  = "associate_tag"
)

// Credential returns the trimmed credential stored under key.
func (r Request) Credential(key string) string {
	if r.Credentials == nil {
		return ""
	}
	return trim(r.Credentials[key])
}
