package library

import (
	"fmt"
)

// UpstreamKind classifies a catalog search failure.
type UpstreamKind string

const (
	KindTimeout           UpstreamKind = "timeout"
	KindRateLimited       UpstreamKind = "rate_limited"
	KindServerError       UpstreamKind = "server_error"
	KindClientError       UpstreamKind = "client_error"
	KindMalformedResponse UpstreamKind = "malformed_response"
)

// UpstreamError is a catalog search failure after the retry budget is
// settled. Transient kinds are retried before one of these surfaces.
type UpstreamError struct {
	Kind   UpstreamKind
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("library search %s: %s", e.Kind, e.Detail)
}

// Transient reports whether the failure class is expected to succeed on
// retry.
func (e *UpstreamError) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}
