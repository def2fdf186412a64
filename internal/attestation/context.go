// Package attestation carries the caller's client identity and App Check
// token for the lifetime of one inbound request.
package attestation

import (
	"context"
	"errors"
)

const (
	HeaderClientName    = "x-client-name"
	HeaderAppCheckToken = "x-appcheck-token"
)

// ErrMissingIdentity is returned by outbound clients asked to call an
// upstream with no verified identity on the context.
var ErrMissingIdentity = errors.New("attestation: no verified identity on context")

// Identity is the verified caller. Set once by RequireAppCheck and read by
// every outbound call made on behalf of the request.
type Identity struct {
	ClientName string
	Token      string
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored on ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.Token == "" {
		return Identity{}, false
	}
	return id, true
}
