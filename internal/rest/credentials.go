package rest

import (
	"context"
	"net/http"
)

// Credentials are the browser's own authentication headers, forwarded to
// the backend so that its session rules apply to the console user.
type Credentials struct {
	Authorization string
	Cookie        string
}

type credentialsKey struct{}

// WithCredentials attaches creds to ctx.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials attached to ctx.
func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}

// CredentialsFromRequest copies the authentication headers of r.
func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{
		Authorization: r.Header.Get("Authorization"),
		Cookie:        r.Header.Get("Cookie"),
	}
}
