package client

import (
	"context"
	"os"
)

// CredentialSource supplies the bearer token for each call. The client asks
// again before every request so a refreshed token is picked up without
// rebuilding the client.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialSource
type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken is a fixed token
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// EnvToken reads the named environment variable on every call
type EnvToken string

func (e EnvToken) Token(context.Context) (string, error) { return os.Getenv(string(e)), nil }
