package sanmar

import "context"

// CredentialSource supplies credentials at call time so rotated secrets are picked up.
type CredentialSource interface {
	SanMarCredentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials serves a fixed set of credentials, typically from config.
type StaticCredentials Credentials

func (s StaticCredentials) SanMarCredentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}
