// Package secrets resolves named credentials from AWS Systems Manager Parameter Store.
//
// SSMProvider authenticates with the ambient deployment credentials (a named shared profile or
// the default chain: environment, shared files, web identity, instance role), issues a single
// GetParameter request with decryption, and returns the plaintext value. Nothing is cached, so
// long-lived secrets are not held in memory between token mints.
//
// Failures wrap ErrCredentialsUnavailable, ErrSecretNotFound or ErrSecretStoreUnreachable:
//
//	value, err := provider.Resolve(ctx, "/forge/client-secret")
//	if errors.Is(err, secrets.ErrSecretNotFound) {
//	    // misconfigured parameter name
//	}
package secrets
