package ports

import "context"

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value   string
	Version string
}

// SecretManager defines the port for retrieving secrets from a secret
// management service. Backends: local environment, HashiCorp Vault, AWS
// Secrets Manager. Implementations handle authentication with the backend;
// credentials are attached per call, never persisted across calls.
type SecretManager interface {
	// GetSecret retrieves a secret by its path/name. Path format depends on
	// the backend:
	//   - local: environment variable name
	//   - Vault: "secret/data/coursepay/{name}"
	//   - AWS:   "coursepay/{name}"
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
