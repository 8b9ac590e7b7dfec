package secrets

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain/ports"
)

// localSecretManager implements SecretManager over environment variables.
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type localSecretManager struct {
	logger *zap.Logger
}

// NewLocalSecretManager creates a secret manager that resolves paths as
// environment variable names.
func NewLocalSecretManager(logger *zap.Logger) ports.SecretManager {
	return &localSecretManager{logger: logger}
}

// GetSecret reads the environment variable named by path.
func (m *localSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	m.logger.Debug("Reading secret from environment", zap.String("path", path))

	value, ok := os.LookupEnv(path)
	if !ok {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	return &ports.Secret{
		Value:   value,
		Version: "v1",
	}, nil
}
