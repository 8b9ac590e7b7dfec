package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string

	// Cache TTL
	CacheTTL time.Duration

	// Enable caching
	EnableCache bool

	// TLS configuration
	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration for the Vault adapter
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		MountPath:   "secret",
		KVVersion:   "v2",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// vaultAdapter implements the SecretManager port for HashiCorp Vault
type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultAdapter creates a new HashiCorp Vault adapter using token
// authentication.
func NewVaultAdapter(cfg *VaultConfig, logger *zap.Logger) (ports.SecretManager, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		tlsConfig := &vault.TLSConfig{
			Insecure: true,
		}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required for token auth")
	}
	client.SetToken(cfg.Token)

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &vaultAdapter{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret retrieves a secret by its path
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("Secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	a.logger.Info("Retrieving secret from Vault", zap.String("path", path))

	// Build full path based on KV version
	var fullPath string
	if a.config.KVVersion == "v2" {
		fullPath = fmt.Sprintf("%s/data/%s", a.config.MountPath, path)
	} else {
		fullPath = fmt.Sprintf("%s/%s", a.config.MountPath, path)
	}

	startTime := time.Now()
	secret, err := a.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		a.logger.Error("Failed to retrieve secret from Vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}

	if secret == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	a.logger.Info("Secret retrieved successfully",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	// Extract secret data based on KV version
	var secretData map[string]interface{}
	var version string

	if a.config.KVVersion == "v2" {
		// KV v2 wraps data in "data" field
		data, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from Vault")
		}
		secretData = data

		if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := metadata["version"].(json.Number); ok {
				version = v.String()
			}
		}
	} else {
		secretData = secret.Data
		version = "1"
	}

	// The secret value is stored under the "value" key
	secretValue, _ := secretData["value"].(string)
	if secretValue == "" {
		return nil, fmt.Errorf("secret value is empty or not found")
	}

	result := &ports.Secret{
		Value:   secretValue,
		Version: version,
	}

	a.cache.set(path, result)

	return result, nil
}
