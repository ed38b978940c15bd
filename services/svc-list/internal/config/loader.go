package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envFileVariable = "ENV_FILE"

var ErrSecretsStorageDisabled = errors.New("secret storage is not enabled")

// Init loads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Init() (*ServiceConfig, error) {
	envFile := os.Getenv(envFileVariable)
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unable to load env file %s: %w", envFile, err)
	}

	cfg := &ServiceConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if len(ServiceVersion) != 0 {
		cfg.App.ServiceVersion = ServiceVersion
	}

	if len(CommitSHA) != 0 {
		cfg.App.CommitSHA = CommitSHA
	}

	if !cfg.Storage.IsSupported() {
		return nil, fmt.Errorf("unsupported storage backend %q, expected one of %s",
			cfg.Storage.Backend, strings.Join(SupportedBackends, ", "))
	}

	return cfg, nil
}

// Loader overlays backend credentials kept in Vault onto the service config.
type Loader struct {
	cfg         *ServiceConfig
	secretsRepo ports.SecretsRepository
}

func NewLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository) *Loader {
	return &Loader{
		cfg:         cfg,
		secretsRepo: secretsRepo,
	}
}

// Load returns the version of the secret that was applied.
func (l *Loader) Load(ctx context.Context) (uint, error) {
	if !l.cfg.SecretsStorage.Enabled {
		return 0, ErrSecretsStorageDisabled
	}

	if err := l.authenticateVault(ctx); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	secret, err := l.getSecretsWithRetry(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return 0, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("invalid secret format at %s, missing 'data' key", l.secretPath())
	}

	if err := l.applySecretsToConfig(data); err != nil {
		return 0, fmt.Errorf("failed to apply secrets to config: %w", err)
	}

	metadata, _ := secret.Data["metadata"].(map[string]any)

	return getSecretVersion(metadata)
}

func (l *Loader) authenticateVault(ctx context.Context) error {
	storage := l.cfg.SecretsStorage

	switch strings.ToLower(storage.AuthMethod) {
	case "token":
		if storage.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}

		l.secretsRepo.SetToken(storage.Token)

		return nil

	case "approle":
		if storage.RoleID == "" || storage.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		resp, err := l.secretsRepo.WriteWithContext(ctx, "auth/approle/login", map[string]any{
			"role_id":   storage.RoleID,
			"secret_id": storage.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		l.secretsRepo.SetToken(resp.Auth.ClientToken)

		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", storage.AuthMethod)
	}
}

func (l *Loader) getSecretsWithRetry(ctx context.Context) (*api.Secret, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.SecretsStorage.Timeout)
	defer cancel()

	path := l.secretPath()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = time.Second

	secret, err := backoff.Retry(ctx, func() (*api.Secret, error) {
		return l.secretsRepo.GetSecrets(ctx, path)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(l.cfg.SecretsStorage.MaxRetries+1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read from path %s after %d retries: %w", path, l.cfg.SecretsStorage.MaxRetries, err)
	}

	return secret, nil
}

func (l *Loader) secretPath() string {
	return fmt.Sprintf("apps/data/%s", l.cfg.SecretsStorage.MountPath)
}

func (l *Loader) applySecretsToConfig(data map[string]any) error {
	for key, value := range data {
		strValue, ok := value.(string)
		if !ok || strValue == "" {
			continue
		}

		if err := os.Setenv(key, strValue); err != nil {
			return fmt.Errorf("failed to set environment variable %s: %w", key, err)
		}

		switch key {
		case "MONGODB_URI":
			l.cfg.Storage.Mongo.URI = strValue
		case "POSTGRES_PASSWORD":
			l.cfg.Storage.Postgres.Password = strValue
		case "CACHE_PASSWORD":
			l.cfg.Storage.KeyDB.Password = strValue
		case "S3_ACCESS_KEY_ID":
			l.cfg.Storage.S3.AccessKeyID = strValue
		case "S3_SECRET_ACCESS_KEY":
			l.cfg.Storage.S3.SecretAccessKey = strValue
		}
	}

	return nil
}

func getSecretVersion(metadata map[string]any) (uint, error) {
	if metadata == nil {
		return 0, nil
	}

	currentVersion, ok := metadata["version"]
	if !ok {
		return 0, nil
	}

	switch v := currentVersion.(type) {
	case float64:
		return uint(v), nil
	case int:
		return uint(v), nil
	case uint:
		return v, nil
	case interface{ Int64() (int64, error) }:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("failed to parse version: %w", err)
		}

		return uint(version), nil
	default:
		return 0, fmt.Errorf("unexpected version type: %T", currentVersion)
	}
}
