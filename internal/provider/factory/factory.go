package factory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"filedock/internal/config"
	"filedock/internal/provider/registry"
	"filedock/pkg/storage"
)

type Factory struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Returns the sorted names of providers that are registered and configured
func (f *Factory) GetConfiguredProviders() []string {
	var configured []string
	for name, reg := range registry.All() {
		if reg.ConfigCheck(f.cfg) {
			configured = append(configured, name)
		}
	}
	sort.Strings(configured)
	return configured
}

func (f *Factory) IsConfigured(providerName string) bool {
	reg, ok := registry.Lookup(providerName)
	if !ok {
		return false
	}
	return reg.ConfigCheck(f.cfg)
}

// ResolveProvider picks the provider for a command: the explicit name, then the configured default,
// then the only configured provider
func (f *Factory) ResolveProvider(providerName string) (string, error) {
	if providerName != "" {
		if !registry.IsSupported(providerName) {
			return "", unsupportedProvider(providerName)
		}
		return strings.ToLower(providerName), nil
	}
	if f.cfg.Provider != "" {
		return strings.ToLower(f.cfg.Provider), nil
	}

	configured := f.GetConfiguredProviders()
	switch len(configured) {
	case 1:
		return configured[0], nil
	case 0:
		return "", fmt.Errorf("%w: no storage provider configured. Use 'filedock config set provider <name>' with one of %v", storage.ErrConfiguration, registry.SupportedProviders())
	default:
		return "", fmt.Errorf("%w: several providers are configured (%s), select one with --provider or 'filedock config set provider <name>'", storage.ErrConfiguration, strings.Join(configured, ", "))
	}
}

// Initializes the storage primitives of the named provider
func (f *Factory) GetStorageProvider(ctx context.Context, providerName string) (storage.Storage, error) {
	name := strings.ToLower(providerName)

	reg, ok := registry.Lookup(name)
	if !ok {
		return nil, unsupportedProvider(providerName)
	}

	if !f.IsConfigured(name) {
		hint := name + ".<key>"
		if len(reg.RequiredKeys) > 0 {
			hint = strings.Join(reg.RequiredKeys, ", ")
		}
		return nil, fmt.Errorf("%w: provider '%s' is not configured. Use 'filedock config set <key> <value>' for %s", storage.ErrConfiguration, name, hint)
	}

	api, err := reg.Initializer(ctx, f.cfg, f.logger.With("provider", name))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", name, err)
	}

	return api, nil
}

// GetFileClient returns a file client for the named provider (or the resolved default) bound to the
// configured default bucket and public URL
func (f *Factory) GetFileClient(ctx context.Context, providerName string) (*storage.Client, error) {
	name, err := f.ResolveProvider(providerName)
	if err != nil {
		return nil, err
	}

	api, err := f.GetStorageProvider(ctx, name)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(api, storage.ClientConfig{
		PublicURL: f.cfg.PublicURL,
		Bucket:    f.cfg.Bucket,
	}, f.logger)
	if err != nil {
		if closeErr := api.Close(); closeErr != nil {
			f.logger.Warn("Failed to close provider", "provider", name, "error", closeErr)
		}
		return nil, fmt.Errorf("%w. Use 'filedock config set public_url <url>'", err)
	}

	return client, nil
}

// GetURLBuilder builds public URLs from the configured public_url without initializing any provider
func (f *Factory) GetURLBuilder() (*storage.URLBuilder, error) {
	urls, err := storage.NewURLBuilder(f.cfg.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("%w. Use 'filedock config set public_url <url>'", err)
	}
	return urls, nil
}

func unsupportedProvider(name string) error {
	return fmt.Errorf("%w: unsupported provider: %s. Supported providers are: %v", storage.ErrConfiguration, name, registry.SupportedProviders())
}
