package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"filedock/internal/config"
	"filedock/pkg/storage"
)

// ConfigCheck reports whether cfg holds enough settings to initialize the provider
type ConfigCheck func(cfg *config.Config) bool

// Initializer opens a connection to the provider
type Initializer func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error)

type Registration struct {
	ConfigCheck ConfigCheck
	Initializer Initializer
	// Shown when the provider is selected but not configured, e.g. "aws.region"
	RequiredKeys []string
}

var (
	// Keyed by lowercase provider name
	registrations = make(map[string]Registration)
	mu            sync.RWMutex
)

// Register is called from a provider package's init(). It panics on duplicate or incomplete registrations.
func Register(name string, reg Registration) {
	mu.Lock()
	defer mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := registrations[key]; exists {
		panic(fmt.Sprintf("provider %s already registered", key))
	}
	if reg.ConfigCheck == nil {
		panic(fmt.Sprintf("provider %s registration missing ConfigCheck", key))
	}
	if reg.Initializer == nil {
		panic(fmt.Sprintf("provider %s registration missing Initializer", key))
	}

	registrations[key] = reg
}

// SupportedProviders returns the sorted names of all registered providers
func SupportedProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registrations))
	for name := range registrations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsSupported(name string) bool {
	_, ok := Lookup(name)
	return ok
}

func Lookup(name string) (Registration, bool) {
	mu.RLock()
	defer mu.RUnlock()

	reg, ok := registrations[strings.ToLower(name)]
	return reg, ok
}

// All returns a copy of the registry
func All() map[string]Registration {
	mu.RLock()
	defer mu.RUnlock()

	out := make(map[string]Registration, len(registrations))
	for k, v := range registrations {
		out[k] = v
	}
	return out
}
