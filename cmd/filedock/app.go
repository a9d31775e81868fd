package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"filedock/internal/config"
	"filedock/internal/logger"
	"filedock/internal/provider/factory"
	"filedock/internal/service"
	"filedock/internal/ui/prompt"
	"filedock/pkg/formatter"
	"filedock/pkg/storage"
)

// appContainer holds the shared dependencies of a command invocation.
// The file service is built on first use so config commands keep working with an invalid configuration.
type appContainer struct {
	ConfigManager *config.ConfigManager
	Formatter     *formatter.FileFormatter
	Prompter      prompt.Prompter
	Logger        *slog.Logger

	config      *config.Config
	factory     *factory.Factory
	fileService *service.FileService
}

type appKey struct{}

// newApp prompts on in and writes prompt text to out
func newApp(debug bool, in io.Reader, out io.Writer) (*appContainer, error) {
	cfgManager, err := config.NewConfigManager()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(logger.Options{
		Level:  logLevel(cfgManager, debug),
		Format: stringValue(cfgManager, "log.format"),
	})
	if err != nil {
		return nil, err
	}

	return &appContainer{
		ConfigManager: cfgManager,
		Formatter:     formatter.NewFileFormatter(),
		Prompter:      prompt.NewStandardPrompter(in, out),
		Logger:        log,
	}, nil
}

// Services loads and validates the configuration, then wires the provider factory and file service
func (a *appContainer) Services() (*service.FileService, *config.Config, error) {
	if a.fileService != nil {
		return a.fileService, a.config, nil
	}

	cfg, err := a.ConfigManager.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w (config file: %s)", storage.ErrConfiguration, err, a.ConfigManager.Path())
	}

	a.config = cfg
	a.factory = factory.NewFactory(cfg, a.Logger)
	a.fileService = service.NewFileService(a.factory, a.Logger)
	return a.fileService, a.config, nil
}

func withApp(ctx context.Context, app *appContainer) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func appFromContext(ctx context.Context) (*appContainer, error) {
	app, ok := ctx.Value(appKey{}).(*appContainer)
	if !ok || app == nil {
		return nil, errors.New("application is not initialized")
	}
	return app, nil
}

func logLevel(cm *config.ConfigManager, debug bool) string {
	if debug {
		return "debug"
	}
	return stringValue(cm, "log.level")
}

func stringValue(cm *config.ConfigManager, key string) string {
	v, ok := cm.GetValue(key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
