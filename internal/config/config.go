package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yaml"
	ConfigDirName  = "filedock"
	// Environment variables use this prefix, e.g. FILEDOCK_AWS_REGION for aws.region
	EnvPrefix = "FILEDOCK"
	// Overrides the config file location
	ConfigPathEnv = "FILEDOCK_CONFIG"
)

type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	// Custom endpoint for S3-compatible services
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `mapstructure:"use_path_style" default:"false"`
}

type GCPConfig struct {
	Project         string `mapstructure:"project"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type MinIOConfig struct {
	// host:port, a scheme prefix is tolerated
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"true"`
	Region    string `mapstructure:"region"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" default:"info" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" default:"text" validate:"omitempty,oneof=text json"`
}

type TransferConfig struct {
	// Maximum number of files moved in parallel by batch uploads and downloads
	Concurrency int `mapstructure:"concurrency" default:"4" validate:"gte=1,lte=64"`
	// Upper bound for a whole CLI command, zero disables it
	Timeout time.Duration `mapstructure:"timeout" default:"0s" validate:"gte=0"`
}

type Config struct {
	// Provider used when a command does not name one
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=aws gcp minio"`
	// Base URL used to build public file URLs
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`
	// Default bucket
	Bucket string `mapstructure:"bucket"`

	AWS      *AWSConfig     `mapstructure:"aws"`
	GCP      *GCPConfig     `mapstructure:"gcp"`
	MinIO    *MinIOConfig   `mapstructure:"minio"`
	Log      LogConfig      `mapstructure:"log"`
	Transfer TransferConfig `mapstructure:"transfer"`
}

// ConfigManager reads the layered configuration (file, environment, defaults) and persists edits to the file
type ConfigManager struct {
	path string
	// Only the values persisted in the config file
	file *viper.Viper
	// File merged with environment and defaults
	merged   *viper.Viper
	keys     map[string]struct{}
	validate *validator.Validate
}

func NewConfigManager() (*ConfigManager, error) {
	// A missing .env is expected outside of development
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return newConfigManager(configPath)
}

func newConfigManager(configPath string) (*ConfigManager, error) {
	keys := make(map[string]struct{})
	collectKeys(reflect.TypeOf(Config{}), "", func(key, _ string) {
		keys[key] = struct{}{}
	})

	cm := &ConfigManager{
		path:     configPath,
		keys:     keys,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if err := cm.reload(); err != nil {
		return nil, err
	}
	return cm, nil
}

func getConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", ConfigDirName, ConfigFileName), nil
}

func (cm *ConfigManager) reload() error {
	file := viper.New()
	file.SetConfigFile(cm.path)
	file.SetConfigType("yaml")
	if err := readIfExists(file); err != nil {
		return err
	}

	merged := viper.New()
	merged.SetConfigFile(cm.path)
	merged.SetConfigType("yaml")
	merged.SetEnvPrefix(EnvPrefix)
	merged.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	merged.AutomaticEnv()

	// Registering every key, even with an empty default, lets AutomaticEnv resolve it during Unmarshal
	collectKeys(reflect.TypeOf(Config{}), "", func(key, def string) {
		merged.SetDefault(key, def)
	})

	if err := readIfExists(merged); err != nil {
		return err
	}

	cm.file = file
	cm.merged = merged
	return nil
}

func readIfExists(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error reading config file: %w", err)
}

// LoadConfig decodes and validates the merged configuration
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := cm.merged.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	if err := cm.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (cm *ConfigManager) Path() string {
	return cm.path
}

// IsKnownKey reports whether key (dot notation, e.g. "aws.region") is a valid configuration key
func (cm *ConfigManager) IsKnownKey(key string) bool {
	_, ok := cm.keys[strings.ToLower(key)]
	return ok
}

// KnownKeys returns every valid configuration key, sorted
func (cm *ConfigManager) KnownKeys() []string {
	keys := make([]string, 0, len(cm.keys))
	for k := range cm.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (cm *ConfigManager) SetValue(key, value string) error {
	key = strings.ToLower(key)
	if !cm.IsKnownKey(key) {
		return fmt.Errorf("unknown config key: %s", key)
	}

	cm.file.Set(key, value)
	if err := cm.write(cm.file.AllSettings()); err != nil {
		return err
	}
	return cm.reload()
}

// GetValue returns the effective value of key, taking environment overrides and defaults into account
func (cm *ConfigManager) GetValue(key string) (interface{}, bool) {
	key = strings.ToLower(key)
	if !cm.IsKnownKey(key) {
		return nil, false
	}
	return cm.merged.Get(key), true
}

// DeleteValue removes key from the config file, reporting false if the file did not hold it
func (cm *ConfigManager) DeleteValue(key string) (bool, error) {
	key = strings.ToLower(key)
	if !cm.IsKnownKey(key) {
		return false, fmt.Errorf("unknown config key: %s", key)
	}

	settings := cm.file.AllSettings()
	if !deleteNested(settings, strings.Split(key, ".")) {
		return false, nil
	}

	if err := cm.write(settings); err != nil {
		return false, err
	}

	return true, cm.reload()
}

func (cm *ConfigManager) GetAllSettings() map[string]interface{} {
	return cm.merged.AllSettings()
}

// write atomically replaces the config file with settings
func (cm *ConfigManager) write(settings map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(cm.path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error encoding configuration: %w", err)
	}
	if err := atomic.WriteFile(cm.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func deleteNested(settings map[string]interface{}, path []string) bool {
	if len(path) == 1 {
		if _, ok := settings[path[0]]; !ok {
			return false
		}
		delete(settings, path[0])
		return true
	}

	child, ok := settings[path[0]].(map[string]interface{})
	if !ok {
		return false
	}
	if !deleteNested(child, path[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(settings, path[0])
	}
	return true
}

// collectKeys walks the mapstructure tags of t and reports every leaf key with its `default` tag
func collectKeys(t reflect.Type, prefix string, fn func(key, def string)) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Time{}) {
			collectKeys(ft, key, fn)
			continue
		}

		fn(key, field.Tag.Get("default"))
	}
}
