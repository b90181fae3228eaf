package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/composekit/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// ResolvedFiles contains the resolved config and env file paths. Either may
// be empty when nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string // Only environment variables with this prefix are bound (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment overrides to variables starting with
// prefix followed by an underscore. The prefix is stripped before mapping.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// ResolveFiles returns the explicit paths from lc, filling the gaps by
// searching standard locations for appName.
func ResolveFiles(appName string, lc LoaderConfig) ResolvedFiles {
	fs := lc.FileSystem
	if fs == nil {
		fs = OSFileSystem{}
	}
	resolved := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = firstExisting(fs, configSearchPaths(appName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = firstExisting(fs, envSearchPaths(appName))
	}
	return resolved
}

func configSearchPaths(appName string) []string {
	var paths []string
	for _, dir := range []string{".", "..", "../.."} {
		if appName != "" {
			paths = append(paths,
				fmt.Sprintf("%s/cmd/%s/config.yml", dir, appName),
				fmt.Sprintf("%s/config/%s.yml", dir, appName),
			)
		}
	}
	return append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
}

func envSearchPaths(appName string) []string {
	names := []string{".env"}
	if appName != "" {
		names = []string{".env." + appName, ".env"}
	}
	var paths []string
	for _, name := range names {
		for _, dir := range []string{".", "./config", ".."} {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig loads configuration for appName into cfg. The YAML file is read
// first, then the .env file is loaded into the process environment, and
// environment variables override file values. Files that do not exist are
// skipped; a config file that exists but cannot be parsed is an error.
func LoadConfig(appName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	files := ResolveFiles(appName, lc)
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
		logger.Debug("Config file loaded", logger.Fields("file", files.ConfigFile))
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("Failed to load env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		} else {
			logger.Debug("Env file loaded", logger.Fields("file", files.EnvFile))
		}
	}

	bindEnv(v, os.Environ(), lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", appName, err)
	}
	return nil
}

// bindEnv sets every key variant of each environment variable on v so that
// nested keys match regardless of where the underscores fall.
func bindEnv(v *viper.Viper, environ []string, prefix string) {
	if prefix != "" {
		prefix = strings.ToUpper(prefix) + "_"
	}
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			key = strings.TrimPrefix(key, prefix)
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants returns the lower-cased key, its fully dotted form and every
// split into a dotted prefix plus an underscored suffix.
//
//	LOGGING_NO_COLOR -> [logging_no_color, logging.no.color, logging.no_color]
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{lowerKey, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return dedupe(variants)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
