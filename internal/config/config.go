// Package config resolves the cifra configuration from defaults, optional
// files and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/RowanDark/cifra/internal/cryptanalysis"
	"github.com/RowanDark/cifra/internal/env"
)

const (
	homeDirName   = ".cifra"
	homeFileName  = "config.toml"
	localFileName = "cifra.yml"
)

// Config captures the cifra configuration.
type Config struct {
	DictionaryPath string       `yaml:"dictionary_path" toml:"dictionary_path"`
	RecipesDir     string       `yaml:"recipes_dir" toml:"recipes_dir"`
	HistoryPath    string       `yaml:"history_path" toml:"history_path"`
	OutputDir      string       `yaml:"output_dir" toml:"output_dir"`
	AuditLogPath   string       `yaml:"audit_log" toml:"audit_log"`
	LogLevel       string       `yaml:"log_level" toml:"log_level"`
	PreviewChars   int          `yaml:"preview_chars" toml:"preview_chars"`
	Server         ServerConfig `yaml:"server" toml:"server"`
	Crack          CrackConfig  `yaml:"crack" toml:"crack"`
}

// ServerConfig controls cifrad.
type ServerConfig struct {
	Addr        string `yaml:"addr" toml:"addr"`
	MetricsAddr string `yaml:"metrics_addr" toml:"metrics_addr"`
	MaxConns    int    `yaml:"max_conns" toml:"max_conns"`
}

// CrackConfig bounds the Caesar brute force.
type CrackConfig struct {
	MinShift int `yaml:"min_shift" toml:"min_shift"`
	MaxShift int `yaml:"max_shift" toml:"max_shift"`
	Workers  int `yaml:"workers" toml:"workers"`
}

// Default returns the built-in configuration. Paths under the home
// directory fall back to the working directory when no home is available.
func Default() Config {
	base := homeDirName
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, homeDirName)
	}
	return Config{
		DictionaryPath: "dicionario.txt",
		RecipesDir:     filepath.Join(base, "recipes"),
		HistoryPath:    filepath.Join(base, "history.db"),
		OutputDir:      "",
		LogLevel:       "info",
		PreviewChars:   2000,
		Server: ServerConfig{
			Addr:        "127.0.0.1:50061",
			MetricsAddr: "127.0.0.1:9461",
			MaxConns:    64,
		},
		Crack: CrackConfig{
			MinShift: cryptanalysis.DefaultKeyspace.Min,
			MaxShift: cryptanalysis.DefaultKeyspace.Max,
			Workers:  1,
		},
	}
}

// Load resolves the configuration. Sources, lowest precedence first:
//  1. built-in defaults
//  2. ~/.cifra/config.toml (TOML)
//  3. ./cifra.yml (YAML)
//  4. CIFRA_* environment variables
func Load() (Config, error) {
	cfg := Default()

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if err := c.Keyspace().Validate(); err != nil {
		return fmt.Errorf("crack: %w", err)
	}
	if c.Crack.Workers < 1 {
		return fmt.Errorf("crack.workers must be at least 1, got %d", c.Crack.Workers)
	}
	if c.PreviewChars < 0 {
		return fmt.Errorf("preview_chars must not be negative, got %d", c.PreviewChars)
	}
	if c.Server.MaxConns < 1 {
		return fmt.Errorf("server.max_conns must be at least 1, got %d", c.Server.MaxConns)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Keyspace returns the configured brute-force range.
func (c Config) Keyspace() cryptanalysis.Keyspace {
	return cryptanalysis.Keyspace{Min: c.Crack.MinShift, Max: c.Crack.MaxShift}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", level)
	}
	return l, nil
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, homeDirName, homeFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data, "toml"); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func loadLocalConfig(cfg *Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	path := filepath.Join(wd, localFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data, "yaml"); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// fileConfig mirrors Config with pointer fields so that only keys present
// in a file override what is already resolved.
type fileConfig struct {
	DictionaryPath *string           `yaml:"dictionary_path" toml:"dictionary_path"`
	RecipesDir     *string           `yaml:"recipes_dir" toml:"recipes_dir"`
	HistoryPath    *string           `yaml:"history_path" toml:"history_path"`
	OutputDir      *string           `yaml:"output_dir" toml:"output_dir"`
	AuditLogPath   *string           `yaml:"audit_log" toml:"audit_log"`
	LogLevel       *string           `yaml:"log_level" toml:"log_level"`
	PreviewChars   *int              `yaml:"preview_chars" toml:"preview_chars"`
	Server         *fileServerConfig `yaml:"server" toml:"server"`
	Crack          *fileCrackConfig  `yaml:"crack" toml:"crack"`
}

type fileServerConfig struct {
	Addr        *string `yaml:"addr" toml:"addr"`
	MetricsAddr *string `yaml:"metrics_addr" toml:"metrics_addr"`
	MaxConns    *int    `yaml:"max_conns" toml:"max_conns"`
}

type fileCrackConfig struct {
	MinShift *int `yaml:"min_shift" toml:"min_shift"`
	MaxShift *int `yaml:"max_shift" toml:"max_shift"`
	Workers  *int `yaml:"workers" toml:"workers"`
}

func applyFileConfig(cfg *Config, data []byte, format string) error {
	var fc fileConfig
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return err
		}
	case "toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	setString(&cfg.DictionaryPath, fc.DictionaryPath)
	setString(&cfg.RecipesDir, fc.RecipesDir)
	setString(&cfg.HistoryPath, fc.HistoryPath)
	setString(&cfg.OutputDir, fc.OutputDir)
	setString(&cfg.AuditLogPath, fc.AuditLogPath)
	setString(&cfg.LogLevel, fc.LogLevel)
	setInt(&cfg.PreviewChars, fc.PreviewChars)
	if fc.Server != nil {
		setString(&cfg.Server.Addr, fc.Server.Addr)
		setString(&cfg.Server.MetricsAddr, fc.Server.MetricsAddr)
		setInt(&cfg.Server.MaxConns, fc.Server.MaxConns)
	}
	if fc.Crack != nil {
		setInt(&cfg.Crack.MinShift, fc.Crack.MinShift)
		setInt(&cfg.Crack.MaxShift, fc.Crack.MaxShift)
		setInt(&cfg.Crack.Workers, fc.Crack.Workers)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyEnvOverrides(cfg *Config) {
	if val, ok := env.Lookup("CIFRA_DICTIONARY", "CIFRA_DICT"); ok {
		cfg.DictionaryPath = val
	}
	if val, ok := env.Lookup("CIFRA_RECIPES"); ok {
		cfg.RecipesDir = val
	}
	if val, ok := env.Lookup("CIFRA_HISTORY"); ok {
		cfg.HistoryPath = val
	}
	if val, ok := env.Lookup("CIFRA_OUT"); ok {
		cfg.OutputDir = val
	}
	if val, ok := env.Lookup("CIFRA_AUDIT_LOG"); ok {
		cfg.AuditLogPath = val
	}
	if val, ok := env.Lookup("CIFRA_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := env.Lookup("CIFRA_SERVER"); ok {
		cfg.Server.Addr = val
	}
	if val, ok := env.Lookup("CIFRA_METRICS_ADDR"); ok {
		cfg.Server.MetricsAddr = val
	}
	if val, ok := env.Lookup("CIFRA_WORKERS"); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Crack.Workers = parsed
		}
	}
}
