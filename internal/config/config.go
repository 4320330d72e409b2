package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "PATCHBAY_"

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application
type Config struct {
	Listen    string        `koanf:"listen"`
	URL       string        `koanf:"url"`
	Store     string        `koanf:"store"`
	PatchDir  string        `koanf:"patch_dir"`
	Redis     Redis         `koanf:"redis"`
	Kinds     string        `koanf:"kinds"`
	Verbosity string        `koanf:"verbosity"`
	NoticeTTL time.Duration `koanf:"notice_ttl"`

	// PatchKey, hex encoded, seals saved patches with AES-256 when set.
	PatchKey     string   `koanf:"patch_key"`
	OldPatchKeys []string `koanf:"old_patch_keys"`
}

// Redis configures the redis patch store.
type Redis struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

// Sources names the optional files read before the environment and flags.
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// DefaultSources looks for patchbay.toml and .env in the working directory.
func DefaultSources() Sources {
	return Sources{ConfigFile: "patchbay.toml", EnvFile: ".env"}
}

// RegisterFlags adds the flags Load understands to f.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", "", "Config file (default patchbay.toml)")
	f.String("listen", "", "Address the server listens on")
	f.String("url", "", "Websocket URL of the server")
	f.String("store", "", "Patch store: file, redis or memory")
	f.String("patch-dir", "", "Directory of the file patch store")
	f.String("redis-addr", "", "Address of the redis patch store")
	f.String("kinds", "", "Kind catalog file replacing the built-in one")
	f.StringP("verbosity", "v", "", "Log level: debug, info, warn or error")
	f.Duration("notice-ttl", 0, "How long backend messages stay visible")
	f.String("patch-key", "", "Hex AES-256 key sealing saved patches")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	src := DefaultSources()
	if f != nil {
		if path, err := f.GetString("config"); err == nil && path != "" {
			src.ConfigFile = path
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}
	return LoadFrom(src, f)
}

// LoadFrom is Load with explicit file locations. Missing files are skipped.
func LoadFrom(src Sources, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"listen":    ":8080",
		"url":       "ws://localhost:8080/socket",
		"store":     StoreFile,
		"patch_dir": "patch",
		"redis": map[string]interface{}{
			"addr":     "localhost:6379",
			"password": "",
			"db":       0,
			"prefix":   "patchbay:",
			"ttl":      "0s",
		},
		"kinds":      "",
		"verbosity":  "",
		"notice_ttl": "5s",
		"patch_key":  "",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if src.ConfigFile != "" && exists(src.ConfigFile) {
		if err := k.Load(file.Provider(src.ConfigFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src.ConfigFile, err)
		}
	}

	// 3. .env file, then environment variables (PATCHBAY_REDIS_ADDR -> redis.addr)
	if src.EnvFile != "" && exists(src.EnvFile) {
		if err := godotenv.Load(src.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src.EnvFile, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.NoticeTTL <= 0 {
		return fmt.Errorf("%w: notice_ttl must be positive", ErrInvalidConfig)
	}
	if _, _, err := c.PatchKeys(); err != nil {
		return err
	}
	return nil
}

// PatchKeys decodes PatchKey and OldPatchKeys. active is nil when patches are stored in clear.
func (c *Config) PatchKeys() (active []byte, fallback [][]byte, err error) {
	if c.PatchKey == "" {
		if len(c.OldPatchKeys) > 0 {
			return nil, nil, fmt.Errorf("%w: old_patch_keys without patch_key", ErrInvalidConfig)
		}
		return nil, nil, nil
	}
	if active, err = decodeKey("patch_key", c.PatchKey); err != nil {
		return nil, nil, err
	}
	for _, old := range c.OldPatchKeys {
		key, err := decodeKey("old_patch_keys", old)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(field, s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not hex: %v", ErrInvalidConfig, field, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: %s must be 32 bytes, got %d", ErrInvalidConfig, field, len(key))
	}
	return key, nil
}

func envKey(s string) string {
	return nestKey(strings.ToLower(strings.TrimPrefix(s, envPrefix)))
}

// flagKey maps patch-dir to patch_dir and redis-addr to redis.addr.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		if f.Name == "config" {
			return "", nil
		}
		return nestKey(strings.ReplaceAll(f.Name, "-", "_")), posflag.FlagVal(fs, f)
	}
}

// nestKey maps redis_addr to redis.addr and leaves other keys alone.
func nestKey(key string) string {
	if rest, ok := strings.CutPrefix(key, "redis_"); ok {
		return "redis." + rest
	}
	return key
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
