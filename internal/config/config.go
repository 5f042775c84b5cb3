// Package config loads CLI settings with the precedence
// defaults < config file < environment < flags. A .env file in the
// working directory is loaded first when present, matching the original
// tooling's dotenv behavior.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvRPCURL = "SSWAP_RPC_URL"
	// EnvRPCURLCompat matches the variable the original tooling reads.
	EnvRPCURLCompat = "RPC_URL"
	EnvNetwork      = "SSWAP_NETWORK"
	EnvJournalPath  = "SSWAP_JOURNAL_PATH"
	EnvLogLevel     = "SSWAP_LOG_LEVEL"
)

type GlobalFlags struct {
	ConfigPath string
	Network    string
	RPCURL     string
	JSON       bool
	Timeout    string
	LogLevel   string
}

type Settings struct {
	Network         string
	RPCURL          string
	JSON            bool
	Timeout         time.Duration
	LogLevel        string
	Slippage        float64
	JournalPath     string
	JournalLockPath string
}

type fileConfig struct {
	Network  string   `yaml:"network"`
	RPCURL   string   `yaml:"rpc_url"`
	Timeout  string   `yaml:"timeout"`
	Slippage *float64 `yaml:"slippage"`
	LogLevel string   `yaml:"log_level"`
	Journal  struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
}

func Load(flags GlobalFlags) (Settings, error) {
	_ = godotenv.Load()

	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 2 * time.Minute
	}
	if settings.Slippage < 0 || settings.Slippage >= 1 {
		return Settings{}, fmt.Errorf("slippage %v outside [0,1)", settings.Slippage)
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Network:         "mainnet",
		Timeout:         2 * time.Minute,
		LogLevel:        "info",
		Slippage:        0.01,
		JournalPath:     filepath.Join(dataDir, "journal.db"),
		JournalLockPath: filepath.Join(dataDir, "journal.lock"),
	}, nil
}

func resolveConfigPath(override string) (string, error) {
	if clean := strings.TrimSpace(override); clean != "" {
		return clean, nil
	}
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return "", nil
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "sswap", "config.yaml"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.Network != "" {
		settings.Network = cfg.Network
	}
	if cfg.RPCURL != "" {
		settings.RPCURL = cfg.RPCURL
	}
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("parse config timeout: %w", err)
		}
		settings.Timeout = parsed
	}
	if cfg.Slippage != nil {
		settings.Slippage = *cfg.Slippage
	}
	if cfg.LogLevel != "" {
		settings.LogLevel = cfg.LogLevel
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := strings.TrimSpace(os.Getenv(EnvNetwork)); v != "" {
		settings.Network = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRPCURL)); v != "" {
		settings.RPCURL = v
	} else if v := strings.TrimSpace(os.Getenv(EnvRPCURLCompat)); v != "" {
		settings.RPCURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalPath)); v != "" {
		settings.JournalPath = v
		settings.JournalLockPath = v + ".lock"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		settings.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("SSWAP_SLIPPAGE")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			settings.Slippage = parsed
		}
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.Network != "" {
		settings.Network = flags.Network
	}
	if flags.RPCURL != "" {
		settings.RPCURL = flags.RPCURL
	}
	if flags.JSON {
		settings.JSON = true
	}
	if flags.LogLevel != "" {
		settings.LogLevel = flags.LogLevel
	}
	if flags.Timeout != "" {
		parsed, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = parsed
	}
	return nil
}

func defaultDataDir() (string, error) {
	base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "sswap"), nil
}
