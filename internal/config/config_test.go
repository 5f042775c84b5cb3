package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateEnv points config and data lookups at temp dirs and clears the
// process env the loader reads.
func isolateEnv(t *testing.T) (configDir string) {
	t.Helper()
	configDir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, key := range []string{EnvNetwork, EnvRPCURL, EnvRPCURLCompat, EnvJournalPath, EnvLogLevel, "SSWAP_SLIPPAGE"} {
		t.Setenv(key, "")
	}
	return configDir
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)
	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "mainnet" {
		t.Fatalf("expected default network mainnet, got %s", settings.Network)
	}
	if settings.Timeout != 2*time.Minute {
		t.Fatalf("expected default timeout 2m, got %v", settings.Timeout)
	}
	if settings.Slippage != 0.01 {
		t.Fatalf("expected default slippage 0.01, got %v", settings.Slippage)
	}
	if settings.JournalPath == "" || settings.JournalLockPath == "" {
		t.Fatal("expected journal paths to be derived")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	configDir := isolateEnv(t)
	dir := filepath.Join(configDir, "sswap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "network: testnet\nrpc_url: https://relay.example\ntimeout: 30s\nslippage: 0.02\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "testnet" {
		t.Fatalf("expected network from file, got %s", settings.Network)
	}
	if settings.RPCURL != "https://relay.example" {
		t.Fatalf("expected rpc url from file, got %s", settings.RPCURL)
	}
	if settings.Timeout != 30*time.Second {
		t.Fatalf("expected timeout from file, got %v", settings.Timeout)
	}
	if settings.Slippage != 0.02 {
		t.Fatalf("expected slippage from file, got %v", settings.Slippage)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	configDir := isolateEnv(t)
	dir := filepath.Join(configDir, "sswap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("network: testnet\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvNetwork, "mainnet")
	t.Setenv(EnvRPCURL, "https://env.example")

	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "mainnet" {
		t.Fatalf("env must override file, got %s", settings.Network)
	}
	if settings.RPCURL != "https://env.example" {
		t.Fatalf("expected env rpc url, got %s", settings.RPCURL)
	}
}

func TestLoadCompatRPCEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvRPCURLCompat, "https://compat.example")
	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.RPCURL != "https://compat.example" {
		t.Fatalf("expected compat env rpc url, got %s", settings.RPCURL)
	}
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvNetwork, "mainnet")
	settings, err := Load(GlobalFlags{Network: "testnet", RPCURL: "https://flag.example", Timeout: "45s", JSON: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "testnet" {
		t.Fatalf("flag must override env, got %s", settings.Network)
	}
	if settings.RPCURL != "https://flag.example" {
		t.Fatalf("expected flag rpc url, got %s", settings.RPCURL)
	}
	if settings.Timeout != 45*time.Second {
		t.Fatalf("expected flag timeout, got %v", settings.Timeout)
	}
	if !settings.JSON {
		t.Fatal("expected JSON output enabled")
	}
}

func TestLoadRejectsInvalidSlippage(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SSWAP_SLIPPAGE", "1.5")
	if _, err := Load(GlobalFlags{}); err == nil {
		t.Fatal("expected error for slippage outside [0,1)")
	}
}

func TestLoadRejectsBadTimeoutFlag(t *testing.T) {
	isolateEnv(t)
	if _, err := Load(GlobalFlags{Timeout: "soon"}); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}

func TestJournalEnvDerivesLockPath(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvJournalPath, "/tmp/custom/journal.db")
	settings, err := Load(GlobalFlags{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.JournalPath != "/tmp/custom/journal.db" {
		t.Fatalf("expected env journal path, got %s", settings.JournalPath)
	}
	if settings.JournalLockPath != "/tmp/custom/journal.db.lock" {
		t.Fatalf("expected derived lock path, got %s", settings.JournalLockPath)
	}
}
