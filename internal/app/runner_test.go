package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hbarlabs/sswap/internal/registry"
)

// isolateEnv keeps command runs from touching the real config and data
// directories or picking up ambient environment overrides.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, key := range []string{"SSWAP_NETWORK", "SSWAP_RPC_URL", "RPC_URL", "SSWAP_JOURNAL_PATH", "SSWAP_LOG_LEVEL", "SSWAP_SLIPPAGE"} {
		t.Setenv(key, "")
	}
}

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := NewRunnerWithWriters(&stdout, &stderr).Run(args)
	return code, stdout.String(), stderr.String()
}

func TestVersionCommand(t *testing.T) {
	isolateEnv(t)
	code, stdout, _ := runCommand(t, "version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout, "sswap "+version) {
		t.Fatalf("unexpected version output %q", stdout)
	}
}

func TestTokensCommandListsRegistry(t *testing.T) {
	isolateEnv(t)
	code, stdout, stderr := runCommand(t, "tokens")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	for _, symbol := range []string{"USDC", "WHBAR", "SAUCE", "WBTC"} {
		if !strings.Contains(stdout, symbol) {
			t.Errorf("expected %s in output, got %q", symbol, stdout)
		}
	}
}

func TestTokensCommandHonorsNetworkFlag(t *testing.T) {
	isolateEnv(t)
	code, stdout, stderr := runCommand(t, "tokens", "--network", "testnet")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if !strings.Contains(stdout, "0.0.429274") {
		t.Fatalf("expected testnet USDC id in output, got %q", stdout)
	}
	if strings.Contains(stdout, "SAUCE") {
		t.Fatalf("mainnet-only token leaked into testnet output: %q", stdout)
	}
}

func TestTokensCommandJSON(t *testing.T) {
	isolateEnv(t)
	code, stdout, _ := runCommand(t, "tokens", "--json")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(strings.TrimSpace(stdout), "[") {
		t.Fatalf("expected JSON array output, got %q", stdout)
	}
}

func TestUnknownNetworkFails(t *testing.T) {
	isolateEnv(t)
	code, _, stderr := runCommand(t, "tokens", "--network", "previewnet")
	if code == 0 {
		t.Fatal("expected non-zero exit for unknown network")
	}
	if !strings.Contains(stderr, "previewnet") {
		t.Fatalf("expected network name in error, got %q", stderr)
	}
}

func TestHistoryCommandEmptyJournal(t *testing.T) {
	isolateEnv(t)
	code, stdout, stderr := runCommand(t, "history")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if strings.TrimSpace(stdout) != "" {
		t.Fatalf("expected empty history, got %q", stdout)
	}
}

func TestQuoteCommandRequiresFlags(t *testing.T) {
	isolateEnv(t)
	code, _, _ := runCommand(t, "quote")
	if code == 0 {
		t.Fatal("expected non-zero exit when required flags are missing")
	}
}

func TestResolveTokenHandlesSentinelAndSymbols(t *testing.T) {
	s := &runtimeState{net: registry.Mainnet()}
	ctx := context.Background()

	token, err := s.resolveToken(ctx, "hbar", -1)
	if err != nil {
		t.Fatalf("resolve HBAR: %v", err)
	}
	if token.id != registry.NativeSymbol || token.decimals != registry.HBARDecimals {
		t.Fatalf("unexpected HBAR resolution: %+v", token)
	}

	token, err = s.resolveToken(ctx, "usdc", -1)
	if err != nil {
		t.Fatalf("resolve USDC: %v", err)
	}
	if token.id != "0.0.456858" || token.decimals != 6 {
		t.Fatalf("unexpected USDC resolution: %+v", token)
	}

	token, err = s.resolveToken(ctx, "0.0.999999", 4)
	if err != nil {
		t.Fatalf("resolve raw id with decimals: %v", err)
	}
	if token.id != "0.0.999999" || token.decimals != 4 {
		t.Fatalf("unexpected raw id resolution: %+v", token)
	}

	if _, err := s.resolveToken(ctx, "definitely-not-a-token", -1); err == nil {
		t.Fatal("expected error for unresolvable token")
	}
}
