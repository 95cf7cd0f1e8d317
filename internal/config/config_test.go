package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEnvOverridesYAML(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, configFileName)
	if err := os.WriteFile(cfgPath, []byte("address: \"127.0.0.1:1\"\ndir: \"store\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, tmp)

	t.Setenv("S6_HCS_ADDRESS", "0.0.0.0:9999")
	t.Setenv("S6_HCS_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Address != "0.0.0.0:9999" {
		t.Fatalf("expected env override address, got %q", cfg.Address)
	}
	want := filepath.Join(tmp, "store")
	if cfg.Dir != want {
		t.Fatalf("expected resolved dir %q, got %q", want, cfg.Dir)
	}
}

func TestLoadDefaultAddressWithoutYAML(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv("S6_HCS_ADDRESS", "")
	t.Setenv("S6_HCS_DIR", filepath.Join(tmp, "store"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Address != defaultAddress {
		t.Fatalf("expected default address %q, got %q", defaultAddress, cfg.Address)
	}
}

func TestLoadFailsWithoutDir(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)
	t.Setenv("S6_HCS_ADDRESS", "")
	t.Setenv("S6_HCS_DIR", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "dir is required") {
		t.Fatalf("expected dir-required error, got %v", err)
	}
}

// chdir switches to dir for the duration of the test and restores the
// previous working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
}
