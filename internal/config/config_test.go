package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindConfig_Explicit(t *testing.T) {
	// Create a temp config file
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("agent:\n  url: http://localhost:9999\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_SearchPath(t *testing.T) {
	// When no config exists anywhere, should error
	// (Save and restore CWD to avoid finding the repo's config.yaml)
	dir := t.TempDir()
	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	_, err := FindConfig("")
	if err == nil {
		t.Fatal("FindConfig(\"\") with no config files should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("agent:\n  url: http://localhost:8080\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "config.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "config.yaml")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("agent:\n  token: ${GUMSHOE_TEST_TOKEN}\n"), 0600)
	os.Setenv("GUMSHOE_TEST_TOKEN", "secret123")
	defer os.Unsetenv("GUMSHOE_TEST_TOKEN")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Agent.Token != "secret123" {
		t.Errorf("token = %q, want %q", cfg.Agent.Token, "secret123")
	}
}

func TestLoad_TokenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("agent:\n  token: from-file\n"), 0600)
	os.Setenv(TokenEnv, "from-env")
	defer os.Unsetenv(TokenEnv)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Agent.Token != "from-env" {
		t.Errorf("token = %q, want %q", cfg.Agent.Token, "from-env")
	}
}

func TestLoad_StreamTimings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("stream:\n  settle_delay_sec: 1\n  timeout_sec: 60\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := cfg.Stream.SettleDelay(); got != time.Second {
		t.Errorf("SettleDelay() = %v, want 1s", got)
	}
	if got := cfg.Stream.Timeout(); got != time.Minute {
		t.Errorf("Timeout() = %v, want 1m", got)
	}
	if got := cfg.Stream.RetryFallback(); got != 0 {
		t.Errorf("RetryFallback() = %v, want 0 (unset)", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject missing agent.url")
	}

	cfg.Agent.URL = "http://localhost:8080"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject missing agent.token")
	}

	cfg.Agent.Token = "tok"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
