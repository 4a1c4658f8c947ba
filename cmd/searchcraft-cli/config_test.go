package main

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct {
		endpoint, key, keyType, profile, format string
	}{flagEndpoint, flagKey, flagKeyType, flagProfile, flagFmt}
	t.Cleanup(func() {
		flagEndpoint = orig.endpoint
		flagKey = orig.key
		flagKeyType = orig.keyType
		flagProfile = orig.profile
		flagFmt = orig.format
		apiClient = nil
	})
	flagEndpoint, flagKey, flagKeyType, flagProfile = "", "", "", ""
}

// isolateEnv points HOME at a temp dir and clears the SEARCHCRAFT_* variables.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"SEARCHCRAFT_ENDPOINT", "SEARCHCRAFT_API_KEY", "SEARCHCRAFT_KEY_TYPE", "SEARCHCRAFT_PROFILE",
	} {
		t.Setenv(key, "")
	}
	return home
}

func writeProfiles(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".searchcraft")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const twoProfiles = `
active_profile: staging
profiles:
  default:
    endpoint: http://default:8000
    api_key: default-key
  staging:
    endpoint: http://staging:8000
    api_key: staging-key
    key_type: read
`

func TestResolveConfigEnv(t *testing.T) {
	resetFlags(t)
	isolateEnv(t)
	t.Setenv("SEARCHCRAFT_ENDPOINT", "http://env:8000")
	t.Setenv("SEARCHCRAFT_API_KEY", "env-key")
	t.Setenv("SEARCHCRAFT_KEY_TYPE", "ingest")

	resolveConfig()

	if flagEndpoint != "http://env:8000" {
		t.Errorf("endpoint: got %q", flagEndpoint)
	}
	if flagKey != "env-key" {
		t.Errorf("api key: got %q", flagKey)
	}
	if flagKeyType != "ingest" {
		t.Errorf("key type: got %q", flagKeyType)
	}
}

func TestResolveConfigFlagTakesPrecedenceOverEnv(t *testing.T) {
	resetFlags(t)
	isolateEnv(t)
	t.Setenv("SEARCHCRAFT_ENDPOINT", "http://env:8000")

	flagEndpoint = "http://explicit:1234"
	resolveConfig()

	if flagEndpoint != "http://explicit:1234" {
		t.Errorf("explicit flag should win; got %q", flagEndpoint)
	}
}

func TestResolveConfigDefaultsToAdminKey(t *testing.T) {
	resetFlags(t)
	isolateEnv(t)

	resolveConfig()

	if flagKeyType != "admin" {
		t.Errorf("key type: got %q, want admin", flagKeyType)
	}
	if flagEndpoint != "" {
		t.Errorf("endpoint should stay empty without config, got %q", flagEndpoint)
	}
}

func TestResolveConfigActiveProfile(t *testing.T) {
	resetFlags(t)
	home := isolateEnv(t)
	writeProfiles(t, home, twoProfiles)

	resolveConfig()

	if flagEndpoint != "http://staging:8000" {
		t.Errorf("endpoint: got %q", flagEndpoint)
	}
	if flagKey != "staging-key" {
		t.Errorf("api key: got %q", flagKey)
	}
	if flagKeyType != "read" {
		t.Errorf("key type: got %q", flagKeyType)
	}
}

func TestResolveConfigProfileSelection(t *testing.T) {
	tests := []struct {
		name         string
		flag, env    string
		wantEndpoint string
	}{
		{"env overrides active profile", "", "default", "http://default:8000"},
		{"flag overrides env", "staging", "default", "http://staging:8000"},
		{"unknown profile leaves endpoint empty", "missing", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			home := isolateEnv(t)
			writeProfiles(t, home, twoProfiles)
			t.Setenv("SEARCHCRAFT_PROFILE", tc.env)
			flagProfile = tc.flag

			resolveConfig()

			if flagEndpoint != tc.wantEndpoint {
				t.Errorf("endpoint: got %q, want %q", flagEndpoint, tc.wantEndpoint)
			}
		})
	}
}

func TestResolveConfigEnvBeatsProfile(t *testing.T) {
	resetFlags(t)
	home := isolateEnv(t)
	writeProfiles(t, home, twoProfiles)
	t.Setenv("SEARCHCRAFT_API_KEY", "env-key")

	resolveConfig()

	if flagKey != "env-key" {
		t.Errorf("api key: got %q, want env-key", flagKey)
	}
	if flagEndpoint != "http://staging:8000" {
		t.Errorf("endpoint should still come from profile, got %q", flagEndpoint)
	}
}

func TestWriteConfigKeepsOtherProfiles(t *testing.T) {
	resetFlags(t)
	home := isolateEnv(t)
	writeProfiles(t, home, twoProfiles)

	path, err := writeConfig("prod", profileConfig{Endpoint: "http://prod:8000", APIKey: "prod-key", KeyType: "admin"})
	if err != nil {
		t.Fatalf("writeConfig: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode: got %o, want 600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg profilesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.ActiveProfile != "prod" {
		t.Errorf("active profile: got %q", cfg.ActiveProfile)
	}
	if len(cfg.Profiles) != 3 {
		t.Errorf("profiles: got %d, want 3", len(cfg.Profiles))
	}
	if cfg.Profiles["staging"].APIKey != "staging-key" {
		t.Error("existing profile was not preserved")
	}
}

func TestWriteConfigCreatesDirectory(t *testing.T) {
	resetFlags(t)
	home := isolateEnv(t)

	path, err := writeConfig("default", profileConfig{Endpoint: "http://a", APIKey: "k"})
	if err != nil {
		t.Fatalf("writeConfig: %v", err)
	}
	if want := filepath.Join(home, ".searchcraft", "config.yaml"); path != want {
		t.Errorf("path: got %q, want %q", path, want)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("dir mode: got %o, want 700", perm)
	}
}
