package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelist/internal/testsupport"
)

type cliTestEnv struct {
	server     *testsupport.CatalogServer
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	clearReelistEnv(t)

	server := testsupport.NewCatalogServer(t)
	configPath := filepath.Join(homeDir, ".config", "reelist", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, base, server.URL, extra)

	return &cliTestEnv{
		server:     server,
		configPath: configPath,
		baseDir:    base,
	}
}

func clearReelistEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TMDB_API_KEY",
		"REELIST_TMDB_BASE_URL",
		"REELIST_TMDB_LANGUAGE",
		"REELIST_USER_DATA_BACKEND",
		"REELIST_USER_DATA_PATH",
		"REELIST_DATA_DIR",
		"REELIST_LOG_LEVEL",
		"REELIST_LOG_FORMAT",
		"REELIST_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func writeTestConfig(t *testing.T, path, base, catalogURL, extra string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[tmdb]\napi_key = %q\nbase_url = %q\n\n[logging]\nlevel = \"error\"\n%s",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		testsupport.TestAPIKey,
		catalogURL,
		extra,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeConfigWithoutKey rewrites env's config with no TMDB credential.
func writeConfigWithoutKey(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[tmdb]\nbase_url = %q\n\n[logging]\nlevel = \"error\"\n",
		filepath.Join(env.baseDir, "data"),
		filepath.Join(env.baseDir, "logs"),
		env.server.URL,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (env *cliTestEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("reelist %s: %v (stderr: %s)", strings.Join(args, " "), err, stderr)
	}
	return out
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func requireNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("expected output not to contain %q\n%s", needle, haystack)
	}
}
