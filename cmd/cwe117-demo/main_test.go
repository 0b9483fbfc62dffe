package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, path string) {
	t.Helper()

	data := `listen:
  http: "127.0.0.1:0"
rate_limit:
  enabled: true
  requests_per_second: 10
  burst: 50
log:
  level: "info"
  format: "json"
`

	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}

func TestRunCheckConfig_Valid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeTestConfig(t, cfgPath)

	oldCfg := configFile
	oldExit := overrideExitCode
	t.Cleanup(func() {
		configFile = oldCfg
		overrideExitCode = oldExit
	})
	configFile = cfgPath
	overrideExitCode = -1

	if err := runCheckConfig(nil, nil); err != nil {
		t.Fatalf("runCheckConfig failed: %v", err)
	}
	if overrideExitCode != -1 {
		t.Fatalf("overrideExitCode = %d, want -1 (unset)", overrideExitCode)
	}
}

func TestRunCheckConfig_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	data := `log:
  level: "verbose"
`
	if err := os.WriteFile(cfgPath, []byte(data), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	oldCfg := configFile
	oldExit := overrideExitCode
	t.Cleanup(func() {
		configFile = oldCfg
		overrideExitCode = oldExit
	})
	configFile = cfgPath
	overrideExitCode = -1

	if err := runCheckConfig(nil, nil); err != nil {
		t.Fatalf("runCheckConfig returned unexpected error: %v", err)
	}
	if overrideExitCode != ExitConfig {
		t.Fatalf("overrideExitCode = %d, want %d (ExitConfig)", overrideExitCode, ExitConfig)
	}
}

func TestRunServe_ConfigLoadFailure(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("listen: [broken"), 0600); err != nil {
		t.Fatal(err)
	}

	old := configFile
	t.Cleanup(func() { configFile = old })
	configFile = cfgPath

	if err := runServe(nil, nil); err == nil {
		t.Fatal("expected runServe to fail, got nil")
	}
}

func TestRunVersion(t *testing.T) {
	oldVersion, oldCommit, oldBuildDate := version, commit, buildDate
	t.Cleanup(func() {
		version, commit, buildDate = oldVersion, oldCommit, oldBuildDate
	})

	version = "1.2.3"
	commit = "deadbeef"
	buildDate = "2026-02-17"

	runVersion(nil, nil)
}

func TestSanitizeTo(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name: "arguments joined",
			args: []string{"hello\nworld", "a\tb"},
			want: "hello\\nworld a\\tb\n",
		},
		{
			name:  "stdin when no arguments",
			stdin: "injected line\n2024-01-01 FAKE ERROR: compromised\n",
			want:  "injected line\\n2024-01-01 FAKE ERROR: compromised\\n\n",
		},
		{
			name: "empty stdin",
			want: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := sanitizeTo(&out, strings.NewReader(tt.stdin), tt.args); err != nil {
				t.Fatalf("sanitizeTo failed: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestSanitizeCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("a\rb"))
	rootCmd.SetArgs([]string{"sanitize"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := out.String(); got != "a\\rb\n" {
		t.Errorf("output = %q, want %q", got, "a\\rb\n")
	}
}
