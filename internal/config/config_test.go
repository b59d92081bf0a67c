// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/enhancify")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Upload.WindowLimit != 2 {
		t.Errorf("upload window limit = %d, want 2", c.Upload.WindowLimit)
	}
	if c.Upload.Window != 7*24*time.Hour {
		t.Errorf("upload window = %s, want 168h", c.Upload.Window)
	}
	if c.Upload.MaxBytes != 5<<20 {
		t.Errorf("upload max bytes = %d, want %d", c.Upload.MaxBytes, 5<<20)
	}
	if !c.LLM.RequireJobDescription {
		t.Errorf("job description should be required by default")
	}
	if c.LLM.MaxTokens != 5000 {
		t.Errorf("llm max tokens = %d, want 5000", c.LLM.MaxTokens)
	}
	if c.History.Retention != 30*24*time.Hour {
		t.Errorf("history retention = %s, want 720h", c.History.Retention)
	}
	if c.Billing.Validity != 30*24*time.Hour {
		t.Errorf("billing validity = %s, want 720h", c.Billing.Validity)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPLOAD_WINDOW", "24h")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "upload:\n  window: 72h\n  window_limit: 5\nusage:\n  timezone: Asia/Manila\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Upload.Window != 24*time.Hour {
		t.Errorf("env should win over file, got %s", c.Upload.Window)
	}
	if c.Upload.WindowLimit != 5 {
		t.Errorf("file value should win over default, got %d", c.Upload.WindowLimit)
	}
	if c.Usage.Location().String() != "Asia/Manila" {
		t.Errorf("location = %s", c.Usage.Location())
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Name != "Enhancify" {
		t.Errorf("app name = %q", c.App.Name)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"missing api key": {
			env:  map[string]string{"ANTHROPIC_API_KEY": ""},
			want: "ANTHROPIC_API_KEY",
		},
		"mock in production": {
			env: map[string]string{
				"ENVIRONMENT":           "production",
				"LLM_MOCK":              "true",
				"SESSION_COOKIE_SECURE": "true",
			},
			want: "LLM_MOCK",
		},
		"insecure cookie in production": {
			env:  map[string]string{"ENVIRONMENT": "production"},
			want: "SESSION_COOKIE_SECURE",
		},
		"bad timezone": {
			env:  map[string]string{"USAGE_TIMEZONE": "Mars/Olympus"},
			want: "usage.timezone",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := load("", "")
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
