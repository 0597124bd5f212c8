package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ritzau/normlap/pkg/overlap"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("normlap", pflag.ContinueOnError)
	RegisterFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return f
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Negative != overlap.DefaultNegativeParams {
		t.Errorf("Negative = %+v, want %+v", cfg.Negative, overlap.DefaultNegativeParams)
	}
	if cfg.Positive != overlap.DefaultPositiveParams {
		t.Errorf("Positive = %+v, want %+v", cfg.Positive, overlap.DefaultPositiveParams)
	}
	if cfg.Port != 8080 || cfg.SigmaFloor != 0 || cfg.WebMode {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Sample != "" || cfg.SampleFrom != "a" || cfg.InstanceIterations != overlap.DefaultInstanceIterations {
		t.Errorf("sampling defaults = %q %q %d", cfg.Sample, cfg.SampleFrom, cfg.InstanceIterations)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := "port = 9000\nsigma_floor = 0.5\n\n[negative]\nchange_limit = 0.25\niters_start = 11\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NORMLAP_POSITIVE__MAX_ITERATIONS", "300")
	t.Setenv("NORMLAP_NEGATIVE__ITERS_START", "22")

	cfg, err := Load(newFlags(t,
		"--config", path,
		"--a", "one.tsv",
		"--b=two.tsv",
		"--neg-iters-start", "33",
		"-vv",
	))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file", cfg.Port, 9000},
		{"file float", cfg.SigmaFloor, 0.5},
		{"file nested", cfg.Negative.ChangeLimit, 0.25},
		{"env nested", cfg.Positive.MaxIterations, 300},
		{"flag beats env and file", cfg.Negative.ItersStart, 33},
		{"untouched default", cfg.Positive.ItersStart, overlap.DefaultPositiveParams.ItersStart},
		{"flag string", cfg.A, "one.tsv"},
		{"count flag", cfg.VerboseCnt, 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "absent.toml")))
	if err == nil {
		t.Errorf("Load() with a missing --config file returned no error")
	}
}

func TestFlagKey(t *testing.T) {
	tests := map[string]string{
		"neg-iters-start":    "negative.iters_start",
		"pos-max-iterations": "positive.max_iterations",
		"sigma-floor":        "sigma_floor",
		"log-json":           "log_json",
		"port":               "port",
		"config":             "",
	}
	for in, want := range tests {
		if got := flagKey(in); got != want {
			t.Errorf("flagKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Config{A: "a", B: "b", SampleFrom: "a", Port: 8080, Negative: overlap.DefaultNegativeParams, Positive: overlap.DefaultPositiveParams}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"web without inputs", func(c *Config) { c.A, c.B, c.WebMode = "", "", true }, ""},
		{"missing input", func(c *Config) { c.B = "" }, "--a and --b"},
		{"negative floor", func(c *Config) { c.SigmaFloor = -1 }, "sigma_floor"},
		{"bad port", func(c *Config) { c.Port = 0 }, "port"},
		{"unknown sample", func(c *Config) { c.Sample = "both" }, "sample must be"},
		{"sample from pool", func(c *Config) { c.SampleFrom = "pool" }, "sample_from"},
		{"negative spacing", func(c *Config) { c.Positive.IterSpacing = -1 }, "positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
