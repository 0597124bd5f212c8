package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/overlap"
)

// DefaultFile is the optional config file read from the working directory
const DefaultFile = "normlap.toml"

const envPrefix = "NORMLAP_"

// Config holds all configuration for the application
type Config struct {
	A    string `koanf:"a"`
	B    string `koanf:"b"`
	Pool string `koanf:"pool"`

	Seed       uint64  `koanf:"seed"`
	SigmaFloor float64 `koanf:"sigma_floor"`

	// Sampling mode prints one instance instead of a report
	Sample             string `koanf:"sample"`
	SampleFrom         string `koanf:"sample_from"`
	InstanceIterations int    `koanf:"instance_iterations"`

	Negative maxent.TuneParams `koanf:"negative"`
	Positive maxent.TuneParams `koanf:"positive"`

	JSON       bool   `koanf:"json"`
	Watch      bool   `koanf:"watch"`
	WebMode    bool   `koanf:"web"`
	Port       int    `koanf:"port"`
	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`
	LogJSON    bool   `koanf:"log_json"`
}

// RegisterFlags defines the command-line flags understood by Load
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", DefaultFile, "Path to a TOML config file")
	f.String("a", "", "Edge list of the first network")
	f.String("b", "", "Edge list of the second network")
	f.String("pool", "", "Edge list of the pool (default: union of a and b)")
	f.Uint64("seed", 0, "Seed for sampled instances (0 picks a random seed)")
	f.Float64("sigma-floor", 0, "Sigmas at or below this value are treated as undefined")

	f.String("sample", "", "Print one sampled instance instead of scoring: negative or positive")
	f.String("sample-from", "a", "Network whose degrees the sampled instance follows: a or b")
	f.Int("instance-iterations", overlap.DefaultInstanceIterations, "Fit iterations for a sampled instance")

	registerTuning(f, "neg", overlap.DefaultNegativeParams)
	registerTuning(f, "pos", overlap.DefaultPositiveParams)

	f.Bool("json", false, "Print the report as JSON")
	f.Bool("watch", false, "Re-score whenever an input file changes")
	f.Bool("web", false, "Serve the HTTP API")
	f.Int("port", 8080, "Port for the HTTP API (only used with --web)")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("log-json", false, "Write logs as JSON")
}

func registerTuning(f *pflag.FlagSet, prefix string, p maxent.TuneParams) {
	f.Int(prefix+"-iters-start", p.ItersStart, "Iterations before the first evaluation")
	f.Float64(prefix+"-change-limit", p.ChangeLimit, "Stop once the mean moves less than this")
	f.Int(prefix+"-iter-spacing", p.IterSpacing, "Iterations added per extension")
	f.Int(prefix+"-max-iterations", p.MaxIterations, "Stop extending after this many iterations")
}

// flagKey maps a flag name to its config key, e.g. neg-iters-start to
// negative.iters_start
func flagKey(name string) string {
	switch {
	case name == "config":
		return ""
	case strings.HasPrefix(name, "neg-"):
		name = "negative." + strings.TrimPrefix(name, "neg-")
	case strings.HasPrefix(name, "pos-"):
		name = "positive." + strings.TrimPrefix(name, "pos-")
	}
	return strings.ReplaceAll(name, "-", "_")
}

// envKey maps NORMLAP_NEGATIVE__ITERS_START to negative.iters_start
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func tuningDefaults(p maxent.TuneParams) map[string]interface{} {
	return map[string]interface{}{
		"iters_start":    p.ItersStart,
		"change_limit":   p.ChangeLimit,
		"iter_spacing":   p.IterSpacing,
		"max_iterations": p.MaxIterations,
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"a":                   "",
		"b":                   "",
		"pool":                "",
		"seed":                0,
		"sigma_floor":         0.0,
		"sample":              "",
		"sample_from":         "a",
		"instance_iterations": overlap.DefaultInstanceIterations,
		"negative":            tuningDefaults(overlap.DefaultNegativeParams),
		"positive":            tuningDefaults(overlap.DefaultPositiveParams),
		"json":                false,
		"watch":               false,
		"web":                 false,
		"port":                8080,
		"verbosity":           "",
		"verbose":             0,
		"log_json":            false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	path := DefaultFile
	explicit := false
	if f != nil {
		if fl := f.Lookup("config"); fl != nil {
			path = fl.Value.String()
			explicit = fl.Changed
		}
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil && explicit {
		// Only a file asked for on the command line has to exist
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	// 3. Environment Variables
	// Prefix: NORMLAP_ (e.g., NORMLAP_PORT=9090, NORMLAP_POSITIVE__MAX_ITERATIONS=5000)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		provider := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return flagKey(fl.Name), posflag.FlagVal(f, fl)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	var errs []error

	if !c.WebMode && (c.A == "" || c.B == "") {
		errs = append(errs, errors.New("both --a and --b are required unless --web is set"))
	}
	if c.Watch && (c.A == "" || c.B == "") {
		errs = append(errs, errors.New("--watch needs --a and --b"))
	}
	switch c.Sample {
	case "", "negative", "positive":
	default:
		errs = append(errs, fmt.Errorf("sample must be negative or positive, got %q", c.Sample))
	}
	if c.SampleFrom != "a" && c.SampleFrom != "b" {
		errs = append(errs, fmt.Errorf("sample_from must be a or b, got %q", c.SampleFrom))
	}
	if c.InstanceIterations < 0 {
		errs = append(errs, fmt.Errorf("instance_iterations must not be negative, got %d", c.InstanceIterations))
	}
	if c.SigmaFloor < 0 {
		errs = append(errs, fmt.Errorf("sigma_floor must not be negative, got %g", c.SigmaFloor))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	errs = append(errs, validateTuning("negative", c.Negative), validateTuning("positive", c.Positive))

	return errors.Join(errs...)
}

func validateTuning(name string, p maxent.TuneParams) error {
	if p.ItersStart < 0 || p.IterSpacing < 0 || p.MaxIterations < 0 {
		return fmt.Errorf("%s: iteration counts must not be negative (%s)", name, p.String())
	}
	if p.ChangeLimit < 0 {
		return fmt.Errorf("%s: change_limit must not be negative, got %g", name, p.ChangeLimit)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
