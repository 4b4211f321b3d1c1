package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Easy-Infra-Ltd/policyrisk/src/curation"
)

// Config is the top-level client configuration, loaded from JSON or YAML.
type Config struct {
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Upstream UpstreamConfig `json:"upstream" yaml:"upstream"`
	Viewer   ViewerConfig   `json:"viewer" yaml:"viewer"`
	Curation CurationConfig `json:"curation" yaml:"curation"`
	Locale   string         `json:"locale" yaml:"locale"`
}

// AnalysisConfig locates the external analysis service.
type AnalysisConfig struct {
	BaseURL        string `json:"baseURL" yaml:"baseURL"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// UpstreamConfig controls how agent clients reach the MCP tools.
type UpstreamConfig struct {
	Transport string     `json:"transport" yaml:"transport"` // "stdio" or "http"
	HTTP      HTTPConfig `json:"http" yaml:"http"`
}

// HTTPConfig holds HTTP listener settings.
type HTTPConfig struct {
	Addr string `json:"addr" yaml:"addr"` // e.g. ":8080"
	Path string `json:"path" yaml:"path"` // e.g. "/mcp"
}

// ViewerConfig controls the HTTP viewer API consumed by the web front end.
type ViewerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
}

// CurationConfig controls the evidence quote rule registry.
// Nil fields take defaults; when used as an override, non-nil fields win.
type CurationConfig struct {
	MinQuoteChars       *int     `json:"minQuoteChars,omitempty" yaml:"minQuoteChars,omitempty"`
	DisableBuiltInRules *bool    `json:"disableBuiltInRules,omitempty" yaml:"disableBuiltInRules,omitempty"`
	CustomRulePatterns  []string `json:"customRulePatterns,omitempty" yaml:"customRulePatterns,omitempty"`
	MaxFindings         *int     `json:"maxFindings,omitempty" yaml:"maxFindings,omitempty"`
}

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	DefaultBaseURL        = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 300
	DefaultHTTPAddr       = ":8080"
	DefaultHTTPPath       = "/mcp"
	DefaultViewerAddr     = ":8090"
	DefaultMinQuoteChars  = 12
	DefaultMaxFindings    = 5
	DefaultLocale         = "ko"

	// EnvBaseURL overrides analysis.baseURL.
	EnvBaseURL = "POLICYRISK_API_BASE"
)

// DefaultAllowedOrigins are the local web front end origins.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Load reads and parses a config file, applies defaults and environment
// overrides, and validates. An empty path yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := unmarshal(path, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.BaseURL == "" {
		cfg.Analysis.BaseURL = DefaultBaseURL
	}
	if cfg.Analysis.TimeoutSeconds == 0 {
		cfg.Analysis.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if cfg.Upstream.Transport == "" {
		cfg.Upstream.Transport = TransportStdio
	}
	if cfg.Upstream.HTTP.Addr == "" {
		cfg.Upstream.HTTP.Addr = DefaultHTTPAddr
	}
	if cfg.Upstream.HTTP.Path == "" {
		cfg.Upstream.HTTP.Path = DefaultHTTPPath
	}

	if cfg.Viewer.Addr == "" {
		cfg.Viewer.Addr = DefaultViewerAddr
	}
	if len(cfg.Viewer.AllowedOrigins) == 0 {
		cfg.Viewer.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}

	if cfg.Curation.MinQuoteChars == nil {
		cfg.Curation.MinQuoteChars = intPtr(DefaultMinQuoteChars)
	}
	if cfg.Curation.DisableBuiltInRules == nil {
		cfg.Curation.DisableBuiltInRules = boolPtr(false)
	}
	if cfg.Curation.MaxFindings == nil {
		cfg.Curation.MaxFindings = intPtr(DefaultMaxFindings)
	}

	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Analysis.BaseURL = v
	}
}

// Validate checks a fully defaulted config. Load calls it; callers that
// change a loaded config should call it again.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.Analysis.BaseURL)
	if err != nil {
		return fmt.Errorf("analysis baseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("analysis baseURL must be http or https, got %q", cfg.Analysis.BaseURL)
	}
	if cfg.Analysis.TimeoutSeconds < 0 {
		return fmt.Errorf("analysis timeoutSeconds must not be negative, got %d", cfg.Analysis.TimeoutSeconds)
	}

	if cfg.Upstream.Transport != TransportStdio && cfg.Upstream.Transport != TransportHTTP {
		return fmt.Errorf("upstream transport must be %q or %q, got %q",
			TransportStdio, TransportHTTP, cfg.Upstream.Transport)
	}

	if cfg.Curation.MinQuoteChars != nil && *cfg.Curation.MinQuoteChars < 0 {
		return fmt.Errorf("curation.minQuoteChars must not be negative, got %d", *cfg.Curation.MinQuoteChars)
	}
	if cfg.Curation.MaxFindings != nil && *cfg.Curation.MaxFindings < 1 {
		return fmt.Errorf("curation.maxFindings must be at least 1, got %d", *cfg.Curation.MaxFindings)
	}

	var errs []error
	for i, pattern := range cfg.Curation.CustomRulePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("curation.customRulePatterns[%d]: invalid regex %q: %w", i, pattern, err))
		}
	}

	return errors.Join(errs...)
}

// Merge returns a CurationConfig with override applied on top of global.
// Fields that are nil in the override use the global value.
func Merge(global, override *CurationConfig) CurationConfig {
	if override == nil {
		return *global
	}

	merged := *global

	if override.MinQuoteChars != nil {
		merged.MinQuoteChars = override.MinQuoteChars
	}
	if override.DisableBuiltInRules != nil {
		merged.DisableBuiltInRules = override.DisableBuiltInRules
	}
	if len(override.CustomRulePatterns) > 0 {
		merged.CustomRulePatterns = override.CustomRulePatterns
	}
	if override.MaxFindings != nil {
		merged.MaxFindings = override.MaxFindings
	}

	return merged
}

// Timeout returns the analysis request timeout.
func (c AnalysisConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Options converts the config into curator options, falling back to
// defaults for unset fields.
func (c CurationConfig) Options() curation.Options {
	opts := curation.DefaultOptions()
	if c.MinQuoteChars != nil {
		opts.MinQuoteChars = *c.MinQuoteChars
	}
	opts.DisableBuiltInRules = deref(c.DisableBuiltInRules)
	opts.CustomRulePatterns = c.CustomRulePatterns
	return opts
}

// Findings returns the configured number of top findings to present.
func (c CurationConfig) Findings() int {
	if c.MaxFindings == nil || *c.MaxFindings < 1 {
		return DefaultMaxFindings
	}
	return *c.MaxFindings
}

func deref(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
