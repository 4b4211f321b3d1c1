package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	cfg := `{
		"analysis": {"baseURL": "http://analysis.internal:9000", "timeoutSeconds": 60},
		"upstream": {"transport": "http", "http": {"addr": ":9090", "path": "/tools"}},
		"viewer": {"addr": ":7000", "allowedOrigins": ["https://reports.example.com"]},
		"curation": {"minQuoteChars": 20, "maxFindings": 3},
		"locale": "en"
	}`

	path := writeTemp(t, "config.json", cfg)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Analysis.BaseURL != "http://analysis.internal:9000" {
		t.Errorf("baseURL = %q, want http://analysis.internal:9000", got.Analysis.BaseURL)
	}
	if got.Analysis.Timeout() != time.Minute {
		t.Errorf("timeout = %v, want 1m", got.Analysis.Timeout())
	}
	if got.Upstream.Transport != TransportHTTP {
		t.Errorf("upstream transport = %q, want %q", got.Upstream.Transport, TransportHTTP)
	}
	if got.Upstream.HTTP.Path != "/tools" {
		t.Errorf("http path = %q, want /tools", got.Upstream.HTTP.Path)
	}
	if got.Viewer.Addr != ":7000" {
		t.Errorf("viewer addr = %q, want :7000", got.Viewer.Addr)
	}
	if len(got.Viewer.AllowedOrigins) != 1 {
		t.Errorf("allowed origins = %v, want one entry", got.Viewer.AllowedOrigins)
	}
	if *got.Curation.MinQuoteChars != 20 {
		t.Errorf("minQuoteChars = %d, want 20", *got.Curation.MinQuoteChars)
	}
	if got.Curation.Findings() != 3 {
		t.Errorf("findings = %d, want 3", got.Curation.Findings())
	}
	if got.Locale != "en" {
		t.Errorf("locale = %q, want en", got.Locale)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	path := writeTemp(t, "config.json", `{}`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDefaults(t, got)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	got, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDefaults(t, got)
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	cfg := `
analysis:
  baseURL: https://analysis.example.com
upstream:
  transport: http
curation:
  disableBuiltInRules: true
  customRulePatterns:
    - "internal\\s+only"
`
	path := writeTemp(t, "config.yaml", cfg)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Analysis.BaseURL != "https://analysis.example.com" {
		t.Errorf("baseURL = %q", got.Analysis.BaseURL)
	}
	if got.Upstream.Transport != TransportHTTP {
		t.Errorf("upstream transport = %q, want %q", got.Upstream.Transport, TransportHTTP)
	}
	if !*got.Curation.DisableBuiltInRules {
		t.Error("disableBuiltInRules should be true")
	}
	if len(got.Curation.CustomRulePatterns) != 1 || got.Curation.CustomRulePatterns[0] != `internal\s+only` {
		t.Errorf("custom patterns = %v", got.Curation.CustomRulePatterns)
	}
}

func TestLoad_EnvOverridesBaseURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://10.0.0.5:8000")

	path := writeTemp(t, "config.json", `{"analysis": {"baseURL": "http://ignored:1"}}`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Analysis.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("baseURL = %q, want env value", got.Analysis.BaseURL)
	}
}

func TestLoad_InvalidTransport(t *testing.T) {
	path := writeTemp(t, "config.json", `{"upstream": {"transport": "grpc"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid transport")
	}
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	path := writeTemp(t, "config.json", `{"analysis": {"baseURL": "ftp://files.example.com"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-http base URL")
	}
}

func TestLoad_NegativeMinQuoteChars(t *testing.T) {
	path := writeTemp(t, "config.json", `{"curation": {"minQuoteChars": -1}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative minQuoteChars")
	}
}

func TestLoad_ZeroMaxFindings(t *testing.T) {
	path := writeTemp(t, "config.json", `{"curation": {"maxFindings": 0}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for maxFindings 0")
	}
}

func TestLoad_InvalidRegex(t *testing.T) {
	cfg := `{
		"curation": {"customRulePatterns": ["[invalid", "(also"]}
	}`
	path := writeTemp(t, "config.json", cfg)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/config.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeTemp(t, "config.json", `{not json}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestMerge_NilOverride(t *testing.T) {
	global := CurationConfig{MinQuoteChars: intPtr(12)}
	merged := Merge(&global, nil)
	if *merged.MinQuoteChars != 12 {
		t.Errorf("minQuoteChars = %d, want 12", *merged.MinQuoteChars)
	}
}

func TestMerge_OverrideFields(t *testing.T) {
	global := CurationConfig{
		MinQuoteChars:       intPtr(12),
		DisableBuiltInRules: boolPtr(false),
		MaxFindings:         intPtr(5),
	}
	override := CurationConfig{
		DisableBuiltInRules: boolPtr(true),
		MaxFindings:         intPtr(10),
	}

	merged := Merge(&global, &override)

	if *merged.MinQuoteChars != 12 {
		t.Errorf("minQuoteChars = %d, want 12 (from global)", *merged.MinQuoteChars)
	}
	if !*merged.DisableBuiltInRules {
		t.Error("disableBuiltInRules should be true (overridden)")
	}
	if *merged.MaxFindings != 10 {
		t.Errorf("maxFindings = %d, want 10 (overridden)", *merged.MaxFindings)
	}
}

func TestMerge_CustomPatternsOverride(t *testing.T) {
	global := CurationConfig{CustomRulePatterns: []string{"global_pattern"}}
	override := CurationConfig{CustomRulePatterns: []string{"override_pattern"}}

	merged := Merge(&global, &override)

	if len(merged.CustomRulePatterns) != 1 || merged.CustomRulePatterns[0] != "override_pattern" {
		t.Errorf("custom patterns = %v, want [override_pattern]", merged.CustomRulePatterns)
	}
}

func TestCurationOptions(t *testing.T) {
	opts := CurationConfig{}.Options()
	if opts.MinQuoteChars != DefaultMinQuoteChars {
		t.Errorf("default minQuoteChars = %d, want %d", opts.MinQuoteChars, DefaultMinQuoteChars)
	}
	if opts.DisableBuiltInRules {
		t.Error("built-in rules should be enabled by default")
	}

	opts = CurationConfig{
		MinQuoteChars:       intPtr(4),
		DisableBuiltInRules: boolPtr(true),
		CustomRulePatterns:  []string{"x"},
	}.Options()
	if opts.MinQuoteChars != 4 || !opts.DisableBuiltInRules || len(opts.CustomRulePatterns) != 1 {
		t.Errorf("options = %+v", opts)
	}
}

func assertDefaults(t *testing.T, got Config) {
	t.Helper()

	if got.Analysis.BaseURL != DefaultBaseURL {
		t.Errorf("default baseURL = %q, want %q", got.Analysis.BaseURL, DefaultBaseURL)
	}
	if got.Analysis.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("default timeout = %d, want %d", got.Analysis.TimeoutSeconds, DefaultTimeoutSeconds)
	}
	if got.Upstream.Transport != TransportStdio {
		t.Errorf("default upstream transport = %q, want %q", got.Upstream.Transport, TransportStdio)
	}
	if got.Upstream.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("default http addr = %q, want %q", got.Upstream.HTTP.Addr, DefaultHTTPAddr)
	}
	if got.Upstream.HTTP.Path != DefaultHTTPPath {
		t.Errorf("default http path = %q, want %q", got.Upstream.HTTP.Path, DefaultHTTPPath)
	}
	if got.Viewer.Addr != DefaultViewerAddr {
		t.Errorf("default viewer addr = %q, want %q", got.Viewer.Addr, DefaultViewerAddr)
	}
	if len(got.Viewer.AllowedOrigins) != len(DefaultAllowedOrigins) {
		t.Errorf("default origins = %v, want %v", got.Viewer.AllowedOrigins, DefaultAllowedOrigins)
	}
	if *got.Curation.MinQuoteChars != DefaultMinQuoteChars {
		t.Errorf("default minQuoteChars = %d, want %d", *got.Curation.MinQuoteChars, DefaultMinQuoteChars)
	}
	if *got.Curation.DisableBuiltInRules {
		t.Error("default disableBuiltInRules should be false")
	}
	if *got.Curation.MaxFindings != DefaultMaxFindings {
		t.Errorf("default maxFindings = %d, want %d", *got.Curation.MaxFindings, DefaultMaxFindings)
	}
	if got.Locale != DefaultLocale {
		t.Errorf("default locale = %q, want %q", got.Locale, DefaultLocale)
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
