package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Easy-Infra-Ltd/policyrisk/src/config"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/report"
)

const savedReport = `{
	"risk_score": 55,
	"risk_level": "MEDIUM",
	"top_findings": [{
		"title": "파기 절차 불명확",
		"why_it_matters": "파기 시점을 알 수 없습니다.",
		"evidence_quotes": ["개인정보 보호법 제21조에 따라 파기합니다.", "field missing", null],
		"recommendations": ["파기 절차를 명시하세요."],
		"severity": "HIGH"
	}],
	"quick_checklist": ["파기 시점을 명시했는가"]
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvBaseURL, "")

	root := NewRootCmd(slog.New(slog.DiscardHandler))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// analysisService fakes the external analysis service.
func analysisService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", func(w http.ResponseWriter, r *http.Request) {
		_, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok": true, "analysis_id": "f00d", "has_md": true, "risk": `+savedReport+`}`)
	})
	mux.HandleFunc("GET /api/download/md", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("analysis_id") != "f00d" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "# report")
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"ok": true}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func configFor(t *testing.T, baseURL string) string {
	t.Helper()
	return writeFile(t, "config.yaml", "analysis:\n  baseURL: "+baseURL+"\n")
}

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd(slog.New(slog.DiscardHandler))
	registered := make(map[string]bool)
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range []string{"analyze", "render", "download", "health", "mcp", "serve"} {
		assert.True(t, registered[name], "subcommand %q should be registered", name)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRender_BareReport(t *testing.T) {
	out, err := run(t, "render", writeFile(t, "risk.json", savedReport))
	require.NoError(t, err)

	assert.Contains(t, out, "PolicyRisk Agent 리포트")
	assert.Contains(t, out, "개선 권장")
	assert.Contains(t, out, "**“개인정보 보호법 제21조에 따라 파기합니다.”**")
	assert.NotContains(t, out, "field missing")
	assert.Contains(t, out, "- [ ] 파기 시점을 명시했는가")
	assert.NotContains(t, out, "Analysis ID")
}

func TestRender_AnalysisEnvelopeAsJSON(t *testing.T) {
	envelope := `{"ok": true, "analysis_id": "abc", "has_md": false, "risk": ` + savedReport + `}`
	out, err := run(t, "render", "--json", writeFile(t, "analysis.json", envelope))
	require.NoError(t, err)

	var v presentation.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "abc", v.AnalysisID)
	require.Len(t, v.Findings, 1)
	assert.Len(t, v.Findings[0].Evidence, 1)
	assert.Equal(t, presentation.CategoryCaution, v.LevelStyle)
}

func renderJSON(t *testing.T, args ...string) presentation.View {
	t.Helper()
	args = append([]string{"render", "--json", writeFile(t, "risk.json", savedReport)}, args...)
	out, err := run(t, args...)
	require.NoError(t, err)

	var v presentation.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func TestRender_CurationFlagsOverrideConfig(t *testing.T) {
	v := renderJSON(t, "--min-quote-chars", "100")
	require.Len(t, v.Findings, 1)
	assert.Empty(t, v.Findings[0].Evidence)

	v = renderJSON(t, "--disable-builtin-rules")
	require.Len(t, v.Findings, 1)
	assert.Len(t, v.Findings[0].Evidence, 2)

	cfg := writeFile(t, "config.yaml", "curation:\n  minQuoteChars: 100\n")
	out, err := run(t, "--config", cfg, "render", "--json", "--min-quote-chars", "5", writeFile(t, "risk.json", savedReport))
	require.NoError(t, err)
	var fromFlag presentation.View
	require.NoError(t, json.Unmarshal([]byte(out), &fromFlag))
	assert.Len(t, fromFlag.Findings[0].Evidence, 1)
}

func TestRender_InvalidCurationFlag(t *testing.T) {
	_, err := run(t, "render", "--max-findings", "0", writeFile(t, "risk.json", savedReport))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxFindings")
}

func TestRender_EnglishLocale(t *testing.T) {
	cfg := writeFile(t, "config.json", `{"locale": "en-GB"}`)
	out, err := run(t, "--config", cfg, "render", writeFile(t, "risk.json", savedReport))
	require.NoError(t, err)
	assert.Contains(t, out, "PolicyRisk Agent Report")
	assert.Contains(t, out, "legal citation")
}

func TestRender_Errors(t *testing.T) {
	_, err := run(t, "render", "/nonexistent/risk.json")
	assert.Error(t, err)

	_, err = run(t, "render", writeFile(t, "bad.json", `{not json`))
	assert.Error(t, err)

	_, err = run(t, "render", writeFile(t, "null.json", `null`))
	assert.Error(t, err)

	_, err = run(t, "render")
	assert.Error(t, err, "path argument is required")
}

func TestRender_RejectsFailedEnvelope(t *testing.T) {
	envelope := `{"ok": false, "analysis_id": "abc", "error": "pipeline crashed", "risk": ` + savedReport + `}`
	_, err := run(t, "render", writeFile(t, "analysis.json", envelope))
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrNotOK)
	assert.Contains(t, err.Error(), "pipeline crashed")
}

func TestRender_EnvelopeWithoutAnalysisID(t *testing.T) {
	envelope := `{"ok": true, "risk": ` + savedReport + `}`
	out, err := run(t, "render", writeFile(t, "analysis.json", envelope))
	require.NoError(t, err)
	assert.Contains(t, out, "PolicyRisk Agent 리포트")
}

func TestAnalyze(t *testing.T) {
	ts := analysisService(t)
	pdf := writeFile(t, "policy.pdf", "%PDF-1.4")

	out, err := run(t, "--config", configFor(t, ts.URL), "analyze", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "`f00d`")
	assert.Contains(t, out, "법령 인용")
}

func TestAnalyze_ServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "pipeline failed", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := run(t, "--config", configFor(t, ts.URL), "analyze", writeFile(t, "policy.pdf", "%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze failed: 500")
}

func TestDownload(t *testing.T) {
	ts := analysisService(t)
	dir := t.TempDir()

	out, err := run(t, "--config", configFor(t, ts.URL), "download", "f00d", "--format", "md", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "policy-risk-report-f00d.md")

	data, err := os.ReadFile(filepath.Join(dir, "policy-risk-report-f00d.md"))
	require.NoError(t, err)
	assert.Equal(t, "# report", string(data))
}

func TestDownload_FailureLeavesNoFile(t *testing.T) {
	ts := analysisService(t)
	dir := t.TempDir()

	_, err := run(t, "--config", configFor(t, ts.URL), "download", "missing", "--format", "md", "--out", dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_UnknownFormat(t *testing.T) {
	_, err := run(t, "download", "f00d", "--format", "pdf")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := analysisService(t)
	out, err := run(t, "--config", configFor(t, ts.URL), "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ok "+ts.URL)
}
