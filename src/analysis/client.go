// Package analysis talks to the external document analysis service: it
// uploads a PDF for analysis and fetches the resulting documents.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Easy-Infra-Ltd/policyrisk/src/report"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 5 * time.Minute

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

var (
	ErrNoAnalysisID    = errors.New("no analysis_id")
	ErrUnknownDownload = errors.New("unknown download kind")
)

// DownloadKind selects one of the two documents kept per analysis.
type DownloadKind string

const (
	DownloadJSON     DownloadKind = "json"
	DownloadMarkdown DownloadKind = "md"
)

// ParseDownloadKind accepts "json", "md" and "markdown".
func ParseDownloadKind(s string) (DownloadKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "risk":
		return DownloadJSON, nil
	case "md", "markdown":
		return DownloadMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDownload, s)
	}
}

// Client calls the analysis service over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logger.With("area", "analysis"),
	}
}

// Analyze uploads a document and returns the validated analysis result.
func (c *Client) Analyze(ctx context.Context, filename string, body io.Reader) (*report.AnalysisResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.BaseURL+"/api/analyze", &buf)
	if err != nil {
		return nil, fmt.Errorf("create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("analyze failed: %d %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	result, err := report.DecodeAnalysis(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	c.logger.Info("analysis complete",
		"analysis_id", result.AnalysisID,
		"request_id", req.Header.Get(requestIDHeader),
		"findings", len(result.Risk.TopFindings),
		"duration", time.Since(start),
	)
	return result, nil
}

// DownloadURL returns the address of one analysis document.
func (c *Client) DownloadURL(kind DownloadKind, analysisID string) (string, error) {
	if analysisID == "" {
		return "", ErrNoAnalysisID
	}
	var path string
	switch kind {
	case DownloadJSON:
		path = "/api/download/risk"
	case DownloadMarkdown:
		path = "/api/download/md"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDownload, kind)
	}
	return c.BaseURL + path + "?analysis_id=" + url.QueryEscape(analysisID), nil
}

// DownloadFilename is the suggested local file name for a document.
func DownloadFilename(kind DownloadKind, analysisID string) string {
	if kind == DownloadMarkdown {
		return "policy-risk-report-" + analysisID + ".md"
	}
	return "policy-risk-" + analysisID + ".json"
}

// Download streams one analysis document into w. The content is not
// inspected.
func (c *Client) Download(ctx context.Context, kind DownloadKind, analysisID string, w io.Writer) (int64, error) {
	u, err := c.DownloadURL(kind, analysisID)
	if err != nil {
		return 0, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, fmt.Errorf("download %s failed: %d %s", kind, resp.StatusCode, strings.TrimSpace(string(text)))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("copy download: %w", err)
	}
	c.logger.Debug("download complete", "kind", kind, "analysis_id", analysisID, "bytes", n)
	return n, nil
}

// Health checks that the analysis service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.BaseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}
