// Package tools exposes the report session to agent clients as MCP tools.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/segmentio/encoding/json"

	"github.com/Easy-Infra-Ltd/policyrisk/src/analysis"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/session"
	"github.com/Easy-Infra-Ltd/policyrisk/src/transport"
)

const (
	ToolAnalyze  = "analyze_document"
	ToolReport   = "show_report"
	ToolEvidence = "finding_evidence"
	ToolDownload = "download_report"
)

// Backend is the analysis service as seen by the tools. *analysis.Client
// implements it.
type Backend interface {
	session.Analyzer
	Download(ctx context.Context, kind analysis.DownloadKind, analysisID string, w io.Writer) (int64, error)
}

// Registry registers the report tools on an upstream server. Every tool
// reports failures as IsError results so the agent can read them.
type Registry struct {
	upstream *transport.Upstream
	session  *session.Session
	backend  Backend
	catalog  *presentation.Catalog
	logger   *slog.Logger
}

// NewRegistry creates a registry bound to one session and backend.
func NewRegistry(
	upstream *transport.Upstream,
	sess *session.Session,
	backend Backend,
	catalog *presentation.Catalog,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		upstream: upstream,
		session:  sess,
		backend:  backend,
		catalog:  catalog,
		logger:   logger.With("area", "tools"),
	}
}

// Register adds all tools and returns how many were registered.
func (r *Registry) Register() int {
	tools := []struct {
		tool    *mcp.Tool
		handler mcp.ToolHandler
	}{
		{analyzeTool, r.analyze},
		{reportTool, r.report},
		{evidenceTool, r.evidence},
		{downloadTool, r.download},
	}
	for _, t := range tools {
		r.upstream.Server.AddTool(t.tool, r.logged(t.tool.Name, t.handler))
	}
	return len(tools)
}

var (
	analyzeTool = &mcp.Tool{
		Name:        ToolAnalyze,
		Description: "Upload a privacy policy PDF to the analysis service and show the resulting risk report.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Local path of the PDF document."},
			},
			"required": []string{"path"},
		},
	}
	reportTool = &mcp.Tool{
		Name:        ToolReport,
		Description: "Show the current risk report as Markdown with curated evidence quotes.",
		InputSchema: map[string]any{"type": "object"},
	}
	evidenceTool = &mcp.Tool{
		Name:        ToolEvidence,
		Description: "Show the curated evidence quotes of one finding, by the rank shown in the report.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"index": map[string]any{"type": "integer", "minimum": 1, "description": "1-based finding rank."},
			},
			"required": []string{"index"},
		},
	}
	downloadTool = &mcp.Tool{
		Name:        ToolDownload,
		Description: "Save the JSON or Markdown document of the current analysis into a local directory.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"format": map[string]any{"type": "string", "enum": []string{"json", "md"}},
				"dir":    map[string]any{"type": "string", "description": "Target directory; defaults to the working directory."},
			},
			"required": []string{"format"},
		},
	}
)

type analyzeArgs struct {
	Path string `json:"path"`
}

type evidenceArgs struct {
	Index int `json:"index"`
}

type downloadArgs struct {
	Format string `json:"format"`
	Dir    string `json:"dir"`
}

func (r *Registry) analyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(args.Path) == "" {
		return errorResult(errors.New("path is required")), nil
	}

	f, err := os.Open(args.Path)
	if err != nil {
		return errorResult(fmt.Errorf("open document: %w", err)), nil
	}
	defer f.Close()

	applied, err := r.session.Analyze(ctx, r.backend, filepath.Base(args.Path), f)
	if err != nil {
		return errorResult(err), nil
	}
	if !applied {
		return textResult("A newer analysis superseded this one; its result was discarded."), nil
	}
	return r.report(ctx, req)
}

func (r *Registry) report(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, ok := r.session.View(r.catalog)
	if !ok {
		if st := r.session.Snapshot(); st.Err != "" {
			return errorResult(errors.New(st.Err)), nil
		}
		return errorResult(errors.New("no report loaded; run " + ToolAnalyze + " first")), nil
	}

	var sb strings.Builder
	if err := presentation.RenderMarkdown(&sb, v, r.catalog); err != nil {
		return errorResult(err), nil
	}
	return textResult(sb.String()), nil
}

func (r *Registry) evidence(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args evidenceArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	f, ok := r.session.Finding(args.Index - 1)
	if !ok {
		return errorResult(fmt.Errorf("no finding with rank %d", args.Index)), nil
	}

	var sb strings.Builder
	if err := presentation.RenderEvidence(&sb, f, r.catalog); err != nil {
		return errorResult(err), nil
	}
	return textResult(sb.String()), nil
}

func (r *Registry) download(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args downloadArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}

	kind, err := analysis.ParseDownloadKind(args.Format)
	if err != nil {
		return errorResult(err), nil
	}
	if !r.session.CanDownload(kind) {
		return errorResult(fmt.Errorf("%s document is not available for the current analysis", kind)), nil
	}

	dir := args.Dir
	if dir == "" {
		dir = "."
	}
	id := r.session.Snapshot().AnalysisID
	path := filepath.Join(dir, analysis.DownloadFilename(kind, id))

	n, err := saveDownload(ctx, r.backend, kind, id, path)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("Saved %s (%d bytes)", path, n)), nil
}

// saveDownload writes the document to path, removing a partial file on
// failure.
func saveDownload(ctx context.Context, b Backend, kind analysis.DownloadKind, id, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := b.Download(ctx, kind, id, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

// logged wraps a handler with call logging.
func (r *Registry) logged(name string, h mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := h(ctx, req)
		if res != nil && res.IsError {
			r.logger.Warn("tool call failed", "tool", name, "error", resultText(res))
		} else {
			r.logger.Debug("tool call", "tool", name)
		}
		return res, err
	}
}

func decodeArgs(req *mcp.CallToolRequest, v any) error {
	raw := req.Params.Arguments
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
