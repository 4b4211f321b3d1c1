package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/Easy-Infra-Ltd/policyrisk/src/analysis"
	"github.com/Easy-Infra-Ltd/policyrisk/src/app"
	"github.com/Easy-Infra-Ltd/policyrisk/src/presentation"
	"github.com/Easy-Infra-Ltd/policyrisk/src/report"
)

const healthTimeout = 10 * time.Second

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <pdf>",
		Short: "Upload a PDF for analysis and print the curated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer f.Close()

			if _, err := a.Session().Analyze(cmd.Context(), a.Client(), filepath.Base(args[0]), f); err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), a, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view model as JSON instead of Markdown")
	addCurationFlags(cmd, opts)
	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "render <risk.json>",
		Short: "Render a saved risk report or analysis response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read report: %w", err)
			}
			res, err := decodeSaved(data)
			if err != nil {
				return err
			}
			a.Session().Load(res.Risk, res.AnalysisID, res.HasMD)
			return printView(cmd.OutOrStdout(), a, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view model as JSON instead of Markdown")
	addCurationFlags(cmd, opts)
	return cmd
}

// decodeSaved accepts either an analyze envelope or a bare report.
func decodeSaved(data []byte) (*report.AnalysisResult, error) {
	if !report.LooksLikeAnalysis(data) {
		rep, err := report.DecodeReport(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &report.AnalysisResult{OK: true, Risk: rep}, nil
	}

	res, err := report.DecodeAnalysis(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	// Offline files may predate analysis IDs.
	if err := res.Validate(); err != nil && !errors.Is(err, report.ErrMissingAnalysisID) {
		return nil, err
	}
	return res, nil
}

func printView(w io.Writer, a *app.App, asJSON bool) error {
	v, ok := a.Session().View(a.Catalog())
	if !ok {
		if msg := a.Session().Snapshot().Err; msg != "" {
			return errors.New(msg)
		}
		return report.ErrMissingRisk
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return presentation.RenderMarkdown(w, v, a.Catalog())
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "download <analysis_id>",
		Short: "Download the JSON or Markdown document of an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := analysis.ParseDownloadKind(format)
			if err != nil {
				return err
			}
			a, _, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, analysis.DownloadFilename(kind, args[0]))
			n, err := saveDocument(cmd.Context(), a.Client(), kind, args[0], path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "document format: json or md")
	cmd.Flags().StringVar(&outDir, "out", ".", "target directory")
	return cmd
}

func saveDocument(ctx context.Context, c *analysis.Client, kind analysis.DownloadKind, id, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := c.Download(ctx, kind, id, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()
			if err := a.Client().Health(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", cfg.Analysis.BaseURL)
			return nil
		},
	}
}
