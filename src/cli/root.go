// Package cli implements the policyrisk command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Easy-Infra-Ltd/policyrisk/src/app"
	"github.com/Easy-Infra-Ltd/policyrisk/src/config"
	"github.com/Easy-Infra-Ltd/policyrisk/src/transport"
)

type rootOptions struct {
	cfgFile  string
	logger   *slog.Logger
	curation curationFlags
}

// curationFlags override the curation section of the config file. Only
// flags set on the command line take effect.
type curationFlags struct {
	minQuoteChars  int
	maxFindings    int
	disableBuiltIn bool
}

const (
	flagMinQuoteChars  = "min-quote-chars"
	flagMaxFindings    = "max-findings"
	flagDisableBuiltIn = "disable-builtin-rules"
)

func addCurationFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().IntVar(&opts.curation.minQuoteChars, flagMinQuoteChars, config.DefaultMinQuoteChars,
		"shortest evidence quote, in characters, that is shown (overrides curation.minQuoteChars)")
	cmd.Flags().IntVar(&opts.curation.maxFindings, flagMaxFindings, config.DefaultMaxFindings,
		"number of top findings to present (overrides curation.maxFindings)")
	cmd.Flags().BoolVar(&opts.curation.disableBuiltIn, flagDisableBuiltIn, false,
		"drop only quotes matched by curation.customRulePatterns (overrides curation.disableBuiltInRules)")
}

// override builds a CurationConfig holding only the flags set on cmd.
func (f curationFlags) override(cmd *cobra.Command) *config.CurationConfig {
	var o config.CurationConfig
	flags := cmd.Flags()
	if flags.Changed(flagMinQuoteChars) {
		o.MinQuoteChars = &f.minQuoteChars
	}
	if flags.Changed(flagMaxFindings) {
		o.MaxFindings = &f.maxFindings
	}
	if flags.Changed(flagDisableBuiltIn) {
		o.DisableBuiltInRules = &f.disableBuiltIn
	}
	return &o
}

// NewRootCmd builds the command tree. Diagnostics go to logger; command
// output goes to the command's stdout.
func NewRootCmd(logger *slog.Logger) *cobra.Command {
	opts := &rootOptions{logger: logger}

	root := &cobra.Command{
		Use:   "policyrisk",
		Short: "Curate and present privacy policy risk reports",
		Long: `policyrisk uploads privacy policy PDFs to the analysis service and presents
the resulting risk report with curated evidence quotes.

Evidence quotes are filtered before display: empty, short, and
placeholder or schema-leak quotes are dropped, and statute references are
flagged as legal citations.`,
		Version:       transport.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (.json, .yaml or .yml); defaults apply when unset")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newRenderCmd(opts),
		newDownloadCmd(opts),
		newHealthCmd(opts),
		newMCPCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	cfg.Curation = config.Merge(&cfg.Curation, o.curation.override(cmd))
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) newApp(cmd *cobra.Command) (*app.App, config.Config, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	a, err := app.New(cfg, o.logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return a, cfg, nil
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the report tools to agent clients over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			return a.RunMCP(cmd.Context())
		},
	}
	addCurationFlags(cmd, opts)
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer API for the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Viewer.Addr = addr
			}
			a, err := app.New(cfg, opts.logger)
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides viewer.addr)")
	addCurationFlags(cmd, opts)
	return cmd
}
