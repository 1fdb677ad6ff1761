// procmap finds AL codeunits duplicated across repositories and classifies
// their procedures as repeated or unique.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/procmap/internal/analysis"
	"github.com/phobologic/procmap/internal/config"
	"github.com/phobologic/procmap/internal/console"
	"github.com/phobologic/procmap/internal/dashboard"
	"github.com/phobologic/procmap/internal/filter"
	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
	"github.com/phobologic/procmap/internal/summarize"
	"github.com/phobologic/procmap/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

type rootFlags struct {
	configPath  string
	marker      string
	suffix      string
	format      string
	output      string
	file        string
	procedure   string
	only        string
	maxFiles    int
	gitignore   bool
	maxFileSize int64
	verbose     bool
	tui         bool
	aiProvider  string
	aiModel     string
	showVersion bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "procmap [root]",
		Short: "Map procedures duplicated across AL repositories",
		Long: `Scan every repository directly under root for *.CodeUnit.al files inside LLB
directories, find file names that exist under more than one marker group, and
classify each procedure declaration as REPEATED (present in two or more
repositories) or UNIQUE.

Examples:
  procmap                          # repositories under the current directory
  procmap /srv/al --format toon    # compact output for agents
  procmap --only repeated -n 10    # the ten most duplicated files
  procmap --output report.json     # also save the JSON report
  procmap --tui                    # interactive dashboard with AI descriptions`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				_, _ = fmt.Fprintf(stdout, "procmap %s\n", version)
				return nil
			}
			return runRoot(cmd, args, &f, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", config.FileName, "configuration file")
	fl.StringVar(&f.marker, "marker", "", "marker directory name (default LLB)")
	fl.StringVar(&f.suffix, "suffix", "", "target file suffix (default .CodeUnit.al)")
	fl.StringVar(&f.format, "format", "", "output format: text, toon or json")
	fl.StringVarP(&f.output, "output", "o", "", "also save the JSON report to this path")
	fl.StringVar(&f.file, "file", "", "only file names containing this text")
	fl.StringVar(&f.procedure, "procedure", "", "only procedures whose key contains this text")
	fl.StringVar(&f.only, "only", "", "only procedures with this status: repeated or unique")
	fl.IntVarP(&f.maxFiles, "max-files", "n", 0, "maximum number of files to include")
	fl.BoolVar(&f.gitignore, "gitignore", false, "honor each repository's .gitignore")
	fl.Int64Var(&f.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (0 for no limit)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log per-repository progress")
	fl.BoolVar(&f.tui, "tui", false, "open the interactive dashboard")
	fl.StringVar(&f.aiProvider, "ai-provider", "", "description provider: gemini, anthropic or none")
	fl.StringVar(&f.aiModel, "ai-model", "", "description model (provider default when empty)")
	fl.BoolVarP(&f.showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

func runRoot(cmd *cobra.Command, args []string, f *rootFlags, stdout, stderr io.Writer) error {
	logger := log.New(stderr, "", 0)

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	root := cfg.Root
	if len(args) > 0 {
		root = args[0]
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	if err := config.LoadEnv(".env", filepath.Join(root, ".env")); err != nil {
		logger.Printf("Warning: %v", err)
	}

	var status *model.Status
	if f.only != "" {
		s, err := model.ParseStatus(f.only)
		if err != nil {
			return err
		}
		status = &s
	}
	narrow := func(r *report.Report) *report.Report {
		if f.file != "" {
			r = filter.ByFile(r, f.file)
		}
		if f.procedure != "" {
			r = filter.ByProcedure(r, f.procedure)
		}
		if status != nil {
			r = filter.ByStatus(r, *status)
		}
		return filter.SelectFiles(r, f.maxFiles)
	}

	aopts := analysis.Options{
		Marker:           cfg.Marker,
		Suffix:           cfg.Suffix,
		RespectGitignore: cfg.RespectGitignore,
		MaxFileSize:      cfg.MaxFileSize,
		Logger:           logger,
		Verbose:          cfg.Verbose,
	}
	r, err := analysis.Run(root, aopts)
	if err != nil {
		return err
	}

	if cfg.Output != "" {
		if err := r.Save(cfg.Output); err != nil {
			return err
		}
		logger.Printf("wrote report to %s", cfg.Output)
	}

	if f.tui {
		return runDashboard(cmd.Context(), cfg, logger, narrow(r), func() (*report.Report, error) {
			next, err := analysis.Run(root, aopts)
			if err != nil {
				return nil, err
			}
			return narrow(next), nil
		})
	}

	view := narrow(r)
	switch cfg.Format {
	case config.FormatTOON:
		_, _ = fmt.Fprintln(stdout, toon.Encode(view))
	case config.FormatJSON:
		return view.Write(stdout)
	default:
		console.Print(stdout, view)
	}
	return nil
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	fl := cmd.Flags()
	if fl.Changed("config") {
		if _, err := os.Stat(f.configPath); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if fl.Changed("marker") {
		cfg.Marker = f.marker
	}
	if fl.Changed("suffix") {
		cfg.Suffix = f.suffix
	}
	if fl.Changed("format") {
		cfg.Format = f.format
	}
	if fl.Changed("output") {
		cfg.Output = f.output
	}
	if fl.Changed("gitignore") {
		cfg.RespectGitignore = f.gitignore
	}
	if fl.Changed("max-file-size") {
		cfg.MaxFileSize = f.maxFileSize
	}
	if fl.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fl.Changed("ai-provider") {
		cfg.AI.Provider = f.aiProvider
	}
	if fl.Changed("ai-model") {
		cfg.AI.Model = f.aiModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDashboard(ctx context.Context, cfg *config.Config, logger *log.Logger, r *report.Report, analyze func() (*report.Report, error)) error {
	cache, err := summarize.NewCache(cfg.AI.CacheSize)
	if err != nil {
		return err
	}

	gen, err := summarize.New(ctx, cfg.AI.Provider, cfg.AI.Model, config.APIKey(cfg.AI.Provider))
	if err != nil {
		if !errors.Is(err, summarize.ErrNoAPIKey) {
			return err
		}
		logger.Printf("Warning: %v; AI descriptions disabled", err)
		gen = nil
	}

	summ := summarize.NewSummarizer(gen, cache, summarize.Options{
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Timeout:           time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	return dashboard.Run(ctx, dashboard.Options{
		Report:     r,
		Summarizer: summ,
		Cache:      cache,
		Analyze:    analyze,
	})
}
