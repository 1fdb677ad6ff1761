// Package analysis runs the scan pipeline: discover files, partition them by
// marker group, extract and classify procedures, and assemble a report.
package analysis

import (
	"io"
	"log"

	"github.com/phobologic/procmap/internal/classify"
	"github.com/phobologic/procmap/internal/discover"
	"github.com/phobologic/procmap/internal/parse"
	"github.com/phobologic/procmap/internal/report"
)

// Options configure a run.
type Options struct {
	Marker           string
	Suffix           string
	RespectGitignore bool
	MaxFileSize      int64
	Logger           *log.Logger // Warnings; nil discards them
	Verbose          bool        // Log per-repository progress as well
}

// Run performs one complete, sequential analysis of root. The only error
// it returns is a fatal one (missing or unreadable root); per-repository
// and per-file problems are recorded on the report instead.
func Run(root string, opts Options) (*report.Report, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	dopts := discover.Options{
		Marker:           opts.Marker,
		Suffix:           opts.Suffix,
		RespectGitignore: opts.RespectGitignore,
		MaxFileSize:      opts.MaxFileSize,
		Logger:           opts.Logger,
	}
	if dopts.Marker == "" {
		dopts.Marker = discover.DefaultMarker
	}
	if dopts.Suffix == "" {
		dopts.Suffix = discover.DefaultSuffix
	}

	repos, walkProblems, err := discover.Repositories(root, dopts)
	if err != nil {
		return nil, err
	}
	repeated, single := classify.Files(repos)
	if opts.Verbose {
		for _, repo := range repos {
			opts.Logger.Printf("%s: %d file(s)", repo.Name, len(repo.Files))
		}
		opts.Logger.Printf("%d repeated, %d single file name(s)", len(repeated), len(single))
	}

	tables, readProblems := classify.Declarations(repeated, single, parse.File)
	for _, p := range readProblems {
		opts.Logger.Printf("Warning: %v", p)
	}

	r := report.New(root, dopts.Marker, dopts.Suffix)
	r.Repositories = repos
	r.Repeated = repeated
	r.Single = single
	r.Declarations = tables
	r.Errors = append(append(r.Errors, walkProblems...), readProblems...)
	return r, nil
}
