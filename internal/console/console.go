// Package console prints a human-readable, colored listing of a report.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
)

var (
	header   = color.New(color.FgCyan, color.Bold)
	fileName = color.New(color.Bold)
	repeated = color.New(color.FgRed)
	unique   = color.New(color.FgGreen)
	dim      = color.New(color.FgHiBlack)
	warn     = color.New(color.FgYellow)
)

const rule = "===================================================================================================="

// Print writes every file's procedures, repeated first, followed by a summary.
func Print(w io.Writer, r *report.Report) {
	_, _ = header.Fprintln(w, rule)
	_, _ = header.Fprintln(w, "PROCEDURES - REPEATED AND UNIQUE")
	_, _ = header.Fprintln(w, rule)

	names := r.FileNames()
	if len(names) == 0 {
		_, _ = warn.Fprintln(w, "No procedures found")
	}

	for _, name := range names {
		t, _ := r.Table(name)
		printFile(w, t)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w)
		_, _ = warn.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %v\n", e)
		}
	}

	PrintSummary(w, r)
}

func printFile(w io.Writer, t *model.DeclarationTable) {
	fmt.Fprintln(w)
	_, _ = fileName.Fprintln(w, t.File)
	fmt.Fprintf(w, "  Total procedures: %d\n", len(t.Keys))

	groups := t.Ordered()

	if n := t.Count(model.Repeated); n > 0 {
		fmt.Fprintln(w)
		_, _ = repeated.Fprintf(w, "  REPEATED PROCEDURES (%d):\n", n)
		for _, g := range groups {
			if g.Status != model.Repeated {
				continue
			}
			fmt.Fprintf(w, "\n    %s\n", g.Key)
			fmt.Fprintf(w, "      Repositories: %s\n", strings.Join(g.Repositories, ", "))
			fmt.Fprintf(w, "      Total repositories: %d\n", len(g.Repositories))
			for _, occ := range g.Occurrences {
				fmt.Fprintf(w, "      %s: %s%s\n", occ.Repository, ModifierTag(occ.Modifier), occ.Text)
			}
		}
	}

	if n := t.Count(model.Unique); n > 0 {
		fmt.Fprintln(w)
		_, _ = unique.Fprintf(w, "  UNIQUE PROCEDURES (%d):\n", n)
		for _, g := range groups {
			if g.Status != model.Unique || len(g.Occurrences) == 0 {
				continue
			}
			occ := g.Occurrences[0]
			fmt.Fprintf(w, "\n    %s\n", g.Key)
			fmt.Fprintf(w, "      Repository: %s\n", g.Repositories[0])
			fmt.Fprintf(w, "      Line %d: %s%s\n", occ.Line, ModifierTag(occ.Modifier), occ.Text)
		}
	}
}

// PrintSummary writes the totals block.
func PrintSummary(w io.Writer, r *report.Report) {
	s := r.Stats()
	fmt.Fprintln(w)
	_, _ = header.Fprintln(w, rule)
	_, _ = header.Fprintln(w, "SUMMARY")
	fmt.Fprintf(w, "  Repositories scanned:  %d\n", s.Repositories)
	fmt.Fprintf(w, "  Files found:           %d\n", s.Files)
	fmt.Fprintf(w, "  Repeated file names:   %d\n", s.RepeatedFiles)
	fmt.Fprintf(w, "  Procedures analyzed:   %d\n", s.Procedures)
	fmt.Fprintf(w, "  Repeated procedures:   %s\n", repeated.Sprint(s.RepeatedProcedures))
	fmt.Fprintf(w, "  Unique procedures:     %s\n", unique.Sprint(s.UniqueProcedures))
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "  Errors:                %s\n", warn.Sprint(len(r.Errors)))
	}
	_, _ = header.Fprintln(w, rule)
	_, _ = dim.Fprintf(w, "run %s at %s\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05"))
}

// ModifierTag returns "[local] " style prefixes; public declarations get none.
func ModifierTag(m model.Modifier) string {
	if m == model.Public || m == "" {
		return ""
	}
	return "[" + string(m) + "] "
}
