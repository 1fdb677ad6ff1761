// Package report holds the immutable result of one analysis run and writes
// it as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/phobologic/procmap/internal/model"
)

// AnalysisType labels the kind of object a report was built from.
const AnalysisType = "codeunits"

// Report is one analysis snapshot. Callers treat it as read-only; a new run
// produces a new Report.
type Report struct {
	RunID        string
	GeneratedAt  time.Time
	Root         string
	Marker       string
	Suffix       string
	Repositories []model.Repository
	Repeated     map[string]*model.FileGroup
	Single       map[string]*model.FileGroup
	Declarations map[string]*model.DeclarationTable
	Errors       []model.ScanError
}

// Stats summarizes a report.
type Stats struct {
	Repositories       int `json:"total_repositories"`
	Files              int `json:"total_files"`
	FileNames          int `json:"total_file_names"`
	RepeatedFiles      int `json:"repeated_files"`
	Procedures         int `json:"total_procedures"`
	RepeatedProcedures int `json:"repeated_procedures"`
	UniqueProcedures   int `json:"unique_procedures"`
}

// New stamps a report with a fresh run id and the current time.
func New(root, marker, suffix string) *Report {
	return &Report{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now(),
		Root:         root,
		Marker:       marker,
		Suffix:       suffix,
		Repeated:     map[string]*model.FileGroup{},
		Single:       map[string]*model.FileGroup{},
		Declarations: map[string]*model.DeclarationTable{},
	}
}

// Stats counts files and declarations.
func (r *Report) Stats() Stats {
	s := Stats{
		Repositories:  len(r.Repositories),
		FileNames:     len(r.Declarations),
		RepeatedFiles: len(r.Repeated),
	}
	for i := range r.Repositories {
		s.Files += len(r.Repositories[i].Files)
	}
	for _, t := range r.Declarations {
		s.Procedures += len(t.Keys)
		s.RepeatedProcedures += t.Count(model.Repeated)
	}
	s.UniqueProcedures = s.Procedures - s.RepeatedProcedures
	return s
}

// FileNames returns every analyzed file name in sorted order.
func (r *Report) FileNames() []string {
	names := make([]string, 0, len(r.Declarations))
	for name := range r.Declarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the declaration table for a file name.
func (r *Report) Table(name string) (*model.DeclarationTable, bool) {
	t, ok := r.Declarations[name]
	return t, ok
}

// Group returns the file group for a file name from whichever partition holds it.
func (r *Report) Group(name string) (*model.FileGroup, bool) {
	if g, ok := r.Repeated[name]; ok {
		return g, true
	}
	g, ok := r.Single[name]
	return g, ok
}

// PathFor returns the full path of the first known occurrence of a file name.
func (r *Report) PathFor(name string) (string, bool) {
	g, ok := r.Group(name)
	if !ok || len(g.Files) == 0 {
		return "", false
	}
	return g.Files[0].File.Path, true
}

type document struct {
	GeneratedAt  time.Time                          `json:"generated_at"`
	RunID        string                             `json:"run_id"`
	AnalysisType string                             `json:"analysis_type"`
	Root         string                             `json:"root"`
	Marker       string                             `json:"marker"`
	Suffix       string                             `json:"suffix"`
	Stats        Stats                              `json:"stats"`
	Files        map[string][]model.LocatedFile     `json:"files"`
	Repeated     map[string]*model.FileGroup        `json:"repeated_files"`
	Single       map[string]*model.FileGroup        `json:"single_files"`
	Procedures   map[string]*model.DeclarationTable `json:"procedures"`
	Errors       []string                           `json:"errors"`
}

// Write encodes the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	doc := document{
		GeneratedAt:  r.GeneratedAt,
		RunID:        r.RunID,
		AnalysisType: AnalysisType,
		Root:         r.Root,
		Marker:       r.Marker,
		Suffix:       r.Suffix,
		Stats:        r.Stats(),
		Files:        make(map[string][]model.LocatedFile, len(r.Repositories)),
		Repeated:     r.Repeated,
		Single:       r.Single,
		Procedures:   r.Declarations,
		Errors:       make([]string, 0, len(r.Errors)),
	}
	for i := range r.Repositories {
		repo := &r.Repositories[i]
		if len(repo.Files) > 0 {
			doc.Files[repo.Name] = repo.Files
		}
	}
	for _, e := range r.Errors {
		doc.Errors = append(doc.Errors, e.Error())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Save writes the JSON report to path.
func (r *Report) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
