// Package dashboard is the interactive terminal view of a report: file and
// procedure lists, a detail pane, and on-demand AI descriptions.
package dashboard

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
	"github.com/phobologic/procmap/internal/summarize"
)

// Options configure the dashboard.
type Options struct {
	Report     *report.Report
	Summarizer *summarize.Summarizer // May be nil; descriptions are then disabled
	Cache      *summarize.Cache      // Shared with Summarizer; created when nil

	// Analyze re-runs the analysis for the r key. Nil disables re-runs.
	Analyze func() (*report.Report, error)
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Report == nil {
		return errors.New("dashboard: report is required")
	}
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	program := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}

type pane int

const (
	paneFiles pane = iota
	paneProcedures
)

// Model is the Bubble Tea model behind the dashboard.
type Model struct {
	ctx     context.Context
	report  *report.Report
	summ    *summarize.Summarizer
	cache   *summarize.Cache
	analyze func() (*report.Report, error)

	files  list.Model
	procs  list.Model
	detail viewport.Model
	spin   spinner.Model

	focus pane
	file  string                  // Selected file name
	proc  *model.DeclarationGroup // Selected procedure, nil when the file itself is shown

	describing map[summarize.Key]bool
	descErrs   map[summarize.Key]error
	generation int // Bumped on every re-run so late descriptions can be discarded
	rerunning  bool

	status string
	width  int
	height int
}

// New builds the model for opts.Report.
func New(ctx context.Context, opts Options) (Model, error) {
	cache := opts.Cache
	if cache == nil {
		if opts.Summarizer != nil {
			cache = opts.Summarizer.Cache()
		} else {
			c, err := summarize.NewCache(summarize.DefaultCacheSize)
			if err != nil {
				return Model{}, err
			}
			cache = c
		}
	}
	summ := opts.Summarizer
	if summ == nil {
		summ = summarize.NewSummarizer(nil, cache, summarize.Options{})
	}

	files := list.New(nil, list.NewDefaultDelegate(), 30, 10)
	files.Title = "Files"
	files.SetShowHelp(false)

	procs := list.New(nil, list.NewDefaultDelegate(), 30, 10)
	procs.Title = "Procedures"
	procs.SetShowHelp(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:        ctx,
		summ:       summ,
		cache:      cache,
		analyze:    opts.Analyze,
		files:      files,
		procs:      procs,
		detail:     viewport.New(50, 20),
		spin:       spin,
		describing: make(map[summarize.Key]bool),
		descErrs:   make(map[summarize.Key]error),
	}
	if !summ.Available() {
		m.status = "AI descriptions unavailable (no API key configured)"
	}
	m.setReport(opts.Report)
	return m, nil
}

// setReport installs a new snapshot and resets every selection.
func (m *Model) setReport(r *report.Report) {
	m.report = r
	m.files.SetItems(fileItems(r))
	m.files.ResetSelected()
	m.procs.SetItems(nil)
	m.file = ""
	m.proc = nil
	m.focus = paneFiles
	m.refreshDetail()
}

// selectFile makes name the current file and loads its procedures.
func (m *Model) selectFile(name string) {
	m.file = name
	m.proc = nil
	t, _ := m.report.Table(name)
	m.procs.SetItems(procItems(t))
	m.procs.ResetSelected()
	m.procs.Title = "Procedures in " + name
	m.refreshDetail()
}

// currentKey identifies what the detail pane shows.
func (m Model) currentKey() (summarize.Key, bool) {
	if m.file == "" {
		return summarize.Key{}, false
	}
	if m.proc != nil {
		return summarize.Key{File: m.file, Declaration: m.proc.Key}, true
	}
	return summarize.Key{File: m.file}, true
}

func (m Model) selectedFileItem() (fileItem, bool) {
	it, ok := m.files.SelectedItem().(fileItem)
	return it, ok
}

func (m Model) selectedProcItem() (procItem, bool) {
	it, ok := m.procs.SelectedItem().(procItem)
	return it, ok
}
