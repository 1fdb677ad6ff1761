package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
	"github.com/phobologic/procmap/internal/summarize"
)

// descriptionMsg carries a finished description request.
type descriptionMsg struct {
	key        summarize.Key
	text       string
	err        error
	generation int
}

// reportMsg carries the result of a re-run.
type reportMsg struct {
	report *report.Report
	err    error
}

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies incoming Bubble Tea messages to the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if len(m.describing) == 0 && !m.rerunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshDetail()
		return m, cmd
	case descriptionMsg:
		return m.handleDescription(msg), nil
	case reportMsg:
		return m.handleReport(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While a list is filtering every key belongs to it.
	if m.focusedList().FilterState() == list.Filtering {
		return m.updateFocusedList(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.focus == paneFiles {
			m.focus = paneProcedures
		} else {
			m.focus = paneFiles
		}
		return m, nil
	case "enter":
		if m.focus == paneFiles {
			if it, ok := m.selectedFileItem(); ok {
				m.selectFile(it.name)
				m.focus = paneProcedures
			}
			return m, nil
		}
		it, ok := m.selectedProcItem()
		if !ok {
			return m, nil
		}
		m.proc = it.group
		return m.describe(false)
	case "d":
		if it, ok := m.selectedFileItem(); ok && (m.file == "" || m.focus == paneFiles) {
			m.selectFile(it.name)
		}
		m.proc = nil
		return m.describe(false)
	case "a":
		return m.describe(true)
	case "c":
		m.cache.Purge()
		clear(m.descErrs)
		m.status = "description cache cleared"
		m.refreshDetail()
		return m, nil
	case "r":
		return m.rerun()
	}
	return m.updateFocusedList(msg)
}

func (m Model) focusedList() *list.Model {
	if m.focus == paneProcedures {
		return &m.procs
	}
	return &m.files
}

func (m Model) updateFocusedList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == paneProcedures {
		m.procs, cmd = m.procs.Update(msg)
	} else {
		m.files, cmd = m.files.Update(msg)
	}
	return m, cmd
}

// describe requests a description of whatever the detail pane shows. With
// regenerate set the cached description is dropped first.
func (m Model) describe(regenerate bool) (tea.Model, tea.Cmd) {
	key, ok := m.currentKey()
	if !ok {
		m.status = "select a file first"
		return m, nil
	}
	if regenerate {
		m.cache.Invalidate(key)
	} else if _, cached := m.cache.Get(key); cached {
		m.refreshDetail()
		return m, nil
	}
	if !m.summ.Available() {
		m.status = "AI descriptions unavailable (no API key configured)"
		m.refreshDetail()
		return m, nil
	}
	if m.describing[key] {
		return m, nil
	}

	m.describing[key] = true
	delete(m.descErrs, key)
	m.status = "describing " + describeLabel(key) + " with " + m.summ.Name()
	m.refreshDetail()
	return m, tea.Batch(m.spin.Tick, m.describeCmd(key))
}

func (m Model) describeCmd(key summarize.Key) tea.Cmd {
	ctx, summ, gen := m.ctx, m.summ, m.generation
	group := m.proc
	path, _ := m.report.PathFor(key.File)
	return func() tea.Msg {
		var (
			text string
			err  error
		)
		if group != nil {
			text, err = summ.Procedure(ctx, key.File, group)
		} else {
			text, err = summ.File(ctx, key.File, path)
		}
		return descriptionMsg{key: key, text: text, err: err, generation: gen}
	}
}

func (m Model) handleDescription(msg descriptionMsg) Model {
	if msg.generation != m.generation {
		// Belongs to a snapshot that has since been replaced. Its result
		// may have landed in the cache after the purge; drop it unless the
		// current snapshot is already describing the same key.
		if !m.describing[msg.key] && msg.err == nil {
			if cached, ok := m.cache.Get(msg.key); ok && cached == msg.text {
				m.cache.Invalidate(msg.key)
			}
		}
		return m
	}
	delete(m.describing, msg.key)
	if msg.err != nil {
		m.descErrs[msg.key] = msg.err
		m.status = fmt.Sprintf("description failed: %v", msg.err)
	} else {
		delete(m.descErrs, msg.key)
		m.status = "described " + describeLabel(msg.key)
	}
	m.refreshDetail()
	return m
}

func (m Model) rerun() (tea.Model, tea.Cmd) {
	if m.analyze == nil {
		m.status = "re-run unavailable"
		return m, nil
	}
	if m.rerunning {
		return m, nil
	}
	m.rerunning = true
	m.status = "re-running analysis..."
	analyze := m.analyze
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		r, err := analyze()
		return reportMsg{report: r, err: err}
	})
}

func (m Model) handleReport(msg reportMsg) Model {
	m.rerunning = false
	if msg.err != nil {
		m.status = fmt.Sprintf("re-run failed: %v", msg.err)
		return m
	}
	m.generation++
	m.cache.Purge()
	clear(m.describing)
	clear(m.descErrs)
	m.setReport(msg.report)
	s := msg.report.Stats()
	m.status = fmt.Sprintf("analysis refreshed: %d file(s), %d procedure(s)", s.Files, s.Procedures)
	return m
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// Header and status bar take three rows; each pane border takes two.
	avail := max(8, height-3)
	leftW := max(24, width*2/5)
	m.files.SetSize(leftW-2, avail/2-2)
	m.procs.SetSize(leftW-2, avail-avail/2-2)
	m.detail.Width = max(10, width-leftW-2)
	m.detail.Height = max(3, avail-2)
	m.refreshDetail()
}

func describeLabel(k summarize.Key) string {
	if k.Declaration == "" {
		return k.File
	}
	return k.File + " " + k.Declaration
}

func statusLabel(s model.Status) string {
	if s == model.Repeated {
		return repeatedStyle.Render("REPEATED")
	}
	return uniqueStyle.Render("UNIQUE")
}
