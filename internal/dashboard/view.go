package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phobologic/procmap/internal/console"
	"github.com/phobologic/procmap/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// View composes the header, the two lists, the detail pane and the status bar.
func (m Model) View() string {
	filesStyle, procsStyle := paneStyle, paneStyle
	if m.focus == paneFiles {
		filesStyle = focusedPaneStyle
	} else {
		procsStyle = focusedPaneStyle
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		filesStyle.Render(m.files.View()),
		procsStyle.Render(m.procs.View()),
	)
	right := paneStyle.Render(m.detail.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.statusBar())
}

func (m Model) header() string {
	s := m.report.Stats()
	metrics := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		dimStyle.Render("files"), metricStyle.Render(fmt.Sprint(s.FileNames)),
		dimStyle.Render("procedures"), metricStyle.Render(fmt.Sprint(s.Procedures)),
		dimStyle.Render("repeated"), repeatedStyle.Render(fmt.Sprint(s.RepeatedProcedures)),
		dimStyle.Render("unique"), uniqueStyle.Render(fmt.Sprint(s.UniqueProcedures)),
	)
	if n := len(m.report.Errors); n > 0 {
		metrics += "  " + errorStyle.Render(fmt.Sprintf("%d error(s)", n))
	}
	return titleStyle.Render("procmap") + " " + dimStyle.Render(m.report.Root) + "\n" + metrics
}

func (m Model) statusBar() string {
	help := "enter select  a regenerate  d describe file  c clear cache  r re-run  tab switch  q quit"
	line := help
	if m.status != "" {
		line = m.status + "  |  " + help
	}
	if m.width > 0 {
		return statusStyle.Width(m.width).Render(line)
	}
	return statusStyle.Render(line)
}

// refreshDetail rebuilds the detail pane for the current selection.
func (m *Model) refreshDetail() {
	m.detail.SetContent(m.detailContent())
	m.detail.GotoTop()
}

func (m Model) detailContent() string {
	var b strings.Builder
	if m.file == "" {
		s := m.report.Stats()
		fmt.Fprintf(&b, "%s\n\n", dimStyle.Render("Select a file and press enter."))
		fmt.Fprintf(&b, "Repositories:        %d\n", s.Repositories)
		fmt.Fprintf(&b, "Files:               %d\n", s.Files)
		fmt.Fprintf(&b, "Repeated file names: %d\n", s.RepeatedFiles)
		fmt.Fprintf(&b, "Procedures:          %d\n", s.Procedures)
		for _, e := range m.report.Errors {
			fmt.Fprintf(&b, "%s\n", errorStyle.Render(e.Error()))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s\n", sectionStyle.Render("FILE "+m.file))
	if g, ok := m.report.Group(m.file); ok {
		fmt.Fprintf(&b, "Status: %s  (%d marker group(s))\n", statusLabel(g.Status()), len(g.Groups))
		for _, gf := range g.Files {
			f := gf.File
			fmt.Fprintf(&b, "  %s: %s\n", f.Repository, f.RelPath)
			fmt.Fprintf(&b, "    %s\n", dimStyle.Render(fmt.Sprintf("%d bytes, modified %s", f.Size, f.ModTime.Format(timeLayout))))
		}
	}
	b.WriteString("\n")

	if m.proc != nil {
		fmt.Fprintf(&b, "%s %s\n", sectionStyle.Render("PROCEDURE "+m.proc.Key), statusLabel(m.proc.Status))
		for _, occ := range m.proc.Occurrences {
			fmt.Fprintf(&b, "  %s: %sline %d: %s\n", occ.Repository, console.ModifierTag(occ.Modifier), occ.Line, occ.Text)
		}
	} else if t, ok := m.report.Table(m.file); ok {
		fmt.Fprintf(&b, "Procedures: %d (%d repeated, %d unique)\n",
			len(t.Keys), t.Count(model.Repeated), t.Count(model.Unique))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\n", sectionStyle.Render("AI DESCRIPTION"))
	b.WriteString(m.descriptionText())
	b.WriteString("\n")
	return b.String()
}

func (m Model) descriptionText() string {
	key, _ := m.currentKey()
	if m.describing[key] {
		return m.spin.View() + " generating..."
	}
	if d, ok := m.cache.Get(key); ok {
		return descriptionStyle.Width(max(10, m.detail.Width-2)).Render(d)
	}
	if err, ok := m.descErrs[key]; ok {
		return errorStyle.Render("error: " + err.Error())
	}
	if !m.summ.Available() {
		return dimStyle.Render("unavailable (no API key configured)")
	}
	if m.proc != nil {
		return dimStyle.Render("press a to describe this procedure")
	}
	return dimStyle.Render("press d to describe this file")
}
