package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
)

type fileItem struct {
	name       string
	status     model.Status
	procedures int
	repeated   int
	repos      int
}

func (i fileItem) Title() string {
	if i.status == model.Repeated {
		return i.name + " " + repeatedStyle.Render("[repeated]")
	}
	return i.name
}

func (i fileItem) Description() string {
	return fmt.Sprintf("%d procedure(s), %d repeated | %d repo(s)", i.procedures, i.repeated, i.repos)
}

func (i fileItem) FilterValue() string { return i.name }

type procItem struct {
	group *model.DeclarationGroup
}

func (i procItem) Title() string {
	if i.group.Status == model.Repeated {
		return repeatedStyle.Render("R ") + i.group.Key
	}
	return uniqueStyle.Render("U ") + i.group.Key
}

func (i procItem) Description() string {
	if len(i.group.Occurrences) == 0 {
		return ""
	}
	first := i.group.Occurrences[0]
	return fmt.Sprintf("line %d | %s", first.Line, strings.Join(i.group.Repositories, ", "))
}

func (i procItem) FilterValue() string { return i.group.Key }

// fileItems lists every analyzed file, repeated names first.
func fileItems(r *report.Report) []list.Item {
	var repeated, single []list.Item
	for _, name := range r.FileNames() {
		t, _ := r.Table(name)
		it := fileItem{
			name:       name,
			procedures: len(t.Keys),
			repeated:   t.Count(model.Repeated),
		}
		if g, ok := r.Group(name); ok {
			it.status = g.Status()
			it.repos = len(g.Repositories)
		}
		if it.status == model.Repeated {
			repeated = append(repeated, it)
		} else {
			single = append(single, it)
		}
	}
	return append(repeated, single...)
}

// procItems lists the declarations of one file, REPEATED before UNIQUE,
// each in discovery order.
func procItems(t *model.DeclarationTable) []list.Item {
	if t == nil {
		return nil
	}
	var repeated, unique []list.Item
	for _, g := range t.Ordered() {
		if g.Status == model.Repeated {
			repeated = append(repeated, procItem{group: g})
		} else {
			unique = append(unique, procItem{group: g})
		}
	}
	return append(repeated, unique...)
}
