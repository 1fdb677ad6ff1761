// Package filter narrows an analysis report to the files and procedures a
// caller asked about.
package filter

import (
	"sort"
	"strings"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
)

// ByFile returns a new Report containing only file names that contain
// substr (case-insensitive), with all of their procedures.
func ByFile(r *report.Report, substr string) *report.Report {
	lower := strings.ToLower(substr)
	return view(r, func(name string) bool {
		return strings.Contains(strings.ToLower(name), lower)
	}, nil)
}

// ByProcedure returns a new Report containing only procedures whose name
// contains substr (case-insensitive). Files left without procedures are dropped.
func ByProcedure(r *report.Report, substr string) *report.Report {
	lower := strings.ToLower(substr)
	return view(r, nil, func(g *model.DeclarationGroup) bool {
		if strings.Contains(strings.ToLower(g.Key), lower) {
			return true
		}
		return len(g.Occurrences) > 0 && strings.Contains(strings.ToLower(g.Occurrences[0].Name), lower)
	})
}

// ByStatus returns a new Report containing only procedures with the given
// status. Files left without procedures are dropped.
func ByStatus(r *report.Report, status model.Status) *report.Report {
	return view(r, nil, func(g *model.DeclarationGroup) bool {
		return g.Status == status
	})
}

// SelectFiles returns a new Report with at most maxFiles file names, ranked
// by repeated procedure count, then total procedure count, then name.
// If maxFiles is <= 0 or covers every file, r is returned unchanged.
func SelectFiles(r *report.Report, maxFiles int) *report.Report {
	names := r.FileNames()
	if maxFiles <= 0 || maxFiles >= len(names) {
		return r
	}

	sort.SliceStable(names, func(i, j int) bool {
		ti, tj := r.Declarations[names[i]], r.Declarations[names[j]]
		ri, rj := ti.Count(model.Repeated), tj.Count(model.Repeated)
		if ri != rj {
			return ri > rj
		}
		return len(ti.Keys) > len(tj.Keys)
	})

	keep := make(map[string]struct{}, maxFiles)
	for _, name := range names[:maxFiles] {
		keep[name] = struct{}{}
	}
	return view(r, func(name string) bool {
		_, ok := keep[name]
		return ok
	}, nil)
}

// view copies r keeping the file names accepted by keepFile and the
// declaration groups accepted by keepGroup. A nil predicate keeps everything.
// When keepGroup is set, file names left without groups are dropped.
func view(r *report.Report, keepFile func(string) bool, keepGroup func(*model.DeclarationGroup) bool) *report.Report {
	out := &report.Report{
		RunID:        r.RunID,
		GeneratedAt:  r.GeneratedAt,
		Root:         r.Root,
		Marker:       r.Marker,
		Suffix:       r.Suffix,
		Repeated:     make(map[string]*model.FileGroup),
		Single:       make(map[string]*model.FileGroup),
		Declarations: make(map[string]*model.DeclarationTable),
		Errors:       r.Errors,
	}

	for name, t := range r.Declarations {
		if keepFile != nil && !keepFile(name) {
			continue
		}
		nt := t
		if keepGroup != nil {
			nt = &model.DeclarationTable{File: t.File, Groups: make(map[string]*model.DeclarationGroup)}
			for _, key := range t.Keys {
				if g := t.Groups[key]; keepGroup(g) {
					nt.Keys = append(nt.Keys, key)
					nt.Groups[key] = g
				}
			}
			if len(nt.Keys) == 0 {
				continue
			}
		}
		out.Declarations[name] = nt
	}

	for name, g := range r.Repeated {
		if _, ok := out.Declarations[name]; ok {
			out.Repeated[name] = g
		}
	}
	for name, g := range r.Single {
		if _, ok := out.Declarations[name]; ok {
			out.Single[name] = g
		}
	}

	for i := range r.Repositories {
		repo := r.Repositories[i]
		var files []model.LocatedFile
		for _, f := range repo.Files {
			if _, ok := out.Declarations[f.Name]; ok {
				files = append(files, f)
			}
		}
		repo.Files = files
		out.Repositories = append(out.Repositories, repo)
	}

	return out
}
