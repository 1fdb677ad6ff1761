// Package classify partitions discovered files by marker group and procedure
// declarations by repository.
package classify

import (
	"sort"

	"github.com/phobologic/procmap/internal/model"
)

// Extractor returns the declarations of the file at path.
type Extractor func(path string) ([]model.Declaration, error)

// GroupID qualifies a marker group with its repository so the same marker
// path in two repositories counts as two groups.
func GroupID(repo, markerGroup string) string {
	return repo + "/" + markerGroup
}

// Files groups every located file by name. A name found under two or more
// distinct marker groups is repeated; every other name is single. Each name
// lands in exactly one of the two maps.
func Files(repos []model.Repository) (repeated, single map[string]*model.FileGroup) {
	byName := make(map[string]*model.FileGroup)
	groupSets := make(map[string]map[string]struct{})
	repoSets := make(map[string]map[string]struct{})

	for i := range repos {
		repo := &repos[i]
		for j := range repo.Files {
			f := repo.Files[j]
			gid := GroupID(repo.Name, f.MarkerGroup)

			g := byName[f.Name]
			if g == nil {
				g = &model.FileGroup{Name: f.Name}
				byName[f.Name] = g
				groupSets[f.Name] = make(map[string]struct{})
				repoSets[f.Name] = make(map[string]struct{})
			}
			g.Files = append(g.Files, model.GroupedFile{File: f, GroupID: gid})
			groupSets[f.Name][gid] = struct{}{}
			repoSets[f.Name][repo.Name] = struct{}{}
		}
	}

	repeated = make(map[string]*model.FileGroup)
	single = make(map[string]*model.FileGroup)
	for name, g := range byName {
		g.Groups = sortedKeys(groupSets[name])
		g.Repositories = sortedKeys(repoSets[name])
		if g.Status() == model.Repeated {
			repeated[name] = g
		} else {
			single[name] = g
		}
	}

	return repeated, single
}

// Declarations runs extract once per file occurrence in both partitions and
// classifies every declaration key of every file name. A key seen in two or
// more repositories is Repeated; otherwise Unique. Extraction failures are
// returned as ScanErrors and contribute no declarations.
func Declarations(repeated, single map[string]*model.FileGroup, extract Extractor) (map[string]*model.DeclarationTable, []model.ScanError) {
	tables := make(map[string]*model.DeclarationTable)
	var problems []model.ScanError

	for _, partition := range []map[string]*model.FileGroup{single, repeated} {
		for _, name := range SortedNames(partition) {
			g := partition[name]
			t := tables[name]
			if t == nil {
				t = &model.DeclarationTable{File: name, Groups: make(map[string]*model.DeclarationGroup)}
				tables[name] = t
			}

			for _, gf := range g.Files {
				decls, err := extract(gf.File.Path)
				if err != nil {
					problems = append(problems, model.ScanError{
						Repository: gf.File.Repository,
						Path:       gf.File.Path,
						Err:        err,
					})
					continue
				}
				for _, d := range decls {
					d.Path = gf.File.Path
					d.Repository = gf.File.Repository

					dg := t.Groups[d.Key]
					if dg == nil {
						dg = &model.DeclarationGroup{File: name, Key: d.Key}
						t.Groups[d.Key] = dg
						t.Keys = append(t.Keys, d.Key)
					}
					dg.Occurrences = append(dg.Occurrences, d)
				}
			}
		}
	}

	for _, t := range tables {
		for _, dg := range t.Groups {
			repos := make(map[string]struct{})
			for _, occ := range dg.Occurrences {
				repos[occ.Repository] = struct{}{}
			}
			dg.Repositories = sortedKeys(repos)
			if len(dg.Repositories) > 1 {
				dg.Status = model.Repeated
			} else {
				dg.Status = model.Unique
			}
		}
	}

	return tables, problems
}

// SortedNames returns the keys of a file partition in sorted order.
func SortedNames(partition map[string]*model.FileGroup) []string {
	names := make([]string, 0, len(partition))
	for name := range partition {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
