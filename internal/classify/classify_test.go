package classify

import (
	"errors"
	"reflect"
	"testing"

	"github.com/phobologic/procmap/internal/model"
)

func located(repo, group, name string) model.LocatedFile {
	return model.LocatedFile{
		Repository:  repo,
		Path:        "/root/" + repo + "/" + group + "/" + name,
		RelPath:     group + "/" + name,
		MarkerGroup: group,
		Name:        name,
	}
}

// fakeExtractor serves declarations by path; paths listed in fail return an error.
func fakeExtractor(byPath map[string][]model.Declaration, fail map[string]bool) Extractor {
	return func(path string) ([]model.Declaration, error) {
		if fail[path] {
			return nil, errors.New("boom")
		}
		return byPath[path], nil
	}
}

func decl(key, name string, line int) model.Declaration {
	return model.Declaration{Key: key, Name: name, Modifier: model.Public, Line: line, Text: "procedure " + name + "()"}
}

func TestFilesAcrossRepositories(t *testing.T) {
	t.Parallel()

	repos := []model.Repository{
		{Name: "RepoA", Files: []model.LocatedFile{located("RepoA", "LLB", "X.CodeUnit.al")}},
		{Name: "RepoB", Files: []model.LocatedFile{located("RepoB", "LLB", "X.CodeUnit.al")}},
	}

	repeated, single := Files(repos)
	if len(single) != 0 {
		t.Errorf("expected no single files, got %v", SortedNames(single))
	}
	g, ok := repeated["X.CodeUnit.al"]
	if !ok {
		t.Fatal("X.CodeUnit.al not repeated")
	}
	if !reflect.DeepEqual(g.Groups, []string{"RepoA/LLB", "RepoB/LLB"}) {
		t.Errorf("groups = %v", g.Groups)
	}
	if !reflect.DeepEqual(g.Repositories, []string{"RepoA", "RepoB"}) {
		t.Errorf("repositories = %v", g.Repositories)
	}
	if len(g.Files) != 2 || g.Files[0].File.Repository != "RepoA" {
		t.Errorf("files = %+v", g.Files)
	}
}

func TestFilesSameRepositoryDifferentGroups(t *testing.T) {
	t.Parallel()

	repos := []model.Repository{
		{Name: "RepoC", Files: []model.LocatedFile{
			located("RepoC", "LLB", "X.CodeUnit.al"),
			located("RepoC", "LLB/Sub", "X.CodeUnit.al"),
		}},
	}

	repeated, single := Files(repos)
	g, ok := repeated["X.CodeUnit.al"]
	if !ok {
		t.Fatalf("expected repeated, single = %v", SortedNames(single))
	}
	if len(g.Repositories) != 1 || len(g.Groups) != 2 {
		t.Errorf("group = %+v", g)
	}
}

func TestFilesSameGroupStaysSingle(t *testing.T) {
	t.Parallel()

	// Two occurrences under one marker group are still a single file.
	a := located("RepoA", "LLB", "X.CodeUnit.al")
	b := a
	b.Path = "/elsewhere/X.CodeUnit.al"
	repos := []model.Repository{{Name: "RepoA", Files: []model.LocatedFile{a, b}}}

	repeated, single := Files(repos)
	if len(repeated) != 0 {
		t.Errorf("expected nothing repeated, got %v", SortedNames(repeated))
	}
	g := single["X.CodeUnit.al"]
	if g == nil || len(g.Files) != 2 || g.Status() != model.Unique {
		t.Errorf("single group = %+v", g)
	}
}

func TestFilesPartitionsDisjointAndExhaustive(t *testing.T) {
	t.Parallel()

	repos := []model.Repository{
		{Name: "A", Files: []model.LocatedFile{
			located("A", "LLB", "One.CodeUnit.al"),
			located("A", "LLB", "Two.CodeUnit.al"),
			located("A", "x/LLB", "Three.CodeUnit.al"),
		}},
		{Name: "B", Files: []model.LocatedFile{
			located("B", "LLB", "One.CodeUnit.al"),
			located("B", "LLB", "Four.CodeUnit.al"),
		}},
		{Name: "C"},
	}

	repeated, single := Files(repos)
	all := map[string]int{}
	for n := range repeated {
		all[n]++
	}
	for n := range single {
		all[n]++
	}
	want := []string{"Four.CodeUnit.al", "One.CodeUnit.al", "Three.CodeUnit.al", "Two.CodeUnit.al"}
	if len(all) != len(want) {
		t.Fatalf("names = %v", all)
	}
	for _, n := range want {
		if all[n] != 1 {
			t.Errorf("%s appears %d times across partitions", n, all[n])
		}
	}
	if !reflect.DeepEqual(SortedNames(repeated), []string{"One.CodeUnit.al"}) {
		t.Errorf("repeated = %v", SortedNames(repeated))
	}
}

func TestFilesEmpty(t *testing.T) {
	t.Parallel()

	repeated, single := Files(nil)
	if repeated == nil || single == nil {
		t.Fatal("partitions must be non-nil")
	}
	if len(repeated)+len(single) != 0 {
		t.Error("expected empty partitions")
	}
}

func TestDeclarationsRepeatedAcrossRepositories(t *testing.T) {
	t.Parallel()

	a := located("RepoA", "LLB", "X.CodeUnit.al")
	b := located("RepoB", "LLB", "X.CodeUnit.al")
	repeated, single := Files([]model.Repository{
		{Name: "RepoA", Files: []model.LocatedFile{a}},
		{Name: "RepoB", Files: []model.LocatedFile{b}},
	})

	extract := fakeExtractor(map[string][]model.Declaration{
		a.Path: {decl("Bar", "Bar", 3), decl("OnlyA", "OnlyA", 7)},
		b.Path: {decl("Bar", "Bar", 5)},
	}, nil)

	tables, problems := Declarations(repeated, single, extract)
	if len(problems) != 0 {
		t.Fatalf("problems = %v", problems)
	}
	tbl := tables["X.CodeUnit.al"]
	if tbl == nil {
		t.Fatal("missing table")
	}
	if !reflect.DeepEqual(tbl.Keys, []string{"Bar", "OnlyA"}) {
		t.Errorf("keys = %v", tbl.Keys)
	}

	bar := tbl.Groups["Bar"]
	if bar.Status != model.Repeated {
		t.Errorf("Bar status = %v, want REPEATED", bar.Status)
	}
	if !reflect.DeepEqual(bar.Repositories, []string{"RepoA", "RepoB"}) {
		t.Errorf("Bar repositories = %v", bar.Repositories)
	}
	if len(bar.Occurrences) != 2 || bar.Occurrences[0].Repository != "RepoA" || bar.Occurrences[1].Line != 5 {
		t.Errorf("Bar occurrences = %+v", bar.Occurrences)
	}
	if bar.Occurrences[1].Path != b.Path {
		t.Errorf("occurrence path = %q", bar.Occurrences[1].Path)
	}

	only := tbl.Groups["OnlyA"]
	if only.Status != model.Unique || !reflect.DeepEqual(only.Repositories, []string{"RepoA"}) {
		t.Errorf("OnlyA = %+v", only)
	}
	if tbl.Count(model.Repeated) != 1 || tbl.Count(model.Unique) != 1 {
		t.Errorf("counts = %d/%d", tbl.Count(model.Repeated), tbl.Count(model.Unique))
	}
}

func TestDeclarationsSameRepositoryIsUnique(t *testing.T) {
	t.Parallel()

	// Repeated file inside one repository: its declarations span one repository.
	a := located("RepoC", "LLB", "X.CodeUnit.al")
	b := located("RepoC", "LLB/Sub", "X.CodeUnit.al")
	repeated, single := Files([]model.Repository{{Name: "RepoC", Files: []model.LocatedFile{a, b}}})

	extract := fakeExtractor(map[string][]model.Declaration{
		a.Path: {decl("Bar", "Bar", 1)},
		b.Path: {decl("Bar", "Bar", 1)},
	}, nil)

	tables, _ := Declarations(repeated, single, extract)
	bar := tables["X.CodeUnit.al"].Groups["Bar"]
	if bar.Status != model.Unique {
		t.Errorf("status = %v, want UNIQUE", bar.Status)
	}
	if len(bar.Occurrences) != 2 {
		t.Errorf("expected both occurrences kept, got %d", len(bar.Occurrences))
	}
}

func TestDeclarationsSingleFilesAreClassifiedToo(t *testing.T) {
	t.Parallel()

	a := located("RepoA", "LLB", "Only.CodeUnit.al")
	repeated, single := Files([]model.Repository{{Name: "RepoA", Files: []model.LocatedFile{a}}})

	extract := fakeExtractor(map[string][]model.Declaration{
		a.Path: {decl("Foo", "Foo", 1), decl("Foo_2", "Foo", 4)},
	}, nil)

	tables, _ := Declarations(repeated, single, extract)
	tbl := tables["Only.CodeUnit.al"]
	if tbl == nil {
		t.Fatal("single file should have a table")
	}
	if !reflect.DeepEqual(tbl.Keys, []string{"Foo", "Foo_2"}) {
		t.Errorf("keys = %v", tbl.Keys)
	}
	for _, g := range tbl.Ordered() {
		if g.Status != model.Unique {
			t.Errorf("%s: status = %v", g.Key, g.Status)
		}
	}
}

func TestDeclarationsExtractionFailure(t *testing.T) {
	t.Parallel()

	a := located("RepoA", "LLB", "X.CodeUnit.al")
	b := located("RepoB", "LLB", "X.CodeUnit.al")
	repeated, single := Files([]model.Repository{
		{Name: "RepoA", Files: []model.LocatedFile{a}},
		{Name: "RepoB", Files: []model.LocatedFile{b}},
	})

	extract := fakeExtractor(map[string][]model.Declaration{
		b.Path: {decl("Bar", "Bar", 1)},
	}, map[string]bool{a.Path: true})

	tables, problems := Declarations(repeated, single, extract)
	if len(problems) != 1 || problems[0].Path != a.Path || problems[0].Repository != "RepoA" {
		t.Fatalf("problems = %+v", problems)
	}
	bar := tables["X.CodeUnit.al"].Groups["Bar"]
	if bar.Status != model.Unique || len(bar.Occurrences) != 1 {
		t.Errorf("Bar = %+v", bar)
	}
}

func TestDeclarationsExhaustiveAndDisjoint(t *testing.T) {
	t.Parallel()

	a := located("A", "LLB", "X.CodeUnit.al")
	b := located("B", "LLB", "X.CodeUnit.al")
	c := located("C", "LLB", "X.CodeUnit.al")
	repeated, single := Files([]model.Repository{
		{Name: "A", Files: []model.LocatedFile{a}},
		{Name: "B", Files: []model.LocatedFile{b}},
		{Name: "C", Files: []model.LocatedFile{c}},
	})
	extract := fakeExtractor(map[string][]model.Declaration{
		a.Path: {decl("P", "P", 1), decl("Q", "Q", 2)},
		b.Path: {decl("Q", "Q", 1), decl("R", "R", 2)},
		c.Path: {decl("S", "S", 1)},
	}, nil)

	tables, _ := Declarations(repeated, single, extract)
	tbl := tables["X.CodeUnit.al"]
	if len(tbl.Keys) != len(tbl.Groups) {
		t.Fatalf("keys %v vs groups %d", tbl.Keys, len(tbl.Groups))
	}
	if tbl.Count(model.Repeated)+tbl.Count(model.Unique) != len(tbl.Keys) {
		t.Error("statuses are not exhaustive")
	}
	want := map[string]model.Status{"P": model.Unique, "Q": model.Repeated, "R": model.Unique, "S": model.Unique}
	for k, s := range want {
		if tbl.Groups[k].Status != s {
			t.Errorf("%s: status = %v, want %v", k, tbl.Groups[k].Status, s)
		}
	}
	if !reflect.DeepEqual(tbl.Keys, []string{"P", "Q", "R", "S"}) {
		t.Errorf("keys = %v", tbl.Keys)
	}
}

func TestDeclarationsEmptyFileKeepsTable(t *testing.T) {
	t.Parallel()

	a := located("RepoA", "LLB", "Empty.CodeUnit.al")
	repeated, single := Files([]model.Repository{{Name: "RepoA", Files: []model.LocatedFile{a}}})

	tables, problems := Declarations(repeated, single, fakeExtractor(nil, nil))
	if len(problems) != 0 {
		t.Fatalf("problems = %v", problems)
	}
	tbl, ok := tables["Empty.CodeUnit.al"]
	if !ok {
		t.Fatal("a file name without procedures should still have a table")
	}
	if len(tbl.Keys) != 0 || len(tbl.Groups) != 0 {
		t.Errorf("table = %+v", tbl)
	}
}
