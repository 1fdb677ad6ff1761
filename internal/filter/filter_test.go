package filter

import (
	"reflect"
	"testing"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
)

func group(file, key string, status model.Status) *model.DeclarationGroup {
	return &model.DeclarationGroup{
		File:   file,
		Key:    key,
		Status: status,
		Occurrences: []model.Declaration{
			{Key: key, Name: key, Modifier: model.Public, Line: 1},
		},
	}
}

func table(file string, groups ...*model.DeclarationGroup) *model.DeclarationTable {
	t := &model.DeclarationTable{File: file, Groups: map[string]*model.DeclarationGroup{}}
	for _, g := range groups {
		t.Keys = append(t.Keys, g.Key)
		t.Groups[g.Key] = g
	}
	return t
}

func makeReport() *report.Report {
	r := report.New("/repos", "LLB", ".CodeUnit.al")
	files := []model.LocatedFile{
		{Repository: "A", Name: "Sales.CodeUnit.al", Path: "/repos/A/LLB/Sales.CodeUnit.al"},
		{Repository: "A", Name: "Purch.CodeUnit.al", Path: "/repos/A/LLB/Purch.CodeUnit.al"},
		{Repository: "A", Name: "Misc.CodeUnit.al", Path: "/repos/A/LLB/Misc.CodeUnit.al"},
	}
	r.Repositories = []model.Repository{{Name: "A", Files: files}}
	for _, f := range files {
		r.Single[f.Name] = &model.FileGroup{Name: f.Name, Groups: []string{"A/LLB"}, Repositories: []string{"A"},
			Files: []model.GroupedFile{{File: f, GroupID: "A/LLB"}}}
	}
	r.Declarations["Sales.CodeUnit.al"] = table("Sales.CodeUnit.al",
		group("Sales.CodeUnit.al", "PostSale", model.Repeated),
		group("Sales.CodeUnit.al", "CalcDiscount", model.Unique),
	)
	r.Declarations["Purch.CodeUnit.al"] = table("Purch.CodeUnit.al",
		group("Purch.CodeUnit.al", "PostPurchase", model.Repeated),
		group("Purch.CodeUnit.al", "Archive", model.Repeated),
		group("Purch.CodeUnit.al", "Release", model.Unique),
	)
	r.Declarations["Misc.CodeUnit.al"] = table("Misc.CodeUnit.al",
		group("Misc.CodeUnit.al", "Helper", model.Unique),
	)
	return r
}

func TestByFile(t *testing.T) {
	t.Parallel()

	got := ByFile(makeReport(), "sales")
	if !reflect.DeepEqual(got.FileNames(), []string{"Sales.CodeUnit.al"}) {
		t.Fatalf("files = %v", got.FileNames())
	}
	if len(got.Declarations["Sales.CodeUnit.al"].Keys) != 2 {
		t.Error("file filter should keep every procedure")
	}
	if len(got.Single) != 1 {
		t.Errorf("single = %d, want 1", len(got.Single))
	}
	if len(got.Repositories[0].Files) != 1 {
		t.Errorf("repository files = %d, want 1", len(got.Repositories[0].Files))
	}
}

func TestByProcedure(t *testing.T) {
	t.Parallel()

	got := ByProcedure(makeReport(), "post")
	if !reflect.DeepEqual(got.FileNames(), []string{"Purch.CodeUnit.al", "Sales.CodeUnit.al"}) {
		t.Fatalf("files = %v", got.FileNames())
	}
	if !reflect.DeepEqual(got.Declarations["Purch.CodeUnit.al"].Keys, []string{"PostPurchase"}) {
		t.Errorf("purch keys = %v", got.Declarations["Purch.CodeUnit.al"].Keys)
	}
}

func TestByStatus(t *testing.T) {
	t.Parallel()

	r := makeReport()
	got := ByStatus(r, model.Repeated)
	if _, ok := got.Declarations["Misc.CodeUnit.al"]; ok {
		t.Error("file without repeated procedures should be dropped")
	}
	if s := got.Stats(); s.Procedures != 3 || s.UniqueProcedures != 0 {
		t.Errorf("stats = %+v", s)
	}

	// The source report is untouched.
	if s := r.Stats(); s.Procedures != 6 {
		t.Errorf("source stats changed: %+v", s)
	}
}

func TestSelectFilesAll(t *testing.T) {
	t.Parallel()

	r := makeReport()
	if SelectFiles(r, 0) != r {
		t.Error("maxFiles=0 should return original")
	}
	if SelectFiles(r, 3) != r {
		t.Error("maxFiles == len should return original")
	}
	if SelectFiles(r, 10) != r {
		t.Error("maxFiles > len should return original")
	}
}

func TestSelectFilesRanked(t *testing.T) {
	t.Parallel()

	got := SelectFiles(makeReport(), 2)
	if !reflect.DeepEqual(got.FileNames(), []string{"Purch.CodeUnit.al", "Sales.CodeUnit.al"}) {
		t.Errorf("files = %v", got.FileNames())
	}

	got = SelectFiles(makeReport(), 1)
	if !reflect.DeepEqual(got.FileNames(), []string{"Purch.CodeUnit.al"}) {
		t.Errorf("files = %v", got.FileNames())
	}
}
