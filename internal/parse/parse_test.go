package parse

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/phobologic/procmap/internal/model"
)

func extract(t *testing.T, source string) []model.Declaration {
	t.Helper()
	decls, err := Procedures([]byte(source))
	if err != nil {
		t.Fatalf("Procedures: %v", err)
	}
	return decls
}

func keys(decls []model.Declaration) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = d.Key
	}
	return out
}

func TestExtractPublicProcedure(t *testing.T) {
	t.Parallel()

	decls := extract(t, "codeunit 50100 Calc\n{\n    procedure Calc()\n    begin\n    end;\n}\n")
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	d := decls[0]
	if d.Name != "Calc" || d.Key != "Calc" {
		t.Errorf("name/key = %q/%q, want Calc/Calc", d.Name, d.Key)
	}
	if d.Modifier != model.Public {
		t.Errorf("modifier = %q, want public", d.Modifier)
	}
	if d.Line != 3 {
		t.Errorf("line = %d, want 3", d.Line)
	}
	if d.Text != "procedure Calc()" {
		t.Errorf("text = %q", d.Text)
	}
}

func TestExtractModifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want model.Modifier
	}{
		{"local", "local procedure Helper()", model.Local},
		{"internal", "internal procedure Post(var Rec: Record Customer)", model.Internal},
		{"upper case keywords", "LOCAL PROCEDURE Helper()", model.Local},
		{"mixed case", "Internal Procedure Helper()", model.Internal},
		{"none", "procedure Helper(): Boolean", model.Public},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			decls := extract(t, tt.line)
			if len(decls) != 1 {
				t.Fatalf("expected 1 declaration, got %d", len(decls))
			}
			if decls[0].Modifier != tt.want {
				t.Errorf("modifier = %q, want %q", decls[0].Modifier, tt.want)
			}
			if decls[0].Name != "Helper" && decls[0].Name != "Post" {
				t.Errorf("name = %q", decls[0].Name)
			}
		})
	}
}

func TestExtractNonMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"no paren", "procedure Helper"},
		{"digit first", "procedure 1Helper()"},
		{"comment", "// procedure Helper()"},
		{"call site", "Helper();"},
		{"trigger", "trigger OnRun()"},
		{"other modifier", "protected procedure Helper()"},
		{"attribute on same line", "[EventSubscriber] procedure Helper()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if decls := extract(t, tt.line); len(decls) != 0 {
				t.Errorf("expected no declarations, got %+v", decls)
			}
		})
	}
}

func TestExtractWhitespaceBeforeParen(t *testing.T) {
	t.Parallel()

	decls := extract(t, "\tprocedure   Spaced_Name_1 (x: Integer)\r\n")
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	if decls[0].Name != "Spaced_Name_1" {
		t.Errorf("name = %q", decls[0].Name)
	}
	if decls[0].Text != "procedure   Spaced_Name_1 (x: Integer)" {
		t.Errorf("text = %q", decls[0].Text)
	}
}

func TestExtractCollisionSuffix(t *testing.T) {
	t.Parallel()

	source := `procedure Foo()
begin
end;

procedure Foo(x: Integer)
begin
end;

local procedure Foo(x: Integer; y: Integer)
`
	decls := extract(t, source)
	want := []string{"Foo", "Foo_2", "Foo_3"}
	if got := keys(decls); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	lines := []int{1, 5, 9}
	for i, d := range decls {
		if d.Name != "Foo" {
			t.Errorf("decl %d: name = %q, want Foo", i, d.Name)
		}
		if d.Line != lines[i] {
			t.Errorf("decl %d: line = %d, want %d", i, d.Line, lines[i])
		}
	}
	if decls[2].Modifier != model.Local {
		t.Errorf("third overload modifier = %q, want local", decls[2].Modifier)
	}
}

func TestExtractCollisionWithLiteralSuffixedName(t *testing.T) {
	t.Parallel()

	// A real procedure already named Foo_2 pushes the second Foo to Foo_3.
	decls := extract(t, "procedure Foo()\nprocedure Foo_2()\nprocedure Foo()\n")
	want := []string{"Foo", "Foo_2", "Foo_3"}
	if got := keys(decls); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if decls[2].Name != "Foo" || decls[2].Line != 3 {
		t.Errorf("third decl = %+v", decls[2])
	}
}

func TestExtractIdempotent(t *testing.T) {
	t.Parallel()

	source := "procedure A()\nlocal procedure B()\nprocedure A()\n"
	first := extract(t, source)
	second := extract(t, source)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestExtractBOM(t *testing.T) {
	t.Parallel()

	decls := extract(t, "\xEF\xBB\xBFprocedure First()\n")
	if len(decls) != 1 || decls[0].Name != "First" {
		t.Fatalf("expected First after BOM, got %+v", decls)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := Procedures([]byte("procedure A()\n\xff\xfe\n"))
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("err = %v, want ErrInvalidEncoding", err)
	}
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()

	if decls := extract(t, ""); len(decls) != 0 {
		t.Errorf("expected no declarations, got %d", len(decls))
	}
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "X.CodeUnit.al")
	if err := os.WriteFile(path, []byte("procedure Bar()\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	decls, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(decls) != 1 || decls[0].Path != path {
		t.Fatalf("decls = %+v", decls)
	}
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	_, err := File(filepath.Join(t.TempDir(), "missing.CodeUnit.al"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
