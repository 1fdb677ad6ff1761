// Package toon renders analysis reports in TOON (Token-Oriented Object
// Notation), a compact tabular format suited to LLM context windows.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/procmap/internal/model"
	"github.com/phobologic/procmap/internal/report"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode renders a report in TOON format: a short header followed by the
// files, procedures, occurrences and errors tables.
func Encode(r *report.Report) string {
	var parts []string

	st := r.Stats()
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))
	parts = append(parts, fmt.Sprintf("marker: %s", encodeValue(r.Marker)))
	parts = append(parts, fmt.Sprintf("suffix: %s", encodeValue(r.Suffix)))
	parts = append(parts, fmt.Sprintf("procedures: %d", st.Procedures))
	parts = append(parts, fmt.Sprintf("repeated: %d", st.RepeatedProcedures))
	parts = append(parts, fmt.Sprintf("unique: %d", st.UniqueProcedures))

	names := r.FileNames()

	var fileRows [][]string
	for _, name := range names {
		g, ok := r.Group(name)
		if !ok {
			continue
		}
		status := "single"
		if g.Status() == model.Repeated {
			status = "repeated"
		}
		fileRows = append(fileRows, []string{
			name,
			status,
			strings.Join(g.Groups, " "),
			strings.Join(g.Repositories, " "),
		})
	}
	parts = append(parts, formatTabular("files", []string{"name", "status", "groups", "repositories"}, fileRows))

	var procRows, occRows [][]string
	for _, name := range names {
		t, _ := r.Table(name)
		for _, dg := range t.Ordered() {
			procRows = append(procRows, []string{
				name,
				dg.Key,
				strings.ToLower(dg.Status.String()),
				strings.Join(dg.Repositories, " "),
			})
			for _, occ := range dg.Occurrences {
				occRows = append(occRows, []string{
					name,
					dg.Key,
					occ.Repository,
					string(occ.Modifier),
					fmt.Sprintf("%d", occ.Line),
					occ.Text,
				})
			}
		}
	}
	parts = append(parts, formatTabular("procedures", []string{"file", "key", "status", "repositories"}, procRows))
	parts = append(parts, formatTabular("occurrences", []string{"file", "key", "repository", "modifier", "line", "text"}, occRows))

	if len(r.Errors) > 0 {
		var errRows [][]string
		for _, e := range r.Errors {
			errRows = append(errRows, []string{e.Error()})
		}
		parts = append(parts, formatTabular("errors", []string{"message"}, errRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
