package summarize

import (
	"fmt"
	"strings"
)

const (
	procedureContextLines = 100
	procedureContextChars = 500
	fileContentChars      = 2000
)

// ProcedurePrompt asks for a one-sentence description of a procedure. When
// body is non-empty it is included, truncated, as context.
func ProcedurePrompt(name, line, body string) string {
	if body == "" {
		return fmt.Sprintf(`Based on this Business Central AL procedure line, briefly describe what it does in fewer than 30 words:

%s

Answer with the main functionality only.`, line)
	}
	return fmt.Sprintf(`Analyze this Business Central AL procedure and briefly describe what it does in fewer than 40 words:

Name: %s
Line: %s

Code context:
%s

Answer with the functionality only, without additional technical explanations.`, name, line, truncate(body, procedureContextChars))
}

// FilePrompt asks for a summary of a whole file. When content is empty the
// model is asked to infer the purpose from the name alone.
func FilePrompt(name, content string) string {
	if content == "" {
		return fmt.Sprintf(`Based only on the file name '%s', infer and briefly describe:

1. Its likely main function
2. Its probable purpose

Answer in fewer than 80 words.`, name)
	}
	return fmt.Sprintf(`Analyze this code from the file '%s' and briefly describe its main functionality:

Code:
%s

Answer in fewer than 150 words.`, name, truncate(content, fileContentChars))
}

// procedureBody returns the lines of source starting at the 1-based line
// number, at most procedureContextLines of them.
func procedureBody(source string, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	start := line - 1
	if start >= len(lines) {
		return ""
	}
	end := min(len(lines), line+procedureContextLines)
	return strings.Join(lines[start:end], "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary.
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
