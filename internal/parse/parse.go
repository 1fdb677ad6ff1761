// Package parse extracts procedure declarations from AL source files using
// line-oriented pattern matching.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/phobologic/procmap/internal/model"
)

var procedureRe = regexp.MustCompile(`(?i)^\s*(local\s+|internal\s+)?procedure\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrInvalidEncoding is returned for files that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 content")

// File reads path and extracts its procedure declarations.
// Path is recorded on every returned declaration.
func File(path string) ([]model.Declaration, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decls, err := Procedures(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range decls {
		decls[i].Path = path
	}
	return decls, nil
}

// Procedures scans source line by line and returns one declaration per
// matching line, in order. A name seen again in the same source is keyed
// Name_2, Name_3, ... so no occurrence is lost.
func Procedures(source []byte) ([]model.Declaration, error) {
	source = bytes.TrimPrefix(source, utf8BOM)
	if !utf8.Valid(source) {
		return nil, ErrInvalidEncoding
	}

	var decls []model.Declaration
	seen := make(map[string]struct{})

	for i, line := range strings.Split(string(source), "\n") {
		text := strings.TrimSpace(line)
		m := procedureRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		name := m[2]
		key := name
		for n := 2; ; n++ {
			if _, dup := seen[key]; !dup {
				break
			}
			key = name + "_" + strconv.Itoa(n)
		}
		seen[key] = struct{}{}

		decls = append(decls, model.Declaration{
			Key:      key,
			Name:     name,
			Modifier: modifierOf(m[1]),
			Line:     i + 1,
			Text:     text,
		})
	}

	return decls, nil
}

func modifierOf(raw string) model.Modifier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "local":
		return model.Local
	case "internal":
		return model.Internal
	default:
		return model.Public
	}
}
