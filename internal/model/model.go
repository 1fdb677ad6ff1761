// Package model defines core data structures for procmap.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Modifier is the access modifier of a procedure declaration.
type Modifier string

const (
	Public   Modifier = "public"
	Local    Modifier = "local"
	Internal Modifier = "internal"
)

// Status classifies a declaration as seen in one repository or in several.
type Status int

const (
	Unique Status = iota
	Repeated
)

func (s Status) String() string {
	switch s {
	case Repeated:
		return "REPEATED"
	case Unique:
		return "UNIQUE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status by name so reports stay readable.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case Repeated, Unique:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
}

// UnmarshalText accepts REPEATED or UNIQUE.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStatus maps a case-insensitive name to a Status.
func ParseStatus(name string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "REPEATED":
		return Repeated, nil
	case "UNIQUE":
		return Unique, nil
	}
	return Unique, fmt.Errorf("unknown status %q (want repeated or unique)", name)
}

// LocatedFile is one target file found beneath a marker directory.
type LocatedFile struct {
	Repository  string    `json:"repository"`
	Path        string    `json:"path"`         // Full path on disk
	RelPath     string    `json:"rel_path"`     // Relative to repository root
	MarkerPath  string    `json:"marker_path"`  // Relative to nearest marker directory
	MarkerGroup string    `json:"marker_group"` // Marker dir relative to repository, plus any nested folder
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modified"`
}

// Repository is a top-level scanned directory and the files found in it.
type Repository struct {
	Name  string        `json:"name"`
	Path  string        `json:"path"`
	Files []LocatedFile `json:"files"`
}

// GroupedFile is a LocatedFile tagged with its repository-qualified marker group.
type GroupedFile struct {
	File    LocatedFile `json:"file"`
	GroupID string      `json:"group_id"`
}

// FileGroup holds every occurrence of one file name across repositories.
type FileGroup struct {
	Name         string        `json:"name"`
	Groups       []string      `json:"marker_groups"`
	Repositories []string      `json:"repositories"`
	Files        []GroupedFile `json:"files"`
}

// Status reports Repeated when the name occurs under more than one marker group.
func (g *FileGroup) Status() Status {
	if len(g.Groups) > 1 {
		return Repeated
	}
	return Unique
}

// Declaration is one procedure signature found in a file.
type Declaration struct {
	Key        string   `json:"key"` // Name, or Name_N for later duplicates in the same file
	Name       string   `json:"name"`
	Modifier   Modifier `json:"modifier"`
	Line       int      `json:"line"`
	Text       string   `json:"text"`
	Path       string   `json:"path,omitempty"`
	Repository string   `json:"repository,omitempty"`
}

// DeclarationGroup holds every occurrence of one declaration key of one file name.
type DeclarationGroup struct {
	File         string        `json:"file"`
	Key          string        `json:"key"`
	Status       Status        `json:"status"`
	Repositories []string      `json:"repositories"`
	Occurrences  []Declaration `json:"occurrences"`
}

// DeclarationTable is the classified declarations of one file name in
// discovery order.
type DeclarationTable struct {
	File   string                       `json:"file"`
	Keys   []string                     `json:"keys"`
	Groups map[string]*DeclarationGroup `json:"groups"`
}

// Ordered returns the groups in discovery order.
func (t *DeclarationTable) Ordered() []*DeclarationGroup {
	out := make([]*DeclarationGroup, 0, len(t.Keys))
	for _, k := range t.Keys {
		out = append(out, t.Groups[k])
	}
	return out
}

// Count returns how many groups have the given status.
func (t *DeclarationTable) Count(s Status) int {
	n := 0
	for _, g := range t.Groups {
		if g.Status == s {
			n++
		}
	}
	return n
}

// ScanError is a non-fatal problem recorded during a run.
type ScanError struct {
	Repository string
	Path       string
	Err        error
}

func (e ScanError) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
	case e.Repository != "":
		return fmt.Sprintf("repository %s: %v", e.Repository, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e ScanError) Unwrap() error { return e.Err }
