// Package discover finds target files beneath marker directories in a
// directory of repositories.
package discover

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/procmap/internal/model"
)

const (
	DefaultMarker = "LLB"
	DefaultSuffix = ".CodeUnit.al"
)

// Options control what counts as a marker directory and a target file.
type Options struct {
	Marker           string // Directory name, matched exactly
	Suffix           string // File name suffix, matched exactly
	RespectGitignore bool
	MaxFileSize      int64       // Skip larger files when > 0
	Logger           *log.Logger // Warnings; nil discards them

	// WalkDir traverses one repository; nil means filepath.WalkDir.
	WalkDir func(root string, fn fs.WalkDirFunc) error
}

// ErrTooLarge marks a target file skipped because of MaxFileSize.
var ErrTooLarge = errors.New("file too large")

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Suffix == "" {
		o.Suffix = DefaultSuffix
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	if o.WalkDir == nil {
		o.WalkDir = filepath.WalkDir
	}
	return o
}

// NotFoundError reports a scan root that does not exist.
type NotFoundError struct {
	Root string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("root %s does not exist", e.Root)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".alpackages":  {},
	".snapshots":   {},
	".vscode":      {},
	"node_modules": {},
}

// Repositories treats every immediate subdirectory of root as a repository
// and collects its target files. A repository that fails to traverse
// contributes no files and one ScanError; the others are unaffected.
// Files skipped for size are reported as ScanErrors wrapping ErrTooLarge.
// Only a missing or unreadable root is returned as an error.
func Repositories(root string, opts Options) ([]model.Repository, []model.ScanError, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &NotFoundError{Root: root, Err: err}
		}
		return nil, nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s: not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("reading root: %w", err)
	}

	var (
		repos    []model.Repository
		problems []model.ScanError
	)
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		repoPath := filepath.Join(root, e.Name())
		files, skipped, err := Files(e.Name(), repoPath, opts)
		if err != nil {
			opts.Logger.Printf("Warning: repository %s: %v", e.Name(), err)
			problems = append(problems, model.ScanError{Repository: e.Name(), Err: err})
			continue
		}
		problems = append(problems, skipped...)
		repos = append(repos, model.Repository{Name: e.Name(), Path: repoPath, Files: files})
	}

	return repos, problems, nil
}

// Files returns the target files of a single repository in walk order,
// along with the files skipped for exceeding MaxFileSize.
// Each file is attributed to its nearest enclosing marker directory.
func Files(repoName, repoPath string, opts Options) ([]model.LocatedFile, []model.ScanError, error) {
	opts = opts.withDefaults()

	var gi *ignore.GitIgnore
	if opts.RespectGitignore {
		gi = loadGitignore(repoPath)
	}

	var (
		results []model.LocatedFile
		skipped []model.ScanError
	)

	err := opts.WalkDir(repoPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == repoPath {
			return nil
		}

		name := d.Name()
		rel, err := filepath.Rel(repoPath, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !strings.HasSuffix(name, opts.Suffix) {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		markerRel, ok := nearestMarker(rel, opts.Marker)
		if !ok {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			opts.Logger.Printf("Warning: %s/%s: skipped (>%d bytes)", repoName, rel, opts.MaxFileSize)
			skipped = append(skipped, model.ScanError{
				Repository: repoName,
				Path:       p,
				Err:        fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, fi.Size(), opts.MaxFileSize),
			})
			return nil
		}

		fromMarker := strings.TrimPrefix(rel, markerRel+"/")
		group := markerRel
		if sub := path.Dir(fromMarker); sub != "." {
			group = markerRel + "/" + sub
		}

		results = append(results, model.LocatedFile{
			Repository:  repoName,
			Path:        p,
			RelPath:     rel,
			MarkerPath:  fromMarker,
			MarkerGroup: group,
			Name:        name,
			Size:        fi.Size(),
			ModTime:     fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return results, skipped, nil
}

// nearestMarker returns the slash path of the deepest ancestor directory of
// rel named marker.
func nearestMarker(rel, marker string) (string, bool) {
	parts := strings.Split(path.Dir(rel), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == marker {
			return strings.Join(parts[:i+1], "/"), true
		}
	}
	return "", false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

