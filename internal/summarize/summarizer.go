package summarize

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/phobologic/procmap/internal/model"
)

// Options configure a Summarizer.
type Options struct {
	RequestsPerMinute int // 0 disables pacing
	Timeout           time.Duration
	ReadFile          func(path string) ([]byte, error) // Defaults to os.ReadFile
}

// Summarizer describes procedures and files, serving repeats from a Cache.
type Summarizer struct {
	gen     Generator
	cache   *Cache
	limiter *rate.Limiter
	timeout time.Duration
	read    func(string) ([]byte, error)
}

// NewSummarizer wires gen and cache together. gen may be nil, in which case
// every request fails with ErrUnavailable.
func NewSummarizer(gen Generator, cache *Cache, opts Options) *Summarizer {
	s := &Summarizer{
		gen:     gen,
		cache:   cache,
		timeout: opts.Timeout,
		read:    opts.ReadFile,
	}
	if s.read == nil {
		s.read = os.ReadFile
	}
	if opts.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return s
}

// Available reports whether a generator is configured.
func (s *Summarizer) Available() bool { return s != nil && s.gen != nil }

// Name returns the generator's name, or "" when unavailable.
func (s *Summarizer) Name() string {
	if !s.Available() {
		return ""
	}
	return s.gen.Name()
}

// Cache returns the cache the summarizer memoizes into.
func (s *Summarizer) Cache() *Cache { return s.cache }

// Procedure describes the first occurrence of a declaration group. The
// result is cached under (file, key); failures are not cached.
func (s *Summarizer) Procedure(ctx context.Context, file string, g *model.DeclarationGroup) (string, error) {
	key := Key{File: file, Declaration: g.Key}
	if d, ok := s.cache.Get(key); ok {
		return d, nil
	}
	if !s.Available() {
		return "", ErrUnavailable
	}
	if len(g.Occurrences) == 0 {
		return "", fmt.Errorf("%s: no occurrences to describe", g.Key)
	}

	occ := g.Occurrences[0]
	var body string
	if occ.Path != "" && occ.Line > 0 {
		if src, err := s.read(occ.Path); err == nil {
			body = procedureBody(string(src), occ.Line)
		}
	}

	d, err := s.generate(ctx, ProcedurePrompt(occ.Name, occ.Text, body))
	if err != nil {
		return "", err
	}
	s.cache.Put(key, d)
	return d, nil
}

// File describes a whole file by reading it from path. When the file cannot
// be read the description is inferred from the name alone. The result is
// cached under (name, "").
func (s *Summarizer) File(ctx context.Context, name, path string) (string, error) {
	key := Key{File: name}
	if d, ok := s.cache.Get(key); ok {
		return d, nil
	}
	if !s.Available() {
		return "", ErrUnavailable
	}

	var content string
	if path != "" {
		if src, err := s.read(path); err == nil {
			content = string(src)
		}
	}

	d, err := s.generate(ctx, FilePrompt(name, content))
	if err != nil {
		return "", err
	}
	s.cache.Put(key, d)
	return d, nil
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.gen.Generate(ctx, prompt)
}
