package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/extract"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/repository"
	"git.home.luguber.info/inful/blogbuilder/internal/series"
	"git.home.luguber.info/inful/blogbuilder/internal/tagindex"
	"github.com/google/uuid"
)

// Assembler runs the full build pass: discover, parse, merge, index, link.
// A build is all-or-nothing; on any error no Model is produced.
type Assembler struct {
	cfg *config.Config
}

// NewAssembler creates an assembler for the given configuration.
func NewAssembler(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// parseResult carries one source's outcome from a parse worker to the merge
// step.
type parseResult struct {
	source string
	post   *post.Post
	err    error
}

// Build runs a complete build. Every per-source error is collected before the
// build aborts, so the operator can fix all issues in one pass.
func (a *Assembler) Build(ctx context.Context) (*Model, error) {
	buildID := uuid.NewString()
	start := time.Now()
	slog.Info("Starting site build",
		logfields.BuildID(buildID),
		logfields.Path(a.cfg.Content.Dir))

	sources, err := a.discoverSources()
	if err != nil {
		return nil, err
	}
	slog.Debug("Sources discovered", logfields.BuildID(buildID), slog.Int("sources", len(sources)))

	issues := &blogerr.Issues{}
	repo := repository.New()

	// Parsing is embarrassingly parallel; the merge below is the single
	// writer and the only synchronization point, so the permalink
	// uniqueness check in repo.Add cannot race.
	results := a.parseAll(ctx, sources)
	for res := range results {
		if res.err != nil {
			issues.Add(res.source, res.err)
			continue
		}
		if err := repo.Add(res.post); err != nil {
			issues.Add(res.source, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := issues.Err(); err != nil {
		slog.Error("Build aborted during ingestion", logfields.BuildID(buildID), logfields.Issues(issues.Len()))
		return nil, err
	}

	repo.Freeze()

	tags := tagindex.Build(repo)
	links, linkIssues := series.Resolve(repo)
	if err := linkIssues.Err(); err != nil {
		slog.Error("Build aborted during series linking", logfields.BuildID(buildID), logfields.Issues(linkIssues.Len()))
		return nil, err
	}

	model := &Model{
		BuildID:   buildID,
		BuiltAt:   start.UTC(),
		SiteTitle: a.cfg.Site.Title,
		BaseURL:   a.cfg.Site.BaseURL,
		Posts:     repo.All(),
		Tags:      tags,
		Series:    links,
	}

	slog.Info("Site build completed",
		logfields.BuildID(buildID),
		logfields.Posts(model.PostCount()),
		logfields.Tags(model.TagCount()),
		slog.Int("series_links", links.Len()),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	return model, nil
}

// discoverSources walks the content directory for post sources with a
// configured extension, applying the include/exclude globs to the relative
// path. The result is sorted so builds are deterministic.
func (a *Assembler) discoverSources() ([]string, error) {
	exts := make(map[string]struct{}, len(a.cfg.Content.Extensions))
	for _, ext := range a.cfg.Content.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	filter, err := NewSourceFilter(a.cfg.Content.Include, a.cfg.Content.Exclude)
	if err != nil {
		return nil, blogerr.Wrap(err, blogerr.CategoryConfig, "content filter")
	}

	var sources []string
	err = filepath.WalkDir(a.cfg.Content.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := exts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if !filter.Include(a.relativeSource(path)) {
			return nil
		}
		sources = append(sources, path)
		return nil
	})
	if err != nil {
		return nil, blogerr.Wrap(err, blogerr.CategoryFileSystem, "walking content directory")
	}
	sort.Strings(sources)
	return sources, nil
}

// parseAll fans the sources out over a bounded worker pool. Each worker
// produces independent Post values with no shared mutable state.
func (a *Assembler) parseAll(ctx context.Context, sources []string) <-chan parseResult {
	workers := a.cfg.Build.Workers
	if workers > len(sources) && len(sources) > 0 {
		workers = len(sources)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan parseResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				p, err := a.parseSource(source)
				select {
				case results <- parseResult{source: source, post: p, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, source := range sources {
			select {
			case jobs <- source:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// parseSource reads and parses one raw source into a Post. A next reference
// in the body is only consulted when the front matter declares none.
func (a *Assembler) parseSource(path string) (*post.Post, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, blogerr.Wrap(err, blogerr.CategoryFileSystem, "reading source").WithSource(path)
	}

	meta, body, _, err := frontmatter.Parse(content)
	if err != nil {
		return nil, err
	}

	source := a.relativeSource(path)
	p := post.New(source, meta, body)
	if p.Slug() == "" {
		return nil, blogerr.Wrap(blogerr.ErrEmptySlug, blogerr.CategoryPermalink,
			fmt.Sprintf("source name %q contains no slug characters", filepath.Base(path))).WithSource(source)
	}
	if p.Next == "" {
		p.Next = extract.NextRef(body, p.Extension)
	}
	return p, nil
}

// relativeSource keys posts by their path under the content dir, keeping
// source identity stable across machines.
func (a *Assembler) relativeSource(path string) string {
	rel, err := filepath.Rel(a.cfg.Content.Dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
