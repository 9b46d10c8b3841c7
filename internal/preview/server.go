// Package preview runs the local serve mode: it keeps the most recent
// successful SiteModel in memory, rebuilds on content changes, and exposes
// the manifest, build status, and metrics over HTTP.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/history"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/manifest"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
)

const (
	rebuildDebounce = 500 * time.Millisecond
	shutdownTimeout = 10 * time.Second
	recentBuilds    = 20
)

// Server is the preview server. The current SiteModel is swapped wholesale on
// successful rebuilds; failed builds leave the previous model in place.
type Server struct {
	cfg       *config.Config
	assembler *site.Assembler
	metrics   *metrics.Metrics
	store     *history.Store

	current atomic.Pointer[site.Model]
}

// New creates a preview server.
func New(cfg *config.Config, store *history.Store) *Server {
	return &Server{
		cfg:       cfg,
		assembler: site.NewAssembler(cfg),
		metrics:   metrics.New(),
		store:     store,
	}
}

// Run performs an initial build and serves until the context is canceled.
// The initial build must succeed; later rebuilds are best-effort.
func (s *Server) Run(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		return err
	}

	rebuilds := make(chan struct{}, 1)

	if s.cfg.Serve.Watch {
		watcher, err := s.startWatcher(ctx, rebuilds)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	interval, err := s.cfg.Serve.RebuildEvery()
	if err != nil {
		return err
	}
	if interval > 0 {
		scheduler, err := s.startScheduler(interval, rebuilds)
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	go s.rebuildLoop(ctx, rebuilds)

	srv := &http.Server{
		Addr:    s.cfg.Serve.Addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", slog.String("addr", s.cfg.Serve.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(stopCtx)
}

// rebuild runs one build pass, recording metrics and history, and swaps the
// current model only on success.
func (s *Server) rebuild(ctx context.Context) error {
	start := time.Now()
	model, err := s.assembler.Build(ctx)
	duration := time.Since(start)

	if err != nil {
		s.metrics.ObserveBuildFailure(duration, err)
		s.record(ctx, history.BuildRecord{
			BuildID:  "",
			Started:  start.UTC(),
			Duration: duration,
			Status:   "failed",
			Issues:   blogerr.IssueCount(err),
		})
		return err
	}

	s.current.Store(model)
	s.metrics.ObserveBuildSuccess(duration, model.PostCount(), model.TagCount())
	s.record(ctx, history.BuildRecord{
		BuildID:  model.BuildID,
		Started:  start.UTC(),
		Duration: duration,
		Status:   "success",
		Posts:    model.PostCount(),
		Tags:     model.TagCount(),
	})

	path := filepath.Join(s.cfg.Output.Dir, s.cfg.Output.Manifest)
	if err := manifest.Write(manifest.FromModel(model), path); err != nil {
		slog.Warn("Failed to write manifest", logfields.Path(path), logfields.Error(err))
	}
	return nil
}

func (s *Server) record(ctx context.Context, rec history.BuildRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.Record(ctx, rec); err != nil {
		slog.Warn("Failed to record build history", logfields.Error(err))
	}
}

// rebuildLoop debounces rebuild requests so bursts of file events trigger a
// single build.
func (s *Server) rebuildLoop(ctx context.Context, rebuilds <-chan struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuilds:
			if timer == nil {
				timer = time.NewTimer(rebuildDebounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(rebuildDebounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			if err := s.rebuild(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Rebuild failed, keeping previous site model", logfields.Error(err))
			}
		}
	}
}

// startWatcher watches the content tree for changes. fsnotify does not
// recurse, so every subdirectory is registered up front and new ones as they
// appear.
func (s *Server) startWatcher(ctx context.Context, rebuilds chan<- struct{}) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	addTree := func(root string) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
				_ = watcher.Add(path)
			}
			return nil
		})
	}
	addTree(s.cfg.Content.Dir)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) {
					addTree(event.Name)
				}
				slog.Debug("Content change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				select {
				case rebuilds <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Watcher error", logfields.Error(err))
			}
		}
	}()

	return watcher, nil
}

func (s *Server) startScheduler(interval time.Duration, rebuilds chan<- struct{}) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			select {
			case rebuilds <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	slog.Info("Scheduled rebuilds enabled", slog.Duration("interval", interval))
	return scheduler, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /manifest.json", s.handleManifest)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	model := s.current.Load()
	if model == nil {
		http.Error(w, "no successful build yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(manifest.FromModel(model))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type status struct {
		CurrentBuild string                `json:"current_build,omitempty"`
		Posts        int                   `json:"posts"`
		Recent       []history.BuildRecord `json:"recent,omitempty"`
	}

	var st status
	if model := s.current.Load(); model != nil {
		st.CurrentBuild = model.BuildID
		st.Posts = model.PostCount()
	}
	if s.store != nil {
		if recent, err := s.store.Recent(r.Context(), recentBuilds); err == nil {
			st.Recent = recent
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
