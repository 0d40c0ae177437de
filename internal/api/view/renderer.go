// Package view renders the catalog's server-side HTML pages.
//
// Every page is parsed together with layout.html, which defines the
// "layout" template the page is executed through. Pages are embedded in the
// binary; when a directory is configured they are read from disk instead and
// reparsed whenever a file in it changes.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/search"
	"github.com/locallibrary/catalog/internal/validation"
)

//go:embed templates/*.html
var embedded embed.FS

// layoutFile holds the "layout" definition shared by every page.
const layoutFile = "layout.html"

// reloadDelay coalesces the burst of events editors emit on save.
const reloadDelay = 100 * time.Millisecond

// ErrUnknownPage is returned when rendering a page that was never parsed.
var ErrUnknownPage = errors.New("unknown page")

// Options configures a Renderer.
type Options struct {
	// Dir, when set, loads templates from disk and watches it for changes.
	Dir    string
	Logger *slog.Logger
}

// Renderer executes parsed pages.
type Renderer struct {
	fsys   fs.FS
	logger *slog.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// New parses every page and, when opts.Dir is set, starts watching it.
func New(opts Options) (*Renderer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Renderer{logger: logger, done: make(chan struct{})}
	if opts.Dir != "" {
		r.fsys = os.DirFS(opts.Dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("open embedded templates: %w", err)
		}
		r.fsys = sub
	}

	if err := r.reload(); err != nil {
		return nil, err
	}

	if opts.Dir != "" {
		if err := r.watch(opts.Dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Pages returns the names of the parsed pages, sorted.
func (r *Renderer) Pages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Render executes page with data and writes it with the given status.
// Nothing is written when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	r.mu.RLock()
	tmpl, ok := r.pages[page]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Close stops watching the template directory.
func (r *Renderer) Close() error {
	if r.watcher == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	default:
		close(r.done)
	}
	err := r.watcher.Close()
	r.wg.Wait()
	return err
}

// Shutdown implements do.Shutdowner.
func (r *Renderer) Shutdown() error {
	return r.Close()
}

// reload parses every page and swaps the set in. The previous set is kept
// when parsing fails.
func (r *Renderer) reload() error {
	files, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(file, path.Ext(file))
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(r.fsys, layoutFile, file)
		if err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}
		pages[name] = tmpl
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

func (r *Renderer) watch(dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.watcher = w

	r.wg.Add(1)
	go r.processEvents()
	r.logger.Info("watching templates for changes", "dir", dir)
	return nil
}

func (r *Renderer) processEvents() {
	defer r.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if path.Ext(event.Name) != ".html" || event.Op == fsnotify.Chmod {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				if err := r.reload(); err != nil {
					r.logger.Error("template reload failed", "error", err)
					return
				}
				r.logger.Debug("templates reloaded", "trigger", event.Name)
			})
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("template watcher error", "error", err)
		}
	}
}

// funcs are available to every page.
var funcs = template.FuncMap{
	// Stored text is escaped on the way in. Escape leaves existing entities
	// alone, so the result is markup escaped exactly once.
	"escaped": func(s string) template.HTML {
		return template.HTML(validation.Escape(s))
	},
	"inputDate": func(s string) string {
		t, ok := validation.ParseISO8601(s)
		if !ok {
			return s
		}
		return t.Format(time.DateOnly)
	},
	"contains": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
	"statuses": func() []domain.Status {
		return domain.Statuses
	},
	"docTypes": func() []search.DocType {
		return search.DocTypes
	},
	"sortOrders": func() []string {
		return search.SortOrders
	},
}
