// Package site builds the decorated portal pages into an output directory.
package site

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/owif/web-portal/internal/assets"
	"github.com/owif/web-portal/internal/config"
	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/logging"
	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/nav"
	"github.com/owif/web-portal/internal/page"
)

// Builder decorates the pages of a site for one variant.
type Builder struct {
	Source fs.FS
	// SourceDir is the directory behind Source, empty for the embedded pages.
	SourceDir string
	Output    string
	Pages     []config.PageConfig
	Variant   string
	Decorator *page.Decorator
	History   *History
	Metrics   *metrics.Metrics

	logger *logrus.Entry
}

// NewBuilder resolves variant in cfg and prepares a builder for it. An empty
// variant selects the configured default; an empty site source selects the
// embedded pages.
func NewBuilder(cfg *config.Config, variant string, m *metrics.Metrics) (*Builder, error) {
	v, name, err := cfg.Variant(variant)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("site")
	return &Builder{
		Source:    SourceFS(cfg.Site.Source),
		SourceDir: cfg.Site.Source,
		Output:    cfg.Site.Output,
		Pages:     cfg.Site.Pages,
		Variant:   name,
		Decorator: &page.Decorator{
			Title:      cfg.Title(v),
			TitleMount: cfg.Site.TitleMount,
			MenuMount:  cfg.Site.MenuMount,
			Entries:    v.Entries,
			Brand:      v.Brand,
			Match:      v.Match,
			Metrics:    m,
			Logger:     logging.NewLogger("page"),
		},
		History: NewHistory(cfg.Site.History),
		Metrics: m,
		logger:  logger,
	}, nil
}

// SourceFS returns the page source for dir, or the embedded pages when dir
// is empty.
func SourceFS(dir string) fs.FS {
	if dir == "" {
		return assets.FS()
	}
	return os.DirFS(dir)
}

// Lookup returns the page served for route.
func (b *Builder) Lookup(route string) (config.PageConfig, bool) {
	route = nav.NormalizePath(route)
	for _, p := range b.Pages {
		if nav.NormalizePath(p.Route) == route {
			return p, true
		}
	}
	return config.PageConfig{}, false
}

// RenderRoute returns the decorated page for route, with location as the
// current location.
func (b *Builder) RenderRoute(location string) ([]byte, error) {
	p, ok := b.Lookup(location)
	if !ok {
		return nil, perrors.PageNotFound(nav.NormalizePath(location))
	}
	return b.renderPage(p, location)
}

func (b *Builder) renderPage(p config.PageConfig, location string) ([]byte, error) {
	src, err := fs.ReadFile(b.Source, p.File)
	if err != nil {
		return nil, perrors.PageNotFound(p.Route).WithDetail("file", p.File)
	}
	out, _, err := b.Decorator.DecorateBytes(p.File, src, location)
	return out, err
}

// Build decorates every page and copies every other source file into the
// output directory. Cancelling ctx stops the build between files.
func (b *Builder) Build(ctx context.Context) (BuildRecord, error) {
	start := time.Now()
	history := b.history()
	id := history.Start(b.Variant)

	pages, copied, err := b.build(ctx)

	b.Metrics.ObserveBuild(time.Since(start), err)
	rec, ok := history.Finish(id, pages, copied, err)
	if !ok {
		// Evicted by newer builds while this one ran.
		rec = BuildRecord{ID: id, Variant: b.Variant, StartedAt: start}
		rec.complete(pages, copied, err)
	}

	log := b.log().WithFields(logrus.Fields{
		"id":      id,
		"variant": b.Variant,
		"pages":   pages,
		"copied":  copied,
	})
	if err != nil {
		log.WithError(err).Error("Build failed")
		return rec, err
	}
	log.WithField("output", b.Output).Info("Build finished")
	return rec, nil
}

func (b *Builder) build(ctx context.Context) (int, int, error) {
	byFile := make(map[string]config.PageConfig, len(b.Pages))
	for _, p := range b.Pages {
		byFile[path.Clean(p.File)] = p
	}

	skip, err := b.OutputInSource()
	if err != nil {
		return 0, 0, err
	}

	if err := os.MkdirAll(b.Output, 0755); err != nil {
		return 0, 0, perrors.WriteFailed(b.Output, err)
	}

	var pages, copied int
	err = fs.WalkDir(b.Source, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if skip != "" && name == skip {
				return fs.SkipDir
			}
			return nil
		}

		var data []byte
		if p, ok := byFile[name]; ok {
			data, err = b.renderPage(p, p.Route)
			if err != nil {
				return err
			}
			delete(byFile, name)
			pages++
			b.Metrics.ObservePage()
		} else {
			data, err = fs.ReadFile(b.Source, name)
			if err != nil {
				return err
			}
			copied++
		}
		return writeFile(filepath.Join(b.Output, filepath.FromSlash(name)), data)
	})
	if err != nil {
		return pages, copied, err
	}

	for file, p := range byFile {
		b.log().WithFields(logrus.Fields{"file": file, "route": p.Route}).Warn("Page not found in source, skipped")
	}
	return pages, copied, nil
}

// OutputInSource returns the output directory relative to the source
// directory, in slash form, or "" when the output lies outside the source.
// An output equal to the source is rejected.
func (b *Builder) OutputInSource() (string, error) {
	if b.SourceDir == "" {
		return "", nil
	}
	src, err := filepath.Abs(b.SourceDir)
	if err != nil {
		return "", nil
	}
	out, err := filepath.Abs(b.Output)
	if err != nil {
		return "", nil
	}
	rel, err := filepath.Rel(src, out)
	if err != nil {
		return "", nil
	}
	switch {
	case rel == ".":
		return "", perrors.ConfigInvalid("site.output must not be the source directory").
			WithDetail("path", b.Output)
	case rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)):
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return perrors.WriteFailed(name, err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return perrors.WriteFailed(name, err)
	}
	return nil
}

func (b *Builder) history() *History {
	if b.History == nil {
		b.History = NewHistory(1)
	}
	return b.History
}

func (b *Builder) log() *logrus.Entry {
	if b.logger == nil {
		b.logger = logging.NewLogger("site")
	}
	return b.logger
}
