// Package page applies the portal chrome (title and navigation bar) to
// HTML documents.
package page

import (
	"bytes"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/logging"
	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/nav"
)

// Parse reads a full HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Write renders doc back to markup.
func Write(w io.Writer, doc *html.Node) error {
	return html.Render(w, doc)
}

// Decorator renders the title and the menu of one variant into pages.
type Decorator struct {
	Title      string
	TitleMount string
	MenuMount  string
	Entries    nav.List
	Brand      nav.Brand
	Match      nav.MatchMode

	Metrics *metrics.Metrics
	Logger  *logrus.Entry
}

// Result describes what Decorate did to a document.
type Result struct {
	Mounted bool
	Active  nav.Link
	// HasActive is false when no entry matched the location.
	HasActive bool
}

// Decorate renders the title and the navigation bar for location into doc.
// Missing mounts are skipped.
func (d *Decorator) Decorate(doc *html.Node, location string) Result {
	if d.TitleMount != "" && d.Title != "" {
		nav.RenderTitle(doc, d.TitleMount, d.Title)
	}

	bar := nav.Build(d.Entries, location, nav.Options{Match: d.Match, Brand: d.Brand})
	res := Result{Mounted: nav.Mount(doc, d.MenuMount, bar.Nodes())}
	res.Active, res.HasActive = bar.Active()

	d.Metrics.ObserveRender(res.Mounted, res.HasActive)

	log := d.logger().WithField("location", nav.NormalizePath(location))
	switch {
	case !res.Mounted:
		log.WithField("mount", d.MenuMount).Debug("Menu mount not found, page left as is")
	case res.HasActive:
		log.WithField("active", res.Active.Href).Debug("Menu rendered")
	default:
		log.WithField("entries", len(d.Entries)).Debug("Menu rendered without active entry")
	}
	return res
}

// DecorateBytes parses src, decorates it for location and returns the new
// markup. name identifies the page in errors.
func (d *Decorator) DecorateBytes(name string, src []byte, location string) ([]byte, Result, error) {
	doc, err := Parse(bytes.NewReader(src))
	if err != nil {
		return nil, Result{}, perrors.PageParse(name, err)
	}
	res := d.Decorate(doc, location)

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, res, perrors.PageParse(name, err)
	}
	return buf.Bytes(), res, nil
}

func (d *Decorator) logger() *logrus.Entry {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.NewLogger("page")
}
