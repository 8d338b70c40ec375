// Package nav renders the portal's navigation bar and marks the entry that
// corresponds to the page being displayed.
//
// Rendering is split in two steps: Build turns a static entry list and the
// current location into a Bar value, and Mount attaches that value to an
// element of a parsed page. Render does both and silently does nothing when
// the page has no element with the requested id.
package nav

import (
	"path"
	"strings"
)

// Default markup classes, matching the portal stylesheet.
const (
	DefaultBarClass    = "menubar"
	DefaultActiveClass = "active"
	DefaultLogoClass   = "logo"
)

// Entry is a single labeled link of the navigation bar.
type Entry struct {
	Label string `yaml:"label" toml:"label" json:"label"`
	Href  string `yaml:"href" toml:"href" json:"href"`
}

// List is an ordered set of entries; order is display order.
type List []Entry

// MatchMode selects how an entry is matched against the current location.
type MatchMode string

const (
	// ExactMatch marks the first entry whose normalized href equals the
	// normalized location.
	ExactMatch MatchMode = "exact"
	// PrefixMatch marks the entry with the longest href that is a path
	// prefix of the location. "/" only ever matches itself.
	PrefixMatch MatchMode = "prefix"
)

// Valid reports whether m is a known mode. The empty mode means ExactMatch.
func (m MatchMode) Valid() bool {
	switch m {
	case "", ExactMatch, PrefixMatch:
		return true
	}
	return false
}

// NormalizePath reduces a location or href to a clean absolute path:
// query and fragment are dropped, duplicate and trailing slashes removed,
// and the empty path becomes "/".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// ActiveIndex returns the index of the entry matching current, or -1.
func (l List) ActiveIndex(current string, mode MatchMode) int {
	loc := NormalizePath(current)

	if mode == PrefixMatch {
		best, bestLen := -1, -1
		for i, e := range l {
			href := NormalizePath(e.Href)
			if !hasPathPrefix(loc, href) {
				continue
			}
			if len(href) > bestLen {
				best, bestLen = i, len(href)
			}
		}
		return best
	}

	for i, e := range l {
		if NormalizePath(e.Href) == loc {
			return i
		}
	}
	return -1
}

func hasPathPrefix(loc, prefix string) bool {
	if loc == prefix {
		return true
	}
	if prefix == "/" {
		return false
	}
	return strings.HasPrefix(loc, prefix+"/")
}

// Brand is the optional logo shown in front of the links.
type Brand struct {
	Logo   string `yaml:"logo" toml:"logo" json:"logo,omitempty"`
	Height int    `yaml:"height" toml:"height" json:"height,omitempty"`
}

// Options tune the generated markup.
type Options struct {
	Match       MatchMode
	Brand       Brand
	BarClass    string
	ActiveClass string
}

// Link is one rendered entry.
type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// Bar is a rendered navigation bar, ready to be mounted into a page.
type Bar struct {
	Class       string `json:"-"`
	ActiveClass string `json:"-"`
	Brand       Brand  `json:"brand"`
	Links       []Link `json:"links"`
}

// Build renders entries for the given location. At most one link is active.
func Build(entries List, current string, opts Options) Bar {
	bar := Bar{
		Class:       opts.BarClass,
		ActiveClass: opts.ActiveClass,
		Brand:       opts.Brand,
		Links:       make([]Link, 0, len(entries)),
	}
	if bar.Class == "" {
		bar.Class = DefaultBarClass
	}
	if bar.ActiveClass == "" {
		bar.ActiveClass = DefaultActiveClass
	}

	active := entries.ActiveIndex(current, opts.Match)
	for i, e := range entries {
		bar.Links = append(bar.Links, Link{
			Label:  e.Label,
			Href:   e.Href,
			Active: i == active,
		})
	}
	return bar
}

// Active returns the active link, if any.
func (b Bar) Active() (Link, bool) {
	for _, l := range b.Links {
		if l.Active {
			return l, true
		}
	}
	return Link{}, false
}
