package nav

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Nodes builds a fresh element tree for the bar. Each call returns new
// nodes, so the same Bar can be mounted into several documents.
func (b Bar) Nodes() *html.Node {
	div := element(atom.Div, html.Attribute{Key: "class", Val: b.Class})

	if b.Brand.Logo != "" {
		attrs := []html.Attribute{
			{Key: "class", Val: DefaultLogoClass},
			{Key: "src", Val: b.Brand.Logo},
		}
		if b.Brand.Height > 0 {
			attrs = append(attrs, html.Attribute{Key: "height", Val: strconv.Itoa(b.Brand.Height)})
		}
		div.AppendChild(element(atom.Img, attrs...))
	}

	for _, l := range b.Links {
		a := element(atom.A, html.Attribute{Key: "href", Val: l.Href})
		a.AppendChild(&html.Node{Type: html.TextNode, Data: l.Label})
		div.AppendChild(a)
	}

	markActive(div, b)
	return div
}

// markActive tags the anchor of the active link, the same way a browser
// script would after the bar has been written.
func markActive(div *html.Node, b Bar) {
	active := -1
	for i, l := range b.Links {
		if l.Active {
			active = i
			break
		}
	}
	if active < 0 {
		return
	}
	i := 0
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.A {
			continue
		}
		if i == active {
			addClass(c, b.ActiveClass)
			return
		}
		i++
	}
}

// HTML returns the bar markup.
func (b Bar) HTML() string {
	var sb strings.Builder
	// Rendering into a strings.Builder cannot fail.
	_ = html.Render(&sb, b.Nodes())
	return sb.String()
}

// FindByID returns the first element with the given id, or nil.
func FindByID(doc *html.Node, id string) *html.Node {
	if doc == nil || id == "" {
		return nil
	}
	if doc.Type == html.ElementNode && attr(doc, "id") == id {
		return doc
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if n := FindByID(c, id); n != nil {
			return n
		}
	}
	return nil
}

// Mount replaces the content of the element with id mountID. It reports
// false, leaving doc untouched, when no such element exists.
func Mount(doc *html.Node, mountID string, content ...*html.Node) bool {
	mount := FindByID(doc, mountID)
	if mount == nil {
		return false
	}
	for mount.FirstChild != nil {
		mount.RemoveChild(mount.FirstChild)
	}
	for _, n := range content {
		mount.AppendChild(n)
	}
	return true
}

// Render writes the navigation bar for current into the element mountID of
// doc. A page without that element is left as is.
func Render(doc *html.Node, mountID string, entries List, current string, opts Options) {
	Mount(doc, mountID, Build(entries, current, opts).Nodes())
}

// TitleNodes builds the heading shown in the title region.
func TitleNodes(title string) *html.Node {
	h1 := element(atom.H1)
	h1.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	return h1
}

// RenderTitle writes the portal heading into the element mountID of doc,
// with the same no-op rule as Render.
func RenderTitle(doc *html.Node, mountID, title string) {
	Mount(doc, mountID, TitleNodes(title))
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func addClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}
