package config

import (
	"fmt"
	"strings"

	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/nav"
)

// Validate checks the configuration and reports every problem found in a
// single CONFIG_INVALID error.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Site.MenuMount) == "" {
		add("site.menu_mount must not be empty")
	}
	if strings.TrimSpace(c.Site.TitleMount) == "" {
		add("site.title_mount must not be empty")
	}
	if c.Site.Output == "" {
		add("site.output must not be empty")
	}

	routes := make(map[string]string)
	for i, p := range c.Site.Pages {
		switch {
		case !strings.HasPrefix(p.Route, "/"):
			add("site.pages[%d]: route %q must start with /", i, p.Route)
		case p.File == "":
			add("site.pages[%d]: file must not be empty", i)
		}
		route := nav.NormalizePath(p.Route)
		if prev, dup := routes[route]; dup {
			add("site.pages[%d]: route %s already served by %s", i, route, prev)
		}
		routes[route] = p.File
	}

	if len(c.Variants) == 0 {
		add("at least one variant is required")
	} else if _, ok := c.Variants[c.DefaultVariant]; !ok {
		add("default_variant %q is not defined (have: %s)", c.DefaultVariant, strings.Join(c.VariantNames(), ", "))
	}

	for _, name := range c.VariantNames() {
		problems = append(problems, validateVariant(name, c.Variants[name])...)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port %d out of range", c.Server.Port)
	}

	if len(problems) > 0 {
		return perrors.ConfigInvalid(strings.Join(problems, "; ")).WithDetail("problems", problems)
	}
	return nil
}

// validateVariant enforces that an entry list can mark at most one entry
// for any location: hrefs are paths and unique after normalization.
func validateVariant(name string, v Variant) []string {
	var problems []string

	if !v.Match.Valid() {
		problems = append(problems, fmt.Sprintf("variants.%s: unknown match mode %q", name, v.Match))
	}
	if v.Brand.Height < 0 {
		problems = append(problems, fmt.Sprintf("variants.%s: brand height must not be negative", name))
	}

	seen := make(map[string]int)
	for i, e := range v.Entries {
		if strings.TrimSpace(e.Label) == "" {
			problems = append(problems, fmt.Sprintf("variants.%s.entries[%d]: label must not be empty", name, i))
		}
		if !strings.HasPrefix(e.Href, "/") {
			problems = append(problems, fmt.Sprintf("variants.%s.entries[%d]: href %q must be an absolute path", name, i, e.Href))
			continue
		}
		href := nav.NormalizePath(e.Href)
		if j, dup := seen[href]; dup {
			problems = append(problems, fmt.Sprintf("variants.%s.entries[%d]: href %s duplicates entries[%d]", name, i, href, j))
			continue
		}
		seen[href] = i
	}
	return problems
}
