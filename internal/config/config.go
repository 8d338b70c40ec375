package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	perrors "github.com/owif/web-portal/internal/errors"
	"github.com/owif/web-portal/internal/logging"
	"github.com/owif/web-portal/internal/nav"
)

// Environment overrides
const (
	EnvVariant = "OWIF_PORTAL_VARIANT"
	EnvOutput  = "OWIF_PORTAL_OUT"
	EnvSource  = "OWIF_PORTAL_SRC"
	EnvAddr    = "OWIF_PORTAL_ADDR"
)

// Config represents the application configuration
type Config struct {
	Site           SiteConfig         `yaml:"site" toml:"site"`
	Server         ServerConfig       `yaml:"server" toml:"server"`
	DefaultVariant string             `yaml:"default_variant" toml:"default_variant"`
	Variants       map[string]Variant `yaml:"variants" toml:"variants"`
	Logging        logging.Config     `yaml:"logging" toml:"logging"`

	// ConfigPath is the path to the config file (not serialized)
	ConfigPath string `yaml:"-" toml:"-"`
}

// SiteConfig describes the page set and where it is built
type SiteConfig struct {
	Title      string `yaml:"title" toml:"title"`
	TitleMount string `yaml:"title_mount" toml:"title_mount"`
	MenuMount  string `yaml:"menu_mount" toml:"menu_mount"`

	// Source is the directory holding the pages; empty means the embedded defaults.
	Source string       `yaml:"source,omitempty" toml:"source,omitempty"`
	Output string       `yaml:"output" toml:"output"`
	Pages  []PageConfig `yaml:"pages" toml:"pages"`

	// History is the number of build records kept by the preview server.
	History int `yaml:"history" toml:"history"`
}

// PageConfig maps a route to the page file served for it
type PageConfig struct {
	Route string `yaml:"route" toml:"route"`
	File  string `yaml:"file" toml:"file"`
}

// ServerConfig represents the preview server configuration
type ServerConfig struct {
	Port       int    `yaml:"port" toml:"port"`
	Host       string `yaml:"host" toml:"host"`
	DebounceMs int    `yaml:"debounce_ms" toml:"debounce_ms"`
}

// Variant is one build flavour of the portal's navigation
type Variant struct {
	Title   string        `yaml:"title,omitempty" toml:"title,omitempty" json:"title,omitempty"`
	Match   nav.MatchMode `yaml:"match,omitempty" toml:"match,omitempty" json:"match,omitempty"`
	Brand   nav.Brand     `yaml:"brand,omitempty" toml:"brand,omitempty" json:"brand"`
	Entries nav.List      `yaml:"entries" toml:"entries" json:"entries"`
}

// Options returns the renderer options for the variant.
func (v Variant) Options() nav.Options {
	return nav.Options{Match: v.Match, Brand: v.Brand}
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Title:      "1-Wire Interface",
			TitleMount: "title",
			MenuMount:  "menu",
			Output:     "data",
			Pages: []PageConfig{
				{Route: "/", File: "index.html"},
				{Route: "/config", File: "config.html"},
				{Route: "/ota", File: "ota.html"},
				{Route: "/console", File: "console.html"},
				{Route: "/login", File: "login.html"},
			},
			History: 50,
		},
		Server: ServerConfig{
			Port:       8080,
			Host:       "0.0.0.0",
			DebounceMs: 200,
		},
		DefaultVariant: "firmware",
		Variants:       defaultVariants(),
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Buffer: 200,
		},
	}
}

func defaultVariants() map[string]Variant {
	return map[string]Variant{
		"data": {
			Match: nav.ExactMatch,
			Entries: nav.List{
				{Label: "Dashboard", Href: "/"},
				{Label: "Configuration", Href: "/config"},
				{Label: "OTA Update", Href: "/ota"},
				{Label: "Console", Href: "/console"},
				{Label: "Logout", Href: "/logout"},
			},
		},
		"firmware": {
			Match: nav.ExactMatch,
			Brand: nav.Brand{Logo: "img/logo-emblem.svg", Height: 50},
			Entries: nav.List{
				{Label: "Dashboard", Href: "/"},
				{Label: "Configuration", Href: "/config"},
				{Label: "Console", Href: "/console"},
				{Label: "OTA", Href: "/ota"},
				{Label: "Logout", Href: "/logout"},
			},
		},
	}
}

// SearchPaths are tried in order when no config file is given
var SearchPaths = []string{
	"owif-portal.yaml",
	"owif-portal.yml",
	"owif-portal.toml",
	"configs/owif-portal.yaml",
}

// Load loads configuration from path, or from the first existing file in
// SearchPaths when path is empty. Variants declared in the file replace the
// default variants as a whole.
func Load(path string) (*Config, error) {
	candidates := SearchPaths
	if path != "" {
		candidates = []string{path}
	}

	var data []byte
	var err error
	var loadedPath string

	for _, p := range candidates {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if loadedPath == "" {
		return nil, perrors.ConfigNotFound(candidates...)
	}

	cfg := Default()
	cfg.Variants = nil
	if err := decode(loadedPath, data, cfg); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeConfigInvalid, fmt.Sprintf("failed to parse %s", loadedPath)).
			WithDetail("path", loadedPath)
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = defaultVariants()
	}

	cfg.ConfigPath = loadedPath
	return cfg, nil
}

// LoadEnv reads a .env file if present. A missing file is not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ApplyEnv applies environment overrides to the configuration
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvVariant); v != "" {
		c.DefaultVariant = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Site.Output = v
	}
	if v := os.Getenv(EnvSource); v != "" {
		c.Site.Source = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		if err := c.Server.SetAddr(v); err != nil {
			return perrors.ConfigInvalid(fmt.Sprintf("%s: %v", EnvAddr, err))
		}
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return perrors.WriteFailed(path, err)
	}
	return nil
}

// Variant returns the named variant; the empty name selects the default.
func (c *Config) Variant(name string) (Variant, string, error) {
	if name == "" {
		name = c.DefaultVariant
	}
	v, ok := c.Variants[name]
	if !ok {
		return Variant{}, name, perrors.VariantNotFound(name).WithDetail("available", c.VariantNames())
	}
	return v, name, nil
}

// VariantNames returns the configured variant names, sorted
func (c *Config) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for name := range c.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Title returns the heading for a variant, falling back to the site title.
func (c *Config) Title(v Variant) string {
	if v.Title != "" {
		return v.Title
	}
	return c.Site.Title
}

// Addr returns the preview server listen address
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SetAddr parses a host:port pair into the server config.
func (s *ServerConfig) SetAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", portStr)
	}
	s.Host = host
	s.Port = port
	return nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
