package extension

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// DefaultSection is the reserved section name. It never names an extension;
// its keys are fallbacks for every other section.
const DefaultSection = "DEFAULT"

// loadOptions keeps values verbatim: '#' and ';' inside a value and
// surrounding quotes are part of it. Only whole-line comments are skipped.
var loadOptions = ini.LoadOptions{
	InsensitiveKeys:         true,
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// Keys recognized inside an extension section.
const (
	KeyRepository = "repository"
	KeyBranch     = "branch"
)

// Extension is one configured extension.
type Extension struct {
	Name       string
	Repository string
	Branch     string
	// Keys holds every key of the section, DEFAULT fallbacks included.
	Keys map[string]string
}

// Config is the configured extension list in file order.
type Config struct {
	Path       string
	Extensions []Extension
}

// LoadConfig reads and parses an extensions config file.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return fromFile(path, f), nil
}

// ParseConfig parses config content held in memory.
func ParseConfig(data []byte) (*Config, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return fromFile("", f), nil
}

func fromFile(path string, f *ini.File) *Config {
	defaults := map[string]string{}
	if sec, err := f.GetSection(DefaultSection); err == nil {
		defaults = sec.KeysHash()
	}

	cfg := &Config{Path: path}
	for _, sec := range f.Sections() {
		if sec.Name() == DefaultSection {
			continue
		}

		keys := make(map[string]string, len(defaults))
		for k, v := range defaults {
			keys[k] = v
		}
		for k, v := range sec.KeysHash() {
			keys[k] = v
		}

		cfg.Extensions = append(cfg.Extensions, Extension{
			Name:       sec.Name(),
			Repository: keys[KeyRepository],
			Branch:     keys[KeyBranch],
			Keys:       keys,
		})
	}
	return cfg
}

// Lookup returns the extension with the given name.
func (c *Config) Lookup(name string) (*Extension, bool) {
	for i := range c.Extensions {
		if c.Extensions[i].Name == name {
			return &c.Extensions[i], true
		}
	}
	return nil, false
}

// Has reports whether name is a configured extension.
func (c *Config) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Names returns the configured extension names in file order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		names = append(names, ext.Name)
	}
	return names
}
