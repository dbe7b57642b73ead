// Package i18n provides the display text catalogs.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// DefaultLanguage is used when detection finds nothing supported.
const DefaultLanguage = "en"

// ErrUnknownLanguage is returned by Load for languages without a catalog.
var ErrUnknownLanguage = errors.New("i18n: unknown language")

// Catalog maps text keys to one language's strings.
// Missing keys fall back to English, then to the key itself.
type Catalog struct {
	lang     string
	text     map[string]string
	fallback map[string]string
}

var (
	cacheMu sync.Mutex
	cache   = make(map[string]map[string]string)
)

func readCatalog(lang string) (map[string]string, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if m, ok := cache[lang]; ok {
		return m, nil
	}
	data, err := catalogFS.ReadFile("catalogs/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	m := make(map[string]string)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("i18n: parse %s catalog: %w", lang, err)
	}
	cache[lang] = m
	return m, nil
}

// Load returns the catalog for lang ("en", "ja", "zh").
func Load(lang string) (*Catalog, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	text, err := readCatalog(lang)
	if err != nil {
		return nil, err
	}
	fallback, err := readCatalog(DefaultLanguage)
	if err != nil {
		return nil, err
	}
	return &Catalog{lang: lang, text: text, fallback: fallback}, nil
}

// Languages lists the available catalogs.
func Languages() []string {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return []string{DefaultLanguage}
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(langs)
	return langs
}

// Detect picks a language from the locale environment
// (LC_ALL, LC_MESSAGES, LANG in that order).
func Detect(getenv func(string) string) string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := strings.ToLower(getenv(name))
		if v == "" || v == "c" || v == "posix" {
			continue
		}
		switch {
		case strings.HasPrefix(v, "ja"):
			return "ja"
		case strings.HasPrefix(v, "zh"):
			return "zh"
		default:
			return DefaultLanguage
		}
	}
	return DefaultLanguage
}

// Lang returns the catalog's language code.
func (c *Catalog) Lang() string {
	return c.lang
}

// Text returns the string for key.
func (c *Catalog) Text(key string) string {
	if c == nil {
		return key
	}
	if s, ok := c.text[key]; ok {
		return s
	}
	if s, ok := c.fallback[key]; ok {
		return s
	}
	return key
}
