// Package i18n renders localized messages for domain error codes.
//
// Catalogs are YAML files embedded under locales/, one per locale, mapping
// an error code to a text/template string that may reference error
// metadata. Locale negotiation uses BCP 47 matching, so "pt" or "pt-BR"
// resolves to the pt-BR catalog and anything unknown falls back to en-US.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the fallback locale; its catalog must define every code.
const BaseLocale = "en-US"

// Code is a machine-readable error code (a string here to avoid an import
// cycle with the errors package).
type Code = string

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embedded embed.FS

var (
	catalogsMu sync.RWMutex
	catalogs   map[string]*Catalog
	matcher    language.Matcher
	tags       []language.Tag
)

func init() {
	loaded, err := LoadFromFS(embedded)
	if err != nil {
		panic(fmt.Sprintf("load embedded error catalogs: %v", err))
	}
	setCatalogs(loaded)
}

// LoadFromFS parses every locales/*.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (map[string]*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	sort.Strings(paths)

	out := make(map[string]*Catalog, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		locale := strings.TrimSpace(file.Locale)
		if want := strings.TrimSuffix(path.Base(p), ".yaml"); locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name", p, locale)
		}
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
		for code, tmpl := range file.Messages {
			if _, err := template.New(code).Parse(tmpl); err != nil {
				return nil, fmt.Errorf("catalog %s: code %s: %w", p, code, err)
			}
		}
		out[locale] = NewCatalog(locale, file.Messages)
	}
	if _, ok := out[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}
	return out, nil
}

func setCatalogs(loaded map[string]*Catalog) {
	locales := make([]string, 0, len(loaded))
	for locale := range loaded {
		if locale != BaseLocale {
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales)
	// The base locale goes first so the matcher falls back to it.
	ordered := append([]string{BaseLocale}, locales...)
	parsed := make([]language.Tag, 0, len(ordered))
	for _, locale := range ordered {
		parsed = append(parsed, language.MustParse(locale))
	}

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs = loaded
	tags = parsed
	matcher = language.NewMatcher(parsed)
}

// Locales lists the available locales, base locale first.
func Locales() []string {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// GetCatalog returns the best catalog for an Accept-Language style locale
// string. Unknown or malformed locales fall back to BaseLocale.
func GetCatalog(locale string) *Catalog {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()

	requested := strings.TrimSpace(locale)
	if requested == "" {
		return catalogs[BaseLocale]
	}
	if c, ok := catalogs[requested]; ok {
		return c
	}
	desired, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(desired) == 0 {
		return catalogs[BaseLocale]
	}
	_, index, confidence := matcher.Match(desired...)
	if confidence == language.No {
		return catalogs[BaseLocale]
	}
	if c, ok := catalogs[tags[index].String()]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. A missing template
// renders as the code itself; a failing template renders as its raw text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		if base := baseMessage(c, code); base != "" {
			tmpl = base
		} else {
			return code
		}
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// baseMessage is the en-US template for code when c lacks one.
func baseMessage(c *Catalog, code Code) string {
	if c.locale == BaseLocale {
		return ""
	}
	catalogsMu.RLock()
	base := catalogs[BaseLocale]
	catalogsMu.RUnlock()
	if base == nil {
		return ""
	}
	return base.messages[code]
}

// NewCatalog creates a catalog with a private copy of messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{locale: locale, messages: cloned}
}
