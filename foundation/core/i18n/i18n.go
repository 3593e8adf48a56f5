// File: i18n.go
// Title: Core Internationalization Implementation
// Description: Implements the Manager that loads TOML and YAML catalogues
//              from the embedded set or a directory and translates keys with
//              template interpolation and default-locale fallback.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2025-07-26 v0.1.1: Fixed template cache collision issue in pluralization
// - 2026-10-19 v0.2.0: Catalogues read from fs.FS, locale-bound views

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
)

//go:embed locales/*.toml locales/*.yaml
var embedded embed.FS

// Format represents the language file format
type Format int

const (
	// FormatTOML represents TOML format
	FormatTOML Format = iota

	// FormatYAML represents YAML format
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// formatFor detects the format from a file extension.
func formatFor(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return 0, false
}

// Options defines configuration options for the i18n manager
type Options struct {
	DefaultLocale string // Default locale (e.g., "en")
	LocalesDir    string // Optional directory overriding the embedded catalogues
	Watch         bool   // Reload LocalesDir on change
}

// Manager manages catalogues for all locales. It is safe for concurrent use.
type Manager struct {
	mu            sync.RWMutex
	defaultLocale string
	localesDir    string
	translations  map[string]map[string]interface{} // locale -> translations
	templates     map[string]*template.Template     // locale:key -> compiled template
	handlers      []LocaleChangeHandler
	watcher       *dirWatcher
}

// LocaleChangeHandler is called after a locale was reloaded from disk
type LocaleChangeHandler func(locale string)

// New creates a manager with the embedded catalogues, overlaid by the files
// in options.LocalesDir when set.
func New(options Options) (*Manager, error) {
	if strings.TrimSpace(options.DefaultLocale) == "" {
		options.DefaultLocale = "en"
	}

	m := &Manager{
		defaultLocale: NormalizeLocale(options.DefaultLocale),
		localesDir:    options.LocalesDir,
		translations:  make(map[string]map[string]interface{}),
		templates:     make(map[string]*template.Template),
	}

	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, mdwerror.Wrap(err, "embedded catalogues unavailable").WithCode(mdwerror.CodeInternal).WithOperation("i18n.New")
	}
	if err := m.loadFS(sub); err != nil {
		return nil, err
	}

	if options.LocalesDir != "" {
		if _, err := os.Stat(options.LocalesDir); err != nil {
			return nil, mdwerror.New("locales directory not found").WithCode(mdwerror.CodeNotFound).WithOperation("i18n.New").WithDetail("directory", options.LocalesDir)
		}
		if err := m.loadFS(os.DirFS(options.LocalesDir)); err != nil {
			return nil, err
		}
	}

	if _, ok := m.translations[m.defaultLocale]; !ok {
		return nil, mdwerror.New("default locale not found").WithCode(mdwerror.CodeNotFound).WithOperation("i18n.New").WithDetail("locale", m.defaultLocale)
	}

	if options.Watch && options.LocalesDir != "" {
		if err := m.startWatching(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// loadFS loads every catalogue file at the root of fsys.
func (m *Manager) loadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return mdwerror.Wrap(err, "failed to read catalogues").WithCode(mdwerror.CodeConfigError).WithOperation("i18n.loadFS")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := m.loadFile(fsys, entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

// loadFile parses one catalogue and merges it over what is already loaded
// for its locale.
func (m *Manager) loadFile(fsys fs.FS, name string) error {
	format, ok := formatFor(name)
	if !ok {
		return nil
	}
	locale := ParseLocaleFromFilename(name)
	if locale == "" {
		return nil
	}

	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return mdwerror.Wrap(err, "failed to read catalogue").WithCode(mdwerror.CodeConfigError).WithOperation("i18n.loadFile").WithDetail("file", name)
	}

	data := make(map[string]interface{})
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(content, &data)
	case FormatYAML:
		err = yaml.Unmarshal(content, &data)
	}
	if err != nil {
		return mdwerror.Wrap(err, "failed to parse catalogue").WithCode(mdwerror.CodeInvalidFormat).WithOperation("i18n.loadFile").WithDetail("file", name).WithDetail("format", format.String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.translations[locale]
	if existing == nil {
		existing = make(map[string]interface{})
	}
	merge(existing, data)
	m.translations[locale] = existing
	m.clearTemplatesLocked(locale)
	return nil
}

// merge copies src into dst, descending into nested tables.
func merge(dst, src map[string]interface{}) {
	for k, v := range src {
		if sv, ok := v.(map[string]interface{}); ok {
			if dv, ok := dst[k].(map[string]interface{}); ok {
				merge(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}

// T translates key in the default locale.
func (m *Manager) T(key string, data ...map[string]interface{}) string {
	return m.Translate(m.defaultLocale, key, data...)
}

// Translate translates key in locale, falling back to the default locale
// and then to "[key]".
func (m *Manager) Translate(locale, key string, data ...map[string]interface{}) string {
	s, err := m.TryTranslate(locale, key, data...)
	if err != nil && s == "" {
		return fmt.Sprintf("[%s]", key)
	}
	return s
}

// TryTranslate translates key and reports a missing key or a template error.
// On a template error the raw catalogue text is returned with the error.
func (m *Manager) TryTranslate(locale, key string, data ...map[string]interface{}) (string, error) {
	locale = NormalizeLocale(locale)

	m.mu.RLock()
	text, found := m.lookup(locale, key)
	m.mu.RUnlock()
	if !found {
		return "", mdwerror.New("translation not found").WithCode(mdwerror.CodeNotFound).WithOperation("i18n.TryTranslate").WithDetail("key", key).WithDetail("locale", locale)
	}

	if len(data) == 0 || data[0] == nil || !strings.Contains(text, "{{") {
		return text, nil
	}
	rendered, err := m.render(locale, key, text, data[0])
	if err != nil {
		return text, mdwerror.Wrap(err, "template rendering failed").WithCode(mdwerror.CodeInvalidFormat).WithOperation("i18n.render").WithDetail("key", key)
	}
	return rendered, nil
}

// lookup resolves key in locale, then in the base language, then in the
// default locale. Callers hold m.mu.
func (m *Manager) lookup(locale, key string) (string, bool) {
	candidates := []string{locale}
	if lang, _ := SplitLocale(locale); lang != locale {
		candidates = append(candidates, lang)
	}
	candidates = append(candidates, m.defaultLocale)

	for _, loc := range candidates {
		if translations, ok := m.translations[loc]; ok {
			if value, ok := nestedValue(translations, key); ok {
				return value, true
			}
		}
	}
	return "", false
}

// nestedValue retrieves a string value using dot notation.
func nestedValue(data map[string]interface{}, key string) (string, bool) {
	parts := strings.Split(key, ".")
	current := data
	for i, k := range parts {
		value, ok := current[k]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			if _, isTable := value.(map[string]interface{}); isTable {
				return "", false
			}
			return fmt.Sprintf("%v", value), true
		}
		next, ok := value.(map[string]interface{})
		if !ok {
			return "", false
		}
		current = next
	}
	return "", false
}

// render executes the cached template for locale and key.
func (m *Manager) render(locale, key, text string, data map[string]interface{}) (string, error) {
	cacheKey := locale + ":" + key

	m.mu.RLock()
	tmpl, ok := m.templates[cacheKey]
	m.mu.RUnlock()

	if !ok {
		parsed, err := template.New(cacheKey).Option("missingkey=zero").Parse(text)
		if err != nil {
			return "", err
		}
		tmpl = parsed
		m.mu.Lock()
		m.templates[cacheKey] = tmpl
		m.mu.Unlock()
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (m *Manager) clearTemplatesLocked(locale string) {
	prefix := locale + ":"
	for k := range m.templates {
		if strings.HasPrefix(k, prefix) {
			delete(m.templates, k)
		}
	}
}

// HasTranslation reports whether key resolves in locale or its fallbacks.
func (m *Manager) HasTranslation(locale, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lookup(NormalizeLocale(locale), key)
	return ok
}

// DefaultLocale returns the fallback locale.
func (m *Manager) DefaultLocale() string {
	return m.defaultLocale
}

// AvailableLocales returns the loaded locales, sorted.
func (m *Manager) AvailableLocales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	locales := make([]string, 0, len(m.translations))
	for locale := range m.translations {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// Keys returns all leaf keys of locale in dot notation, sorted.
func (m *Manager) Keys(locale string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	collectKeys(m.translations[NormalizeLocale(locale)], "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(data map[string]interface{}, prefix string, keys *[]string) {
	for k, v := range data {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			collectKeys(nested, full, keys)
			continue
		}
		*keys = append(*keys, full)
	}
}

// OnLocaleChange registers a handler called after a watched reload.
func (m *Manager) OnLocaleChange(handler LocaleChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// ForLocale returns a Translator bound to locale.
func (m *Manager) ForLocale(locale string) Translator {
	return Translator{manager: m, locale: NormalizeLocale(locale)}
}

// Translator is a Manager view fixed to one locale.
type Translator struct {
	manager *Manager
	locale  string
}

// Locale returns the bound locale.
func (t Translator) Locale() string {
	return t.locale
}

// T translates key in the bound locale.
func (t Translator) T(key string, data ...map[string]interface{}) string {
	return t.manager.Translate(t.locale, key, data...)
}

// String returns a string representation of the manager
func (m *Manager) String() string {
	return fmt.Sprintf("i18n.Manager{default: %s, locales: %v}", m.defaultLocale, m.AvailableLocales())
}
