// File: locale.go
// Title: Locale Detection and Management Implementation
// Description: Implements locale negotiation from Accept-Language headers
//              with golang.org/x/text/language matching, locale
//              normalization and display names.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of locale detection
// - 2026-10-19 v0.2.0: Quality parsing and matching moved to x/text/language

package i18n

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
)

// DetectLocale returns the available locale that best serves an
// Accept-Language header or a plain locale name. The default locale is
// returned when nothing matches.
func (m *Manager) DetectLocale(acceptLanguage string) string {
	available := m.AvailableLocales()
	tags := make([]language.Tag, 0, len(available))
	tags = append(tags, language.Make(m.defaultLocale))
	names := []string{m.defaultLocale}
	for _, locale := range available {
		if locale == m.defaultLocale {
			continue
		}
		tags = append(tags, language.Make(locale))
		names = append(names, locale)
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return m.defaultLocale
	}

	_, index, confidence := language.NewMatcher(tags).Match(prefs...)
	if confidence == language.No {
		return m.defaultLocale
	}
	return names[index]
}

// NormalizeLocale normalizes a locale string to "ll" or "ll-CC".
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	locale = strings.ReplaceAll(strings.ToLower(locale), "_", "-")

	parts := strings.Split(locale, "-")
	lang := parts[0]
	if len(lang) != 2 && len(lang) != 3 {
		return ""
	}
	if len(parts) > 1 && len(parts[1]) == 2 {
		return lang + "-" + strings.ToUpper(parts[1])
	}
	return lang
}

// ValidateLocale validates if a locale string is in valid format
func ValidateLocale(locale string) error {
	if strings.TrimSpace(locale) == "" {
		return mdwerror.New("locale cannot be empty").WithCode(mdwerror.CodeValidationFailed).WithOperation("i18n.ValidateLocale")
	}
	if NormalizeLocale(locale) == "" {
		return mdwerror.New("invalid locale format").WithCode(mdwerror.CodeValidationFailed).WithOperation("i18n.ValidateLocale").WithDetail("locale", locale).WithDetail("expected_format", "e.g., 'en', 'en-US'")
	}
	if _, err := language.Parse(locale); err != nil {
		return mdwerror.Wrap(err, "unknown locale").WithCode(mdwerror.CodeValidationFailed).WithOperation("i18n.ValidateLocale").WithDetail("locale", locale)
	}
	return nil
}

// SplitLocale splits a locale into language and country parts
func SplitLocale(locale string) (lang, country string) {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return "", ""
	}
	parts := strings.SplitN(normalized, "-", 2)
	lang = parts[0]
	if len(parts) > 1 {
		country = parts[1]
	}
	return lang, country
}

// DisplayName returns the name of a locale in its own language, for example
// "Deutsch" for "de".
func DisplayName(locale string) string {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return locale
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return normalized
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return normalized
}

// ParseLocaleFromFilename extracts locale from a filename such as "de_CH.yaml"
func ParseLocaleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return NormalizeLocale(strings.ReplaceAll(name, "_", "-"))
}
