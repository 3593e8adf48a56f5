// File: i18n_test.go
// Title: Internationalization Tests
// Description: Tests catalogue loading, interpolation, fallback, locale
//              negotiation and directory overrides.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial test implementation
// - 2026-10-19 v0.2.0: Tests for embedded catalogues and x/text matching

package i18n

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Options{DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestNewLoadsEmbeddedCatalogues(t *testing.T) {
	m := newTestManager(t)

	locales := m.AvailableLocales()
	if len(locales) != 2 || locales[0] != "de" || locales[1] != "en" {
		t.Errorf("AvailableLocales() = %v, want [de en]", locales)
	}
	if m.DefaultLocale() != "en" {
		t.Errorf("DefaultLocale() = %q, want en", m.DefaultLocale())
	}

	// Every English key exists in German too.
	de := map[string]bool{}
	for _, k := range m.Keys("de") {
		de[k] = true
	}
	for _, k := range m.Keys("en") {
		if !de[k] {
			t.Errorf("key %q missing from German catalogue", k)
		}
	}
}

func TestTranslate(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name   string
		locale string
		key    string
		data   map[string]interface{}
		want   string
	}{
		{"plain", "en", "error.division_by_zero", nil, "Division by zero is not defined."},
		{"german", "de", "step.simplify", nil, "Vollständig kürzen"},
		{"template", "en", "error.insufficient_inputs", map[string]interface{}{"Min": 2}, "At least 2 fractions are needed."},
		{"german template", "de", "error.parse", map[string]interface{}{"Input": "1/x", "Reason": "kein Nenner"}, "1/x kann nicht gelesen werden: kein Nenner"},
		{"region falls back to language", "de-AT", "label.lcd", nil, "Kleinster gemeinsamer Nenner"},
		{"unknown locale falls back to default", "fr", "label.result", nil, "Result"},
		{"missing key", "en", "error.nope", nil, "[error.nope]"},
		{"table is not a leaf", "en", "error", nil, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.data != nil {
				got = m.Translate(tt.locale, tt.key, tt.data)
			} else {
				got = m.Translate(tt.locale, tt.key)
			}
			if got != tt.want {
				t.Errorf("Translate(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestTryTranslateMissing(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.TryTranslate("en", "missing.key"); err == nil {
		t.Error("TryTranslate() expected error for missing key")
	}
	if !m.HasTranslation("de", "step.scale") {
		t.Error("HasTranslation(de, step.scale) = false")
	}
}

func TestDetectLocale(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		header string
		want   string
	}{
		{"de-CH,de;q=0.9,en;q=0.5", "de"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR,fr;q=0.9", "en"},
		{"fr;q=0.9,de;q=0.8", "de"},
		{"", "en"},
		{"de", "de"},
		{"not a header;;", "en"},
	}
	for _, tt := range tests {
		if got := m.DetectLocale(tt.header); got != tt.want {
			t.Errorf("DetectLocale(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestLocaleHelpers(t *testing.T) {
	if got := NormalizeLocale("de_ch"); got != "de-CH" {
		t.Errorf("NormalizeLocale(de_ch) = %q, want de-CH", got)
	}
	if got := NormalizeLocale("x"); got != "" {
		t.Errorf("NormalizeLocale(x) = %q, want empty", got)
	}
	if lang, country := SplitLocale("en-gb"); lang != "en" || country != "GB" {
		t.Errorf("SplitLocale(en-gb) = %q, %q", lang, country)
	}
	if err := ValidateLocale(""); err == nil {
		t.Error("ValidateLocale(\"\") expected error")
	}
	if err := ValidateLocale("de-DE"); err != nil {
		t.Errorf("ValidateLocale(de-DE) error = %v", err)
	}
	if got := DisplayName("de"); got != "Deutsch" {
		t.Errorf("DisplayName(de) = %q, want Deutsch", got)
	}
	if got := ParseLocaleFromFilename("locales/pt_BR.yaml"); got != "pt-BR" {
		t.Errorf("ParseLocaleFromFilename() = %q, want pt-BR", got)
	}
}

func TestForLocale(t *testing.T) {
	m := newTestManager(t)
	de := m.ForLocale("DE")
	if de.Locale() != "de" {
		t.Errorf("Locale() = %q, want de", de.Locale())
	}
	if got := de.T("label.decimal"); got != "Dezimalzahl" {
		t.Errorf("T(label.decimal) = %q, want Dezimalzahl", got)
	}
}

func TestDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "en.toml"), "[label]\nresult = \"Answer\"\n")
	write(t, filepath.Join(dir, "fr.yml"), "label:\n  result: \"Résultat\"\n")

	m, err := New(Options{DefaultLocale: "en", LocalesDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := m.T("label.result"); got != "Answer" {
		t.Errorf("overridden label.result = %q, want Answer", got)
	}
	if got := m.T("label.decimal"); got != "Decimal" {
		t.Errorf("embedded label.decimal = %q, want Decimal", got)
	}
	if got := m.Translate("fr", "label.result"); got != "Résultat" {
		t.Errorf("fr label.result = %q, want Résultat", got)
	}

	if _, err := New(Options{LocalesDir: filepath.Join(dir, "missing")}); err == nil {
		t.Error("New() expected error for missing directory")
	}
}

func TestInvalidCatalogue(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "en.toml"), "[label\nbroken")
	if _, err := New(Options{LocalesDir: dir}); err == nil {
		t.Error("New() expected error for malformed TOML")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.toml")
	write(t, path, "[label]\nresult = \"One\"\n")

	m, err := New(Options{DefaultLocale: "en", LocalesDir: dir, Watch: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.StopWatching()
	if !m.IsWatching() {
		t.Fatal("IsWatching() = false")
	}

	changed := make(chan string, 4)
	m.OnLocaleChange(func(locale string) { changed <- locale })

	write(t, path, "[label]\nresult = \"Two\"\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case locale := <-changed:
			if locale == "en" && m.T("label.result") == "Two" {
				return
			}
		case <-deadline:
			t.Fatalf("label.result = %q after reload, want Two", m.T("label.result"))
		}
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
