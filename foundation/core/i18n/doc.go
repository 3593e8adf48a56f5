// File: doc.go
// Title: Internationalization Package Documentation
// Description: Package i18n provides the message catalogues used by the
//              calculator front ends: embedded TOML and YAML language files,
//              template interpolation, locale negotiation and hot reload of
//              an override directory.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-19 v0.2.0: Embedded catalogues, x/text locale matching, fsnotify watch

/*
Package i18n maps message keys to localized text.

Catalogues are nested tables addressed with dot notation, for example
"error.division_by_zero" or "step.simplify". English and German catalogues
are embedded in the binary; a directory of *.toml, *.yaml or *.yml files may
replace or extend them, and can be watched for changes.

Basic usage:

	m, err := i18n.New(i18n.Options{DefaultLocale: "en"})
	if err != nil {
		return err
	}
	msg := m.T("error.insufficient_inputs", map[string]interface{}{"Min": 2})

	de := m.ForLocale(m.DetectLocale("de-CH,de;q=0.9,en;q=0.5"))
	fmt.Println(de.T("step.scale"))

Values are rendered with text/template when data is passed. Missing keys
fall back to the default locale and finally to the key in brackets.
*/
package i18n
