// File: watch.go
// Title: Locale File Watching Implementation
// Description: Reloads catalogues from the override directory when files are
//              written or created, using fsnotify instead of polling.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of locale file watching
// - 2026-10-19 v0.2.0: Polling replaced by fsnotify

package i18n

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
)

type dirWatcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// startWatching starts monitoring the override directory.
func (m *Manager) startWatching() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create watcher").WithCode(mdwerror.CodeInternal).WithOperation("i18n.startWatching")
	}
	if err := fsw.Add(m.localesDir); err != nil {
		fsw.Close()
		return mdwerror.Wrap(err, "failed to watch locales directory").WithCode(mdwerror.CodeConfigError).WithOperation("i18n.startWatching").WithDetail("directory", m.localesDir)
	}

	w := &dirWatcher{fsw: fsw, done: make(chan struct{})}
	m.watcher = w
	go m.watchLoop(w)
	return nil
}

func (m *Manager) watchLoop(w *dirWatcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if _, ok := formatFor(name); !ok {
				continue
			}
			// A half-written file fails to parse; the next write event retries.
			if err := m.loadFile(os.DirFS(m.localesDir), name); err != nil {
				continue
			}
			m.notify(ParseLocaleFromFilename(name))
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (m *Manager) notify(locale string) {
	m.mu.RLock()
	handlers := append([]LocaleChangeHandler(nil), m.handlers...)
	m.mu.RUnlock()
	for _, h := range handlers {
		h(locale)
	}
}

// StopWatching stops the directory watcher. It is safe to call repeatedly.
func (m *Manager) StopWatching() {
	if m.watcher == nil {
		return
	}
	m.watcher.once.Do(func() {
		close(m.watcher.done)
		m.watcher.fsw.Close()
	})
}

// IsWatching reports whether a directory watcher was started.
func (m *Manager) IsWatching() bool {
	return m.watcher != nil
}

// ReloadAll reloads the embedded catalogues and the override directory.
func (m *Manager) ReloadAll() error {
	m.mu.Lock()
	m.translations = make(map[string]map[string]interface{})
	m.templates = make(map[string]*template.Template)
	m.mu.Unlock()

	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return mdwerror.Wrap(err, "embedded catalogues unavailable").WithCode(mdwerror.CodeInternal).WithOperation("i18n.ReloadAll")
	}
	if err := m.loadFS(sub); err != nil {
		return err
	}
	if m.localesDir != "" {
		return m.loadFS(os.DirFS(m.localesDir))
	}
	return nil
}
