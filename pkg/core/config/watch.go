package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// ChangeFunc receives a reloaded configuration, or the error that kept the
// file from loading. The previous configuration stays in effect on error.
type ChangeFunc func(cfg *Config, err error)

// Watch reloads path whenever it is written, created or renamed into place
// and passes the result to onChange. It blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file are picked up too.
func Watch(ctx context.Context, path string, onChange ChangeFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return mdwerrors.ConfigInvalid(path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerrors.NewErrorBuilder(mdwerrors.ModuleConfig).
			Operation("Watch").
			Cause(err).
			Code(mdwerror.CodeInternal).
			Build()
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return mdwerrors.ConfigInvalid(path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := Load(abs)
			onChange(cfg, err)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onChange(nil, err)
		}
	}
}
