package template

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch drops the compiled template cache whenever a file under the template
// directory changes. It is a no-op for embedded templates.
func (r *Renderer) Watch() error {
	if r.dir == "" {
		return nil
	}
	if r.watcher != nil {
		return errors.New("template watcher already running")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = filepath.WalkDir(r.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return err
	}
	r.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".html") {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					r.set.CleanCache()
					r.log.Debug("template changed, cache cleared", zap.String("file", ev.Name))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.log.Warn("template watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
