package config

import (
	"github.com/fsnotify/fsnotify"
)

// Watch is an advisory-only watcher: the running config is immutable
// after Load (spec.md §5's invariant), so a change on disk is never
// reloaded. It only logs a warning, via the supplied callback, so an
// operator watching the log knows a restart is needed to pick it up. The
// caller owns the returned watcher and must Close it on shutdown.
func Watch(path string, onChange func(event string)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
					onChange(ev.String())
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}
