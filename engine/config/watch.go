package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a settings file until closed.
type Watcher interface {
	// Close stops watching and waits for the event loop to exit.
	Close() error
}

type watcher struct {
	path     string
	fs       *fsnotify.Watcher
	onChange func(Config)
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// Watch reloads path whenever it is written or replaced and passes each valid result to
// onChange. Files that fail to parse are logged and skipped, so the last good settings stay
// in effect. The parent directory is watched so editors that save by rename still trigger.
//
// Parameters:
//   - path: the settings file
//   - onChange: receives every successfully reloaded config, called from the watch goroutine
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the watch cannot be established
func Watch(path string, onChange func(Config)) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch config %s: %w", path, err)
	}

	w := &watcher{
		path:     abs,
		fs:       fw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				log.Printf("[Config] reload skipped: %v", err)
				continue
			}
			log.Printf("[Config] reloaded %s", w.path)
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[Config] watch error: %v", err)
		}
	}
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
