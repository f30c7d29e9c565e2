package catalog

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads taxonomy files as they change on disk. It blocks until the
// context is cancelled. A file that fails to parse is logged and the
// previous in-memory version is kept, so a bad edit never empties a
// dimension mid-run.
func (c *Catalog) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			name := filepath.Base(event.Name)
			if !isYAML(name) {
				continue
			}
			dim := dimensionForFile(name)
			if !dim.Valid() {
				continue
			}

			entities, err := loadFile(event.Name, dim)
			if err != nil {
				log.Printf("[catalog] reload %s failed, keeping previous taxonomy: %v", name, err)
				continue
			}
			c.replace(dim, entities)
			log.Printf("[catalog] reloaded %s (%d entities)", dim, len(entities))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[catalog] watch error: %v", err)
		}
	}
}
