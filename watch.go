package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/fieldspeech/internal/markdown"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// reloadInterval limits how often a changed file is spoken again. Editors
// often write a file several times when saving.
const reloadInterval = 500 * time.Millisecond

// watch speaks path again after every change until interrupted. The
// document's cache is reset first, as the old context no longer applies.
func (r *reader) watch(ctx context.Context, path string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Info("fsnotify watching dir", "dir", dir)

	limiter := rate.NewLimiter(rate.Every(reloadInterval), 1)
	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)

			if limiter.Allow() {
				r.reload(path)
				continue
			}
			// speak the final state once the burst is over
			if pending == nil {
				pending = time.AfterFunc(reloadInterval, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			}

		case <-reload:
			pending = nil
			r.reload(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

func (r *reader) reload(path string) {
	doc, err := markdown.Load(path)
	if err != nil {
		log.Error("unable to reload document", "path", path, "error", err)
		return
	}
	if err := r.store.Reset(doc.ID()); err != nil {
		log.Debug("no cache to reset", "document", doc.ID())
	}
	fmt.Fprintln(r.out)
	if err := r.speakDocument(doc); err != nil {
		log.Error("unable to speak document", "path", path, "error", err)
	}
}
