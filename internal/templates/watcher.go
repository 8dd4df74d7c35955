package templates

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 150 * time.Millisecond

// Watch reloads the template file whenever it changes, until ctx is
// cancelled. The parent directory is watched so that editors that replace
// the file by rename are picked up too. onReload, if non-nil, is called
// after each successful reload.
func (p *Provider) Watch(ctx context.Context, onReload func()) error {
	if p.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(p.path)
	if err := w.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(p.path)

	p.logger.Info("templates: watching", slog.String("path", p.path))

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			p.logger.Info("templates: watcher stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			if err := p.Reload(); err != nil {
				p.logger.Warn("templates: reload failed, keeping previous set", slog.String("error", err.Error()))
				continue
			}
			p.logger.Info("templates: reloaded", slog.Int("count", p.Count()))
			if onReload != nil {
				onReload()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			timerCh = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("templates: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
