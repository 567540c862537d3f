package server

import (
	"context"
	"path/filepath"

	"trackshelf/internal/config"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// startConfigWatcher watches the config file and, when it changes, points
// the client at the new catalog URL and refreshes the store. The parent
// directory is watched because editors usually replace the file.
func (vs *ViewServer) startConfigWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	vs.watcher = watcher

	if err := watcher.Add(filepath.Dir(vs.configPath)); err != nil {
		watcher.Close()
		return err
	}

	go vs.watchConfig(ctx, watcher)

	vs.logger.WithField("config_path", vs.configPath).Info("Config watcher started")
	return nil
}

// watchConfig selects on watcher channels and dispatches events.
func (vs *ViewServer) watchConfig(ctx context.Context, watcher *fsnotify.Watcher) {
	target := filepath.Clean(vs.configPath)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				vs.reloadConfig(ctx)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			vs.logger.WithError(err).Error("Config watcher error")
		}
	}
}

// reloadConfig applies the catalog URL from the changed file and re-fetches.
// Other settings take effect on restart.
func (vs *ViewServer) reloadConfig(ctx context.Context) {
	cfg, err := config.LoadConfig(vs.configPath)
	if err != nil {
		vs.logger.WithError(err).Warn("Ignoring invalid config change")
		return
	}

	previous := vs.client.BaseURL()
	vs.client.SetBaseURL(cfg.API.BaseURL)
	vs.logger.WithFields(logrus.Fields{
		"previous": previous,
		"current":  vs.client.BaseURL(),
	}).Info("Config changed, refreshing catalog")

	if err := vs.store.Fetch(ctx); err != nil {
		vs.logger.WithError(err).Warn("Refresh after config change did not load the catalog")
	}
}

// stopConfigWatcher closes the watcher if running.
func (vs *ViewServer) stopConfigWatcher() {
	if vs.watcher != nil {
		vs.watcher.Close()
		vs.watcher = nil
	}
}
