package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/normanking/hologram/internal/retarget"
)

// LoadModelOptions reads per-model retargeting options from a JSON or YAML
// file. An empty path yields the defaults.
func LoadModelOptions(path string) (retarget.Options, error) {
	if path == "" {
		return retarget.DefaultOptions(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("camera.posZ", 1)
	v.SetDefault("jawOpenMultiplier", 1)
	if err := v.ReadInConfig(); err != nil {
		return retarget.DefaultOptions(), fmt.Errorf("read model options %s: %w", path, err)
	}

	var opts retarget.Options
	if err := v.Unmarshal(&opts); err != nil {
		return retarget.DefaultOptions(), fmt.Errorf("decode model options %s: %w", path, err)
	}
	if len(opts.Blendshapes.Neck.Order) == 0 {
		opts.Blendshapes.Neck.Order = retarget.DefaultOptions().Blendshapes.Neck.Order
	}
	return opts, nil
}

// OptionsWatcher reloads a model options file whenever it changes.
type OptionsWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan retarget.Options
	logger  zerolog.Logger
}

// NewOptionsWatcher starts watching path. Reloaded options are delivered on
// Changes until ctx is done or Close is called.
func NewOptionsWatcher(ctx context.Context, path string, logger zerolog.Logger) (*OptionsWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file rather than write it.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &OptionsWatcher{
		path:    abs,
		watcher: watcher,
		changes: make(chan retarget.Options, 1),
		logger:  logger.With().Str("component", "options-watcher").Logger(),
	}
	go w.watchLoop(ctx)
	return w, nil
}

// Changes delivers the latest reloaded options. Only the newest pending
// value is kept.
func (w *OptionsWatcher) Changes() <-chan retarget.Options { return w.changes }

func (w *OptionsWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			opts, err := LoadModelOptions(w.path)
			if err != nil {
				w.logger.Warn().Err(err).Msg("Model options reload failed")
				continue
			}
			w.logger.Info().Str("path", w.path).Msg("Model options reloaded")
			w.publish(opts)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Model options watcher error")
		}
	}
}

func (w *OptionsWatcher) publish(opts retarget.Options) {
	for {
		select {
		case w.changes <- opts:
			return
		default:
		}
		select {
		case <-w.changes:
		default:
		}
	}
}

// Close stops the watcher
func (w *OptionsWatcher) Close() error {
	return w.watcher.Close()
}
