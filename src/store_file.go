package bookster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore serves settings from a JSON object on disk, keyed by setting key:
//
//	{"prompt_book_outline": {"prompt": "..."}}
//
// The file is re-read whenever it changes.
type FileStore struct {
	path string

	mu     sync.RWMutex
	values map[string]json.RawMessage

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileStore loads path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		values: make(map[string]json.RawMessage),
		done:   make(chan struct{}),
	}
	if err := fs.reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) reload() error {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		fs.mu.Lock()
		fs.values = make(map[string]json.RawMessage)
		fs.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read prompt file: %w", err)
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse prompt file %s: %w", fs.path, err)
	}
	fs.mu.Lock()
	fs.values = values
	fs.mu.Unlock()
	return nil
}

// Watch reloads the file on every write until Close is called. onChange, if
// not nil, runs after each successful reload.
func (fs *FileStore) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(fs.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", fs.path, err)
	}
	fs.watcher = watcher

	target := filepath.Clean(fs.path)
	go func() {
		for {
			select {
			case <-fs.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}
				if err := fs.reload(); err != nil {
					slog.Warn("prompt file reload failed", "path", fs.path, "error", err)
					continue
				}
				slog.Info("prompt file reloaded", "path", fs.path)
				if onChange != nil {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("prompt file watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (fs *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.values[key]
	if !ok {
		return nil, ErrPromptNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set updates the value and rewrites the file atomically.
func (fs *FileStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("setting %s is not valid JSON", key)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	next := make(map[string]json.RawMessage, len(fs.values)+1)
	for k, v := range fs.values {
		next[k] = v
	}
	next[key] = append(json.RawMessage(nil), value...)

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prompt file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".prompts-*")
	if err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write prompt file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("replace prompt file: %w", err)
	}
	fs.values = next
	return nil
}

func (fs *FileStore) Close() error {
	select {
	case <-fs.done:
	default:
		close(fs.done)
	}
	if fs.watcher != nil {
		return fs.watcher.Close()
	}
	return nil
}
