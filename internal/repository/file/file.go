package file

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"token-service/internal/domain/token"
	"token-service/internal/repository"
	"token-service/internal/repository/memory"

	"github.com/fsnotify/fsnotify"
)

const (
	errFailedReadTokenFileFmt  = "failed to read token file %s: %w"
	errFailedCreateWatcherFmt  = "failed to create token file watcher: %w"
	errFailedWatchDirectoryFmt = "failed to watch %s: %w"
)

// Load reads and decodes the token document at path.
func Load(path string) ([]token.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(errFailedReadTokenFileFmt, path, err)
	}
	return repository.DecodeTokens(data, repository.FormatFromPath(path))
}

// NewProvider loads path into a fresh in-memory provider.
func NewProvider(path string) (*memory.Provider, error) {
	tokens, err := Load(path)
	if err != nil {
		return nil, err
	}
	return memory.New(tokens), nil
}

// Watcher reloads a token file into a memory provider whenever it changes.
// The parent directory is watched so editors that replace the file by
// rename are still picked up.
type Watcher struct {
	path    string
	store   *memory.Provider
	watcher *fsnotify.Watcher
}

func NewWatcher(path string, store *memory.Provider) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateWatcherFmt, err)
	}

	dir := filepath.Dir(absPath)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf(errFailedWatchDirectoryFmt, dir, err)
	}

	return &Watcher{
		path:    absPath,
		store:   store,
		watcher: fw,
	}, nil
}

// Reload re-reads the file. A document that fails to decode leaves the
// current snapshot in place.
func (w *Watcher) Reload() error {
	tokens, err := Load(w.path)
	if err != nil {
		return err
	}
	w.store.Replace(tokens)
	return nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if err := w.Reload(); err != nil {
				log.Printf("token file reload failed, keeping %d tokens: %v", w.store.Len(), err)
				continue
			}
			log.Printf("token file reloaded: %d tokens", w.store.Len())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("token file watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
