package pricing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// TableStore owns the base-price table file. Reads are served from
// memory; external edits to the file are picked up via fsnotify so an
// operator can tune fallback prices without a restart.
type TableStore struct {
	mu      sync.RWMutex
	path    string
	table   BasePriceTable
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewTableStore(path string, logger *zap.Logger) (*TableStore, error) {
	s := &TableStore{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}

	if err := s.loadOrInit(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

func (s *TableStore) Table() BasePriceTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Update persists a new table and makes it current.
func (s *TableStore) Update(table BasePriceTable) error {
	payload, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return nil
}

func (s *TableStore) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *TableStore) loadOrInit() error {
	payload, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		defaults := DefaultBasePrices()
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return err
		}
		s.table = defaults
		return s.Update(defaults)
	}
	if err != nil {
		return err
	}
	var table BasePriceTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return nil
}

func (s *TableStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				s.logger.Warn("base price table reload failed, keeping previous table",
					zap.String("path", s.path), zap.Error(err))
				continue
			}
			s.logger.Info("base price table reloaded", zap.String("path", s.path))
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("base price table watcher error", zap.Error(err))
		}
	}
}

func (s *TableStore) reload() error {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var table BasePriceTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return nil
}
