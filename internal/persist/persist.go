// Package persist stores extracted sentiment durably so batch runs can resume.
//
// Four backends are supported: an append-only CSV file, SQLite (the default),
// MySQL and PostgreSQL. Every backend refuses to overwrite a persisted product.
package persist

import (
	"fmt"
	"os"
	"sync"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// StoreManager holds the sentiment store opened for the process.
type StoreManager struct {
	sync.RWMutex
	backend   schema.DatabaseBackend
	connStr   string
	sentiment contract.SentimentStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetSentimentStore implements contract.StoreManager.
func (m *StoreManager) GetSentimentStore() contract.SentimentStore {
	m.RLock()
	defer m.RUnlock()
	return m.sentiment
}

// Backend returns the backend the manager was initialized with.
func (m *StoreManager) Backend() schema.DatabaseBackend {
	m.RLock()
	defer m.RUnlock()
	return m.backend
}

// ConnString returns the connection string the manager was initialized with.
func (m *StoreManager) ConnString() string {
	m.RLock()
	defer m.RUnlock()
	return m.connStr
}

// NewSentimentStore opens the store for the given backend.
func NewSentimentStore(backend schema.DatabaseBackend, connStr string) (contract.SentimentStore, error) {
	switch backend {
	case schema.CSVBackend:
		return NewCSVStore(contract.ResolveStoreLocation(backend, connStr))
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(backend, connStr)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// InitStore opens the global sentiment store. Later calls are no-ops.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := NewSentimentStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize sentiment store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.backend = backend
		Manager.connStr = connStr
		Manager.sentiment = store
	})

	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.sentiment != nil {
			_ = Manager.sentiment.Close()
		}
	})
}

// ClearStore removes every persisted row.
// For SQLite and CSV it deletes the file; for MySQL and PostgreSQL it drops the tables.
func ClearStore(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.CSVBackend:
		path := contract.ResolveStoreLocation(backend, connStr)
		if path == "" {
			return fmt.Errorf("store path cannot be empty for %s backend", backend)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove store file %s: %w", path, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range []string{sentimentResultsTable, extractionRunsTable, migrationsTable} {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}
