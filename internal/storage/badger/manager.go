package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB wraps the badgerhold store shared by the typed storages
type BadgerDB struct {
	store *badgerhold.Store
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close closes the database connection
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// openBadgerDB opens the store at config.Path, wiping it first when
// reset_on_startup is set.
func openBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable badger's default logger

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger database opened")

	return &BadgerDB{store: store}, nil
}

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	user       interfaces.UserStorage
	assessment interfaces.AssessmentStorage
	kv         interfaces.KeyValueStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := openBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return &Manager{
		db:         db,
		user:       NewUserStorage(db, logger),
		assessment: NewAssessmentStorage(db, logger),
		kv:         NewKVStorage(db, logger),
		logger:     logger,
	}, nil
}

// UserStorage returns the User storage interface
func (m *Manager) UserStorage() interfaces.UserStorage {
	return m.user
}

// AssessmentStorage returns the Assessment storage interface
func (m *Manager) AssessmentStorage() interfaces.AssessmentStorage {
	return m.assessment
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
