package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/go-hclog"
)

// BadgerStore is a Store backed by a Badger database.
type BadgerStore struct {
	kvStore
	db     *badger.DB
	logger hclog.Logger
}

// Open opens (creating if needed) a Badger database at path.
func Open(path string, logger hclog.Logger, opts ...Option) (*BadgerStore, error) {
	return open(badger.DefaultOptions(path), logger, opts)
}

// OpenInMemory opens a Badger database that is never written to disk.
func OpenInMemory(logger hclog.Logger, opts ...Option) (*BadgerStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger, opts)
}

func open(opts badger.Options, logger hclog.Logger, storeOpts []Option) (*BadgerStore, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts.Logger = nil // Badger's internal logging is too chatty for a CLI
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &BadgerStore{db: db, logger: logger}
	s.kvStore = newKVStore(s, storeOpts)

	logger.Debug("store opened", "path", opts.Dir, "in_memory", opts.InMemory)
	return s, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	s.logger.Debug("closing store")
	return s.db.Close()
}

func (s *BadgerStore) get(key string, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set writes all values in one transaction.
func (s *BadgerStore) set(values map[string]any) error {
	encoded := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		encoded[key] = data
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for key, data := range encoded {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}
