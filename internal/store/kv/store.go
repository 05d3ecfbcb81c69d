// Package kv is the Badger-backed record store.
//
// Key layout:
//
//	assignment:{color}                        → CategoryAssignment JSON
//	highlight:{id}                            → Highlight JSON (without text)
//	idx:highlights:color:{color}:{id}         → empty
//	idx:highlights:ref:{book:chapter:verse:version} → highlight id
//	verse:{book:chapter:verse:version}        → verse text
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/versemark/versemark-server/internal/store"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	path   string
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database in the directory at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes so a crash cannot lose a confirmed delete
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", path)
	}

	return &Store{db: db, logger: logger, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing Badger database", "path", s.path)
	}
	return s.db.Close()
}

// Ping reports whether the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// iterateKeys calls fn with a copy of every key under prefix. Values are not fetched.
func iterateKeys(txn *badger.Txn, prefix []byte, fn func(key []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := fn(it.Item().KeyCopy(nil)); err != nil {
			return err
		}
	}
	return nil
}

// iterateValues calls fn with the value of every key under prefix.
func iterateValues(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchSize = 100

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
