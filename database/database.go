// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/beagle/database/models"

	badger "github.com/dgraph-io/badger/v4"
	badgeroptions "github.com/dgraph-io/badger/v4/options"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// ErrKeyNotFound is returned when a requested key does not exist in
// the ledger store
var ErrKeyNotFound = errors.New("key not found")

type Config struct {
	DataDir      string
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// Database combines the badger-backed ledger store, which holds all
// registry state keyed by node id, with a SQLite metadata index used
// for reverse name lookups and expiration queries
type Database struct {
	blob         *badger.DB
	metadata     *gorm.DB
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	dataDir      string
}

// New creates a new database. All data is stored in memory when no
// data directory is configured
func New(cfg *Config) (*Database, error) {
	db := &Database{
		dataDir:      cfg.DataDir,
		logger:       cfg.Logger,
		promRegistry: cfg.PromRegistry,
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := db.openBlob(); err != nil {
		return nil, err
	}
	if err := db.openMetadata(); err != nil {
		// Don't leak the already-open blob DB
		_ = db.blob.Close()
		return nil, err
	}
	if db.promRegistry != nil {
		db.registerMetrics()
	}
	return db, nil
}

func (d *Database) openBlob() error {
	var blobDb *badger.DB
	var err error
	if d.dataDir == "" {
		// No dataDir, use in-memory config
		badgerOpts := badger.DefaultOptions("").
			WithLogger(newBadgerLogger(d.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true)
		blobDb, err = badger.Open(badgerOpts)
		if err != nil {
			return err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(d.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		blobDir := filepath.Join(
			d.dataDir,
			"ledger",
		)
		badgerOpts := badger.DefaultOptions(blobDir).
			WithLogger(newBadgerLogger(d.logger)).
			WithLoggingLevel(badger.WARNING).
			WithCompression(badgeroptions.Snappy)
		blobDb, err = badger.Open(badgerOpts)
		if err != nil {
			return err
		}
	}
	d.blob = blobDb
	return nil
}

func (d *Database) openMetadata() error {
	var metadataDb *gorm.DB
	var err error
	if d.dataDir == "" {
		// cache=shared allows multiple connections to share the same in-memory database
		metadataDb, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return err
		}
	} else {
		metadataDbPath := filepath.Join(
			d.dataDir,
			"metadata.sqlite",
		)
		// WAL journal mode and disabled sync-on-write
		metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
		metadataDb, err = gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
			),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return err
		}
	}
	if err := metadataDb.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		if err := metadataDb.AutoMigrate(model); err != nil {
			return err
		}
	}
	d.metadata = metadataDb
	return nil
}

// Close shuts down both underlying stores
func (d *Database) Close() error {
	var err error
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	if d.metadata != nil {
		if sqlDb, sqlErr := d.metadata.DB(); sqlErr == nil {
			err = errors.Join(err, sqlDb.Close())
		}
	}
	return err
}

// Blob returns the underlying badger database handle
func (d *Database) Blob() *badger.DB {
	return d.blob
}

// Metadata returns the underlying gorm database handle
func (d *Database) Metadata() *gorm.DB {
	return d.metadata
}

// Update runs the provided function in a read-write badger transaction
func (d *Database) Update(fn func(txn *badger.Txn) error) error {
	return d.blob.Update(fn)
}

// View runs the provided function in a read-only badger transaction
func (d *Database) View(fn func(txn *badger.Txn) error) error {
	return d.blob.View(fn)
}

// Get reads a single key outside of any caller-managed transaction.
// A missing key returns ErrKeyNotFound
func (d *Database) Get(key []byte) ([]byte, error) {
	var ret []byte
	err := d.View(func(txn *badger.Txn) error {
		val, err := TxGet(txn, key)
		if err != nil {
			return err
		}
		ret = val
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// TxGet reads a single key within an existing transaction, mapping a
// missing key to ErrKeyNotFound
func TxGet(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
