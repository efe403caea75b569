// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/pkg/crypto/adaptive"
)

// badgerKeyPrefix namespaces vault records inside the database.
const badgerKeyPrefix = "record/"

// derivation label binding record encryption to this store's purpose.
const recordKeyLabel = "authgate/vault/records"

// BadgerStore is a durable RecordStore over a local badger database.
// The CLI uses it to keep the operator's session on disk. Record
// values are encrypted at rest with a key derived from the master
// keyfile; the record name is bound as associated data so a value
// cannot be swapped between records.
//
// Badger takes an exclusive directory lock, so two concurrent CLI
// processes cannot race refresh-token rotation against each other.
type BadgerStore struct {
	db     *badger.DB
	cipher adaptive.Cipher
	logger *slog.Logger
}

// storedValue is the JSON payload encrypted into each badger entry.
type storedValue struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// NewBadgerStore opens (or creates) the database at dir.
func NewBadgerStore(dir string, masterKey []byte, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	key, err := adaptive.DeriveKey(masterKey, recordKeyLabel)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: derive record key: %w", err)
	}
	cipher, err := adaptive.New(key)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: init cipher: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open db: %w", err)
	}

	return &BadgerStore{db: db, cipher: cipher, logger: logger}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Set stores an encrypted record, carrying the record expiry as the
// badger entry TTL.
func (s *BadgerStore) Set(_ context.Context, rec domain.StoredRecord) error {
	plain, err := json.Marshal(storedValue{Value: rec.Value, Expires: rec.Expires})
	if err != nil {
		return err
	}
	sealed, err := s.cipher.Encrypt(plain, []byte(rec.Name))
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(badgerKeyPrefix+rec.Name), sealed)
		if !rec.Expires.IsZero() {
			ttl := time.Until(rec.Expires)
			if ttl <= 0 {
				return nil // already expired, nothing to store
			}
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get retrieves and decrypts a record.
func (s *BadgerStore) Get(_ context.Context, name string) (domain.StoredRecord, bool, error) {
	var sealed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + name))
		if err != nil {
			return err
		}
		sealed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.StoredRecord{}, false, nil
	}
	if err != nil {
		return domain.StoredRecord{}, false, err
	}

	plain, err := s.cipher.Decrypt(sealed, []byte(name))
	if err != nil {
		// Undecryptable means altered on disk or written under another
		// key. Either way the record is gone; report absent so the
		// vault's fingerprint path decides what to do.
		s.logger.Warn("discarding undecryptable record", "record", name)
		return domain.StoredRecord{}, false, nil
	}

	var val storedValue
	if err := json.Unmarshal(plain, &val); err != nil {
		return domain.StoredRecord{}, false, err
	}

	return domain.StoredRecord{
		Name:    name,
		Value:   val.Value,
		Expires: val.Expires,
	}, true, nil
}

// Delete removes a record.
func (s *BadgerStore) Delete(_ context.Context, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(badgerKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
