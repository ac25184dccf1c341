package repository

import (
	"errors"
	"log"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/nazipyamilov-hub/MedTracker/pkg/cleanup"
)

// BadgerStore is the on-device KVStore implementation backed by an embedded
// Badger database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) *BadgerStore {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("opening local storage error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing local storage",
		F:    db.Close,
	})
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.New("reading from local storage error: " + err.Error())
	}
	return value, true, nil
}

func (s *BadgerStore) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return errors.New("writing to local storage error: " + err.Error())
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
