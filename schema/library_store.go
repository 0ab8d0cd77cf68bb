package schema

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// LibraryStore persists AluVM script library blobs keyed by their content
// hash, so a ScriptBinding.LibraryRef can be resolved to bytecode without
// the schema itself carrying the blob inline. Backed by badger rather than
// the bbolt store used for consignment/witness caching (store package):
// library blobs are an LSM-shaped write-once/read-many workload (many
// small immutable values keyed by hash) that badger's value-log design
// fits better than bbolt's single mmap'd B+tree, and badger is the library
// the pack's other chain-client repo reaches for in that role.
type LibraryStore struct {
	db *badger.DB
}

// OpenLibraryStore opens (creating if absent) a badger-backed library store
// rooted at dir.
func OpenLibraryStore(dir string) (*LibraryStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("schema: open library store: %w", err)
	}
	return &LibraryStore{db: db}, nil
}

func (s *LibraryStore) Close() error { return s.db.Close() }

// Put stores a library blob under its 32-byte content hash.
func (s *LibraryStore) Put(hash [32]byte, blob []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hash[:], blob)
	})
}

// Get retrieves a library blob by its content hash. ok is false when no
// blob is stored under that hash.
func (s *LibraryStore) Get(hash [32]byte) (blob []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(hash[:])
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		ok = true
		return item.Value(func(val []byte) error {
			blob = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("schema: get library blob: %w", err)
	}
	return blob, ok, nil
}
