// ABOUTME: Durable storage for the two session entries (token and user)
// ABOUTME: BoltStore persists across runs; MemoryStore backs tests and ephemeral use

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/boltdb/bolt"
)

// Store keeps the raw session entries. Both entries are written and cleared together.
type Store interface {
	// Load returns the stored entries; an absent entry is "" or nil
	Load() (token string, user []byte, err error)
	Save(token string, user []byte) error
	Clear() error
	Close() error
}

var (
	bucketName = []byte("session")
	tokenKey   = []byte("token")
	userKey    = []byte("user")
)

// BoltStore keeps the session in a bolt database file
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path. A second process
// holding the file makes this fail after one second rather than block.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init session bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load() (string, []byte, error) {
	var (
		token string
		user  []byte
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		token = string(b.Get(tokenKey))
		// bolt values are only valid inside the transaction
		if raw := b.Get(userKey); raw != nil {
			user = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("read session: %w", err)
	}
	return token, user, nil
}

func (s *BoltStore) Save(token string, user []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return err
		}
		return b.Put(userKey, user)
	})
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *BoltStore) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := b.Delete(tokenKey); err != nil {
			return err
		}
		return b.Delete(userKey)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// MemoryStore is a Store that lives only as long as the process
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  []byte
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store pre-seeded with raw entries
func NewMemoryStoreWith(token string, user []byte) *MemoryStore {
	return &MemoryStore{token: token, user: user}
}

func (s *MemoryStore) Load() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, append([]byte(nil), s.user...), nil
}

func (s *MemoryStore) Save(token string, user []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = append([]byte(nil), user...)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
