package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"liz/internal/types"
)

var (
	bucketData    = []byte("data")
	bucketDeleted = []byte("deleted")
)

// BboltSheetStore keeps each collection in its own bucket. Keys are the
// big-endian position of the record so cursor order equals sheet order.
type BboltSheetStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func NewBboltSheetStore(path string) (*BboltSheetStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sheet db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open sheet db %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketData); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketDeleted)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BboltSheetStore{db: db}, nil
}

func (s *BboltSheetStore) Load(ctx context.Context) (*Sheet, error) {
	var active, deleted []*types.Shortcut
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		if active, err = readBucket(tx, bucketData); err != nil {
			return err
		}
		deleted, err = readBucket(tx, bucketDeleted)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load music sheet: %w", err)
	}
	return NewSheet(active, deleted), nil
}

func readBucket(tx *bolt.Tx, name []byte) ([]*types.Shortcut, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, nil
	}
	var out []*types.Shortcut
	err := b.ForEach(func(_, v []byte) error {
		var sc types.Shortcut
		if err := json.Unmarshal(v, &sc); err != nil {
			return err
		}
		out = append(out, &sc)
		return nil
	})
	return out, err
}

// Save replaces both buckets inside one transaction.
func (s *BboltSheetStore) Save(ctx context.Context, sheet *Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sheet == nil {
		return errors.New("sheet is required")
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := writeBucket(tx, bucketData, sheet.active); err != nil {
			return err
		}
		return writeBucket(tx, bucketDeleted, sheet.deleted)
	})
	if err != nil {
		return fmt.Errorf("save music sheet: %w", err)
	}
	return nil
}

func writeBucket(tx *bolt.Tx, name []byte, records []*types.Shortcut) error {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
	}
	b, err := tx.CreateBucket(name)
	if err != nil {
		return err
	}
	for i, sc := range records {
		raw, err := json.Marshal(sc)
		if err != nil {
			return err
		}
		if err := b.Put(positionKey(i), raw); err != nil {
			return err
		}
	}
	return nil
}

func positionKey(i int) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(i))
	return key[:]
}

func (s *BboltSheetStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
