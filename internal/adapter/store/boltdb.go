package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"chefrag/internal/domain"
)

var (
	bucketPassages = []byte("passages")
	bucketStats    = []byte("stats")
	keyStats       = []byte("corpus_stats")
)

// BoltStore persists chunked passages between ingestion and serving. The
// lexical index itself is rebuilt in memory from these records; the store
// only owns the ingest/query handoff.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketPassages, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type passageRecord struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PutPassages stores passages keyed by their emission index, so iteration
// order always matches emission order.
func (s *BoltStore) PutPassages(passages []domain.Passage) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPassages)
		for _, p := range passages {
			data, err := json.Marshal(passageRecord{Text: p.Text, Metadata: p.Metadata})
			if err != nil {
				return err
			}
			if err := b.Put(indexKey(p.Index), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPassages returns all stored passages in emission order.
func (s *BoltStore) ListPassages() ([]domain.Passage, error) {
	var passages []domain.Passage

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPassages).ForEach(func(k, v []byte) error {
			var rec passageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt passage record: %w", err)
			}
			passages = append(passages, domain.Passage{
				Text:     rec.Text,
				Index:    int(binary.BigEndian.Uint64(k)),
				Metadata: rec.Metadata,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return passages, nil
}

// Clear drops all passages and stats, preparing for a full re-ingest.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketPassages, bucketStats} {
			if err := tx.DeleteBucket(b); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func indexKey(idx int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(idx))
	return key
}
