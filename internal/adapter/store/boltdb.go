package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"mlcatalog/internal/domain"
)

var (
	bucketFunctions = []byte("functions") // key: fileStem|name
	bucketByName    = []byte("by_name")   // key: name -> []functionKey
	bucketFiles     = []byte("files")     // key: fileStem -> []functionKey
	bucketStats     = []byte("stats")
	keyStats        = []byte("catalog_stats")
)

// BoltStore persists enhanced function records in a local bbolt database,
// upserting by (file, function name).
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketFunctions, bucketByName, bucketFiles, bucketStats}
		for _, b := range buckets {
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

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// FunctionKey builds the canonical (file, function) key.
func FunctionKey(fileStem, name string) string {
	return fileStem + "|" + name
}

func (s *BoltStore) UpsertFunction(fileStem string, fn domain.EnhancedFunction) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := FunctionKey(fileStem, fn.Name)

		data, err := json.Marshal(fn)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketFunctions).Put([]byte(key), data); err != nil {
			return err
		}

		if err := appendKey(tx.Bucket(bucketByName), fn.Name, key); err != nil {
			return err
		}
		return appendKey(tx.Bucket(bucketFiles), fileStem, key)
	})
}

// appendKey maintains a JSON list of function keys under an index entry,
// without duplicates.
func appendKey(b *bbolt.Bucket, index, key string) error {
	var keys []string
	if existing := b.Get([]byte(index)); existing != nil {
		json.Unmarshal(existing, &keys)
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	keys = append(keys, key)
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return b.Put([]byte(index), data)
}

func (s *BoltStore) GetFunction(fileStem, name string) (domain.EnhancedFunction, error) {
	var fn domain.EnhancedFunction
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketFunctions).Get([]byte(FunctionKey(fileStem, name)))
		if data == nil {
			return fmt.Errorf("function not found: %s/%s", fileStem, name)
		}
		return json.Unmarshal(data, &fn)
	})
	return fn, err
}

func (s *BoltStore) FindByName(name string) ([]domain.EnhancedFunction, error) {
	var fns []domain.EnhancedFunction
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketByName).Get([]byte(name))
		if data == nil {
			return nil
		}
		var keys []string
		if err := json.Unmarshal(data, &keys); err != nil {
			return err
		}
		funcBucket := tx.Bucket(bucketFunctions)
		for _, key := range keys {
			raw := funcBucket.Get([]byte(key))
			if raw == nil {
				continue
			}
			var fn domain.EnhancedFunction
			if err := json.Unmarshal(raw, &fn); err != nil {
				continue
			}
			fns = append(fns, fn)
		}
		return nil
	})
	return fns, err
}

func (s *BoltStore) ListFunctions() ([]domain.EnhancedFunction, error) {
	var fns []domain.EnhancedFunction
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFunctions).ForEach(func(k, v []byte) error {
			var fn domain.EnhancedFunction
			if err := json.Unmarshal(v, &fn); err != nil {
				return nil
			}
			fns = append(fns, fn)
			return nil
		})
	})
	return fns, err
}

func (s *BoltStore) DeleteFile(fileStem string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		filesBucket := tx.Bucket(bucketFiles)
		data := filesBucket.Get([]byte(fileStem))
		if data == nil {
			return nil
		}
		var keys []string
		if err := json.Unmarshal(data, &keys); err != nil {
			return err
		}

		funcBucket := tx.Bucket(bucketFunctions)
		nameBucket := tx.Bucket(bucketByName)
		for _, key := range keys {
			raw := funcBucket.Get([]byte(key))
			if raw != nil {
				var fn domain.EnhancedFunction
				if json.Unmarshal(raw, &fn) == nil {
					removeKey(nameBucket, fn.Name, key)
				}
			}
			funcBucket.Delete([]byte(key))
		}
		return filesBucket.Delete([]byte(fileStem))
	})
}

func removeKey(b *bbolt.Bucket, index, key string) {
	data := b.Get([]byte(index))
	if data == nil {
		return
	}
	var keys []string
	if json.Unmarshal(data, &keys) != nil {
		return
	}
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != key {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == 0 {
		b.Delete([]byte(index))
		return
	}
	out, _ := json.Marshal(filtered)
	b.Put([]byte(index), out)
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

// CountByCategory tallies stored functions per category.
func (s *BoltStore) CountByCategory() (map[string]int, error) {
	counts := make(map[string]int)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFunctions).ForEach(func(k, v []byte) error {
			var fn domain.EnhancedFunction
			if err := json.Unmarshal(v, &fn); err != nil {
				return nil
			}
			counts[string(fn.Category)]++
			return nil
		})
	})
	return counts, err
}

// SearchFunctions matches stored function names case-insensitively by
// substring.
func (s *BoltStore) SearchFunctions(query string) ([]domain.EnhancedFunction, error) {
	all, err := s.ListFunctions()
	if err != nil {
		return nil, err
	}
	var matches []domain.EnhancedFunction
	queryLower := strings.ToLower(query)
	for _, fn := range all {
		if strings.Contains(strings.ToLower(fn.Name), queryLower) {
			matches = append(matches, fn)
		}
	}
	return matches, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
