// Package sqlite implements the store contract on a SQLite database
// via gorm. Byte values (counters included) live in one table keyed by
// string, list elements in another ordered by rowid. Its pipeline runs
// the whole batch inside a single transaction, so batches are applied
// atomically or not at all.
package sqlite

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"distributed-lru-cache/internal/store"
)

var now = time.Now

// kvRow holds one byte payload, with an optional absolute expiry.
type kvRow struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	ExpiresAt *time.Time
}

func (kvRow) TableName() string { return "kv_entries" }

// listRow is one list element; rowid order is list order.
type listRow struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	ListKey string `gorm:"index"`
	Value   string
}

func (listRow) TableName() string { return "list_entries" }

// SQLiteStore is a persistent Store backed by a SQLite file (or
// :memory: for tests).
type SQLiteStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates
// the store schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, store.Failure("open", path, err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing gorm connection, migrating the store
// schema on it.
func NewWithDB(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&kvRow{}, &listRow{}); err != nil {
		return nil, store.Failure("migrate", "", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying connection.
func (s *SQLiteStore) DB() *gorm.DB { return s.db }

// The per-operation helpers take the connection explicitly so the
// pipeline can run them on a transaction.

func getTx(tx *gorm.DB, key string) ([]byte, bool, error) {
	var row kvRow
	err := tx.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.Failure("get", key, err)
	}
	if row.ExpiresAt != nil && now().After(*row.ExpiresAt) {
		if err := tx.Delete(&kvRow{}, "key = ?", key).Error; err != nil {
			return nil, false, store.Failure("get", key, err)
		}
		return nil, false, nil
	}
	return row.Value, true, nil
}

func setTx(tx *gorm.DB, key string, value []byte, ttl time.Duration) error {
	row := kvRow{Key: key, Value: value}
	if ttl > 0 {
		exp := now().Add(ttl)
		row.ExpiresAt = &exp
	}
	// Save upserts by primary key and clears ExpiresAt when ttl <= 0.
	if err := tx.Save(&row).Error; err != nil {
		return store.Failure("set", key, err)
	}
	return nil
}

// deleteTx removes the key whatever its type, list rows included, to
// match DEL semantics on a networked key-value server.
func deleteTx(tx *gorm.DB, key string) (bool, error) {
	res := tx.Delete(&kvRow{}, "key = ?", key)
	if res.Error != nil {
		return false, store.Failure("delete", key, res.Error)
	}
	listRes := tx.Delete(&listRow{}, "list_key = ?", key)
	if listRes.Error != nil {
		return false, store.Failure("delete", key, listRes.Error)
	}
	return res.RowsAffected > 0 || listRes.RowsAffected > 0, nil
}

func loadListTx(tx *gorm.DB, key string) ([]listRow, error) {
	var rows []listRow
	if err := tx.Where("list_key = ?", key).Order("id").Find(&rows).Error; err != nil {
		return nil, store.Failure("list", key, err)
	}
	return rows, nil
}

func lrangeTx(tx *gorm.DB, key string, start, end int64) ([]string, error) {
	rows, err := loadListTx(tx, key)
	if err != nil {
		return nil, err
	}
	n := int64(len(rows))
	if end == -1 || end >= n {
		end = n - 1
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		return []string{}, nil
	}
	out := make([]string, 0, end-start+1)
	for _, row := range rows[start : end+1] {
		out = append(out, row.Value)
	}
	return out, nil
}

func lindexTx(tx *gorm.DB, key string, index int64) (string, bool, error) {
	rows, err := loadListTx(tx, key)
	if err != nil {
		return "", false, err
	}
	n := int64(len(rows))
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return "", false, nil
	}
	return rows[index].Value, true, nil
}

func lremTx(tx *gorm.DB, key string, count int64, value string) (int64, error) {
	rows, err := loadListTx(tx, key)
	if err != nil {
		return 0, err
	}
	var ids []uint
	switch {
	case count > 0:
		for _, row := range rows {
			if row.Value == value && int64(len(ids)) < count {
				ids = append(ids, row.ID)
			}
		}
	case count < 0:
		for i := len(rows) - 1; i >= 0; i-- {
			if rows[i].Value == value && int64(len(ids)) < -count {
				ids = append(ids, rows[i].ID)
			}
		}
	default:
		for _, row := range rows {
			if row.Value == value {
				ids = append(ids, row.ID)
			}
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := tx.Delete(&listRow{}, "id IN ?", ids).Error; err != nil {
		return 0, store.Failure("lrem", key, err)
	}
	return int64(len(ids)), nil
}

func rpushTx(tx *gorm.DB, key string, values ...string) (int64, error) {
	for _, v := range values {
		if err := tx.Create(&listRow{ListKey: key, Value: v}).Error; err != nil {
			return 0, store.Failure("rpush", key, err)
		}
	}
	var n int64
	if err := tx.Model(&listRow{}).Where("list_key = ?", key).Count(&n).Error; err != nil {
		return 0, store.Failure("rpush", key, err)
	}
	return n, nil
}

func addTx(tx *gorm.DB, key string, delta int64) (int64, error) {
	raw, ok, err := getTx(tx, key)
	if err != nil {
		return 0, err
	}
	var cur int64
	if ok && len(raw) > 0 {
		cur, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, store.Failure("incr", key, fmt.Errorf("value is not an integer: %w", err))
		}
	}
	cur += delta
	if err := setTx(tx, key, []byte(strconv.FormatInt(cur, 10)), 0); err != nil {
		return 0, err
	}
	return cur, nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(key string) ([]byte, bool, error) { return getTx(s.db, key) }

// Set implements Store.Set.
func (s *SQLiteStore) Set(key string, value []byte, ttl time.Duration) error {
	return setTx(s.db, key, value, ttl)
}

// Delete implements Store.Delete.
func (s *SQLiteStore) Delete(key string) (bool, error) { return deleteTx(s.db, key) }

// Exists implements Store.Exists.
func (s *SQLiteStore) Exists(key string) (bool, error) {
	_, ok, err := getTx(s.db, key)
	if err != nil || ok {
		return ok, err
	}
	var count int64
	if err := s.db.Model(&listRow{}).Where("list_key = ?", key).Count(&count).Error; err != nil {
		return false, store.Failure("exists", key, err)
	}
	return count > 0, nil
}

// LRange implements Store.LRange.
func (s *SQLiteStore) LRange(key string, start, end int64) ([]string, error) {
	return lrangeTx(s.db, key, start, end)
}

// LIndex implements Store.LIndex.
func (s *SQLiteStore) LIndex(key string, index int64) (string, bool, error) {
	return lindexTx(s.db, key, index)
}

// LRem implements Store.LRem.
func (s *SQLiteStore) LRem(key string, count int64, value string) (int64, error) {
	var n int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = lremTx(tx, key, count, value)
		return err
	})
	return n, err
}

// RPush implements Store.RPush.
func (s *SQLiteStore) RPush(key string, values ...string) (int64, error) {
	var n int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = rpushTx(tx, key, values...)
		return err
	})
	return n, err
}

// Incr implements Store.Incr.
func (s *SQLiteStore) Incr(key string) (int64, error) {
	var n int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = addTx(tx, key, 1)
		return err
	})
	return n, err
}

// Decr implements Store.Decr.
func (s *SQLiteStore) Decr(key string) (int64, error) {
	var n int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = addTx(tx, key, -1)
		return err
	})
	return n, err
}

// Pipeline implements Store.Pipeline.
func (s *SQLiteStore) Pipeline() store.Pipeline {
	return &sqlitePipeline{store: s}
}

var _ store.Store = (*SQLiteStore)(nil)
