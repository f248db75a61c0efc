// Copyright 2018 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package memorydb implements an in-memory key-value store, useful mostly
// for testing and for the genesis commit before a persistent backend is
// opened.
package memorydb

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/qtum-network/gqtum/qtumdb"
)

// ErrMemorydbClosed is returned when an operation hits a closed database.
var ErrMemorydbClosed = errors.New("qtumdb/memorydb: database closed")

// ErrMemorydbNotFound is returned when a key is not present.
var ErrMemorydbNotFound = errors.New("qtumdb/memorydb: not found")

// Database is an ephemeral key-value store backed by a Go map.
type Database struct {
	lock sync.RWMutex
	db   map[string][]byte
}

// New returns a new, empty in-memory database.
func New() *Database {
	return &Database{db: make(map[string][]byte)}
}

// NewWithCap returns a new, empty in-memory database pre-allocated with
// the given capacity hint.
func NewWithCap(size int) *Database {
	return &Database{db: make(map[string][]byte, size)}
}

func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.db = nil
	return nil
}

func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.db == nil {
		return false, ErrMemorydbClosed
	}
	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.db == nil {
		return nil, ErrMemorydbClosed
	}
	if v, ok := db.db[string(key)]; ok {
		return qtumdbCopy(v), nil
	}
	return nil, ErrMemorydbNotFound
}

func (db *Database) Put(key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.db == nil {
		return ErrMemorydbClosed
	}
	db.db[string(key)] = qtumdbCopy(value)
	return nil
}

func (db *Database) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.db == nil {
		return ErrMemorydbClosed
	}
	delete(db.db, string(key))
	return nil
}

func (db *Database) Stat(property string) (string, error) {
	return "", errors.New("qtumdb/memorydb: unknown property")
}

func (db *Database) Compact(start []byte, limit []byte) error { return nil }

func (db *Database) NewBatch() qtumdb.Batch { return &batch{db: db} }

// NewSnapshot copies the whole map; acceptable for the in-memory store's
// test-sized data sets.
func (db *Database) NewSnapshot() (qtumdb.Snapshot, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.db == nil {
		return nil, ErrMemorydbClosed
	}
	cp := make(map[string][]byte, len(db.db))
	for k, v := range db.db {
		cp[k] = v
	}
	return &snapshot{db: cp}, nil
}

type snapshot struct {
	db map[string][]byte
}

func (s *snapshot) Has(key []byte) (bool, error) {
	_, ok := s.db[string(key)]
	return ok, nil
}

func (s *snapshot) Get(key []byte) ([]byte, error) {
	if v, ok := s.db[string(key)]; ok {
		return qtumdbCopy(v), nil
	}
	return nil, ErrMemorydbNotFound
}

func (s *snapshot) Release() { s.db = nil }

func (db *Database) Len() int {
	db.lock.RLock()
	defer db.lock.RUnlock()
	return len(db.db)
}

func (db *Database) NewIterator(prefix []byte, start []byte) qtumdb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	var keys []string
	for key := range db.db {
		if !strings.HasPrefix(key, string(prefix)) {
			continue
		}
		if key[len(prefix):] < string(start) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, key := range keys {
		values[i] = db.db[key]
	}
	return &iterator{keys: keys, values: values}
}

func qtumdbCopy(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

type iterator struct {
	idx    int
	keys   []string
	values [][]byte
}

func (it *iterator) Next() bool {
	if it.idx < len(it.keys) {
		it.idx++
		return true
	}
	return false
}

func (it *iterator) Error() error { return nil }

func (it *iterator) Key() []byte {
	if it.idx < 1 || it.idx > len(it.keys) {
		return nil
	}
	return []byte(it.keys[it.idx-1])
}

func (it *iterator) Value() []byte {
	if it.idx < 1 || it.idx > len(it.values) {
		return nil
	}
	return it.values[it.idx-1]
}

func (it *iterator) Release() {}

type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{qtumdbCopy(key), qtumdbCopy(value), false})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{qtumdbCopy(key), nil, true})
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int { return b.size }

func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	for _, kv := range b.writes {
		if kv.delete {
			delete(b.db.db, string(kv.key))
			continue
		}
		b.db.db[string(kv.key)] = kv.value
	}
	return nil
}

func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

func (b *batch) Replay(w qtumdb.KeyValueWriter) error {
	for _, kv := range b.writes {
		if kv.delete {
			if err := w.Delete(kv.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}
