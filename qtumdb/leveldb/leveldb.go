// Copyright 2018 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package leveldb implements the qtumdb.KeyValueStore interfaces on top of
// syndtr/goleveldb, the persistent backend for the on-disk state directory.
package leveldb

import (
	"fmt"

	"github.com/qtum-network/gqtum/log"
	"github.com/qtum-network/gqtum/qtumdb"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Database is a persistent key-value store backed by a LevelDB instance.
type Database struct {
	fn string
	db *leveldb.DB
	log log.Logger
}

// New opens a LevelDB at file, creating it if it does not exist. cache and
// handles are sized in MiB / file-descriptor count respectively; zero
// selects conservative defaults.
func New(file string, cache int, handles int, namespace string, readonly bool) (*Database, error) {
	if cache < 16 {
		cache = 16
	}
	if handles < 16 {
		handles = 16
	}
	logger := log.New("database", namespace)
	logger.Info("Allocated cache and file handles", "cache", cache, "handles", handles)

	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		ReadOnly:               readonly,
	}
	db, err := leveldb.OpenFile(file, options)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{fn: file, db: db, log: logger}, nil
}

func (db *Database) Close() error { return db.db.Close() }

func (db *Database) Has(key []byte) (bool, error) { return db.db.Has(key, nil) }

func (db *Database) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(key, nil)
	if err != nil {
		return nil, err
	}
	return dat, nil
}

func (db *Database) Put(key []byte, value []byte) error { return db.db.Put(key, value, nil) }

func (db *Database) Delete(key []byte) error { return db.db.Delete(key, nil) }

func (db *Database) NewBatch() qtumdb.Batch { return &batch{db: db.db, b: new(leveldb.Batch)} }

// NewSnapshot exposes LevelDB's native point-in-time snapshot.
func (db *Database) NewSnapshot() (qtumdb.Snapshot, error) {
	snap, err := db.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &snapshot{snap: snap}, nil
}

type snapshot struct {
	snap *leveldb.Snapshot
}

func (s *snapshot) Has(key []byte) (bool, error) { return s.snap.Has(key, nil) }

func (s *snapshot) Get(key []byte) ([]byte, error) { return s.snap.Get(key, nil) }

func (s *snapshot) Release() { s.snap.Release() }

func (db *Database) NewIterator(prefix []byte, start []byte) qtumdb.Iterator {
	return db.db.NewIterator(bytesPrefixRange(prefix, start), nil)
}

func (db *Database) Stat(property string) (string, error) {
	if property == "" {
		property = "leveldb.stats"
	}
	return db.db.GetProperty(property)
}

func (db *Database) Compact(start []byte, limit []byte) error {
	return db.db.CompactRange(util.Range{Start: start, Limit: limit})
}

func (db *Database) Path() string { return db.fn }

func bytesPrefixRange(prefix, start []byte) *util.Range {
	r := util.BytesPrefix(prefix)
	r.Start = append(r.Start, start...)
	return r
}

type batch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int { return b.size }

func (b *batch) Write() error { return b.db.Write(b.b, nil) }

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

func (b *batch) Replay(w qtumdb.KeyValueWriter) error {
	return b.b.Replay(&replayer{writer: w})
}

type replayer struct {
	writer qtumdb.KeyValueWriter
	err    error
}

func (r *replayer) Put(key, value []byte) {
	if r.err != nil {
		return
	}
	r.err = r.writer.Put(key, value)
}

func (r *replayer) Delete(key []byte) {
	if r.err != nil {
		return
	}
	r.err = r.writer.Delete(key)
}

var _ fmt.Stringer = (*Database)(nil)

func (db *Database) String() string { return fmt.Sprintf("leveldb(%s)", db.fn) }
