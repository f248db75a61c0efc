// Copyright 2018 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package trie

import (
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/qtumdb"
)

// Database is the backing store for one trie: an overlay of nodes pending
// commit, a bounded clean-node cache for nodes already flushed, and the
// persistent key-value store underneath. Two Database instances, one for
// the account trie and one for the UTXO trie, sit side by side over the
// same (or separate) underlying disk stores.
type Database struct {
	diskdb qtumdb.KeyValueStore

	cleans *fastcache.Cache

	lock  sync.RWMutex
	dirty map[common.Hash][]byte
}

// cleanCacheBytes is the size of the in-memory clean-node cache; chosen to
// comfortably hold the hot working set of the account trie between
// commits without growing unbounded.
const cleanCacheBytes = 16 * 1024 * 1024

// NewDatabase wraps diskdb with a fresh dirty overlay and clean-node cache.
func NewDatabase(diskdb qtumdb.KeyValueStore) *Database {
	return &Database{
		diskdb: diskdb,
		cleans: fastcache.New(cleanCacheBytes),
		dirty:  make(map[common.Hash][]byte),
	}
}

// insert stages a freshly hashed node for the next Commit; it is not
// visible to disk-reading peers until committed.
func (db *Database) insert(hash common.Hash, blob []byte) {
	db.lock.Lock()
	defer db.lock.Unlock()
	cp := common.CopyBytes(blob)
	db.dirty[hash] = cp
	db.cleans.Set(hash.Bytes(), cp)
}

// Node retrieves an encoded node by its hash, checking the dirty overlay,
// then the clean cache, then falling back to disk.
func (db *Database) Node(hash common.Hash) ([]byte, error) {
	db.lock.RLock()
	if blob, ok := db.dirty[hash]; ok {
		db.lock.RUnlock()
		return blob, nil
	}
	db.lock.RUnlock()

	if blob, ok := db.cleans.HasGet(nil, hash.Bytes()); ok {
		return blob, nil
	}
	if db.diskdb == nil {
		return nil, &MissingNodeError{NodeHash: hash}
	}
	blob, err := db.diskdb.Get(hash.Bytes())
	if err != nil || len(blob) == 0 {
		return nil, &MissingNodeError{NodeHash: hash, err: err}
	}
	db.cleans.Set(hash.Bytes(), blob)
	return blob, nil
}

// Commit flushes every node staged since the last Commit to disk through
// batch writes, then clears the dirty overlay. The nodes go out in one
// batch unless their size passes 16 MiB; then each batch is written as
// soon as it passes that size, so a large commit lands in several writes. It is the trie-level
// analogue of the account/UTXO caches' own commit step.
func (db *Database) Commit() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.diskdb == nil {
		db.dirty = make(map[common.Hash][]byte)
		return nil
	}
	batch := db.diskdb.NewBatch()
	for hash, blob := range db.dirty {
		if err := batch.Put(hash.Bytes(), blob); err != nil {
			return err
		}
		if batch.ValueSize() > 16*1024*1024 {
			if err := batch.Write(); err != nil {
				return err
			}
			batch.Reset()
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	db.dirty = make(map[common.Hash][]byte)
	return nil
}

// Size reports the number of staged-but-uncommitted node bytes, used by
// callers deciding when to force an intermediate commit.
func (db *Database) Size() int {
	db.lock.RLock()
	defer db.lock.RUnlock()
	n := 0
	for _, v := range db.dirty {
		n += len(v)
	}
	return n
}
