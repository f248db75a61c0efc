// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package rawdb

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/qtumdb"
	"github.com/qtum-network/gqtum/qtumdb/leveldb"
)

// genesisPrefix renders the leading 4 bytes of a genesis hash the way
// every persisted path component below embeds it.
func genesisPrefix(genesisHash common.Hash) string {
	return hex.EncodeToString(genesisHash.Bytes()[:4])
}

// StatePath returns the on-disk directory the account trie's LevelDB
// instance lives in for the given data directory, network name, and
// genesis hash:
// <datadir>/<network>/state/<genesis-hash[:4]>/<version>/state/.
func StatePath(datadir, network string, genesisHash common.Hash) string {
	return filepath.Join(datadir, network, "state", genesisPrefix(genesisHash), fmt.Sprint(databaseVersion), "state")
}

// UTXOPath returns the on-disk directory the UTXO trie's LevelDB instance
// lives in, parallel to StatePath but rooted under qtumDB instead:
// <datadir>/<network>/qtumDB/state/<genesis-hash[:4]>/<version>/state/.
func UTXOPath(datadir, network string, genesisHash common.Hash) string {
	return filepath.Join(datadir, network, "qtumDB", "state", genesisPrefix(genesisHash), fmt.Sprint(databaseVersion), "state")
}

// OpenStateDB opens (creating if absent) the LevelDB instance backing
// one of the two tries at path, with cache/handles sized for a
// trie-heavy workload.
func OpenStateDB(path string, cache, handles int) (qtumdb.KeyValueStore, error) {
	return leveldb.New(path, cache, handles, "", false)
}

// CodeStore adapts a plain KeyValueStore into core/state.CodeStore by
// routing every code blob through the codePrefix namespace, so code
// blobs never collide with trie nodes sharing the same backing LevelDB
// instance.
type CodeStore struct {
	db qtumdb.KeyValueStore
}

// NewCodeStore wraps db so it satisfies core/state.CodeStore.
func NewCodeStore(db qtumdb.KeyValueStore) *CodeStore {
	return &CodeStore{db: db}
}

func (c *CodeStore) Get(key []byte) ([]byte, error) {
	return c.db.Get(append(append([]byte{}, codePrefix...), key...))
}

func (c *CodeStore) Put(key []byte, value []byte) error {
	return c.db.Put(append(append([]byte{}, codePrefix...), key...), value)
}
