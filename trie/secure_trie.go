// Copyright 2016 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package trie

import (
	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/crypto"
)

// SecureTrie wraps Trie, hashing every key with Keccak256 before it
// touches the underlying node tree. Both the account trie (keyed by
// address) and the UTXO trie (keyed by address, with outpoint-level data
// held in the leaf value) are accessed exclusively through this wrapper so
// that no adversary can choose a path that unbalances the tree.
type SecureTrie struct {
	trie             Trie
	preimages        map[common.Hash][]byte
	secKeyCache      map[common.Hash][]byte
}

// NewSecure opens a secure trie rooted at root in db.
func NewSecure(root common.Hash, db *Database) (*SecureTrie, error) {
	t, err := New(root, db)
	if err != nil {
		return nil, err
	}
	return &SecureTrie{trie: *t, preimages: make(map[common.Hash][]byte)}, nil
}

// Get returns the value for the plain (pre-hash) key.
func (t *SecureTrie) Get(key []byte) []byte {
	return t.trie.Get(t.hashKey(key))
}

// TryGet returns the value for the plain (pre-hash) key.
func (t *SecureTrie) TryGet(key []byte) ([]byte, error) {
	return t.trie.TryGet(t.hashKey(key))
}

// Update associates the plain key with value.
func (t *SecureTrie) Update(key, value []byte) {
	_ = t.TryUpdate(key, value)
}

// TryUpdate associates the plain key with value, recording the
// hash->preimage mapping so the key can later be recovered from an
// iterator that only sees hashed paths.
func (t *SecureTrie) TryUpdate(key, value []byte) error {
	hk := t.hashKey(key)
	err := t.trie.TryUpdate(hk, value)
	if err != nil {
		return err
	}
	t.getSecKeyCache()[common.BytesToHash(hk)] = common.CopyBytes(key)
	return nil
}

// Delete removes the plain key.
func (t *SecureTrie) Delete(key []byte) { _ = t.TryDelete(key) }

// TryDelete removes the plain key.
func (t *SecureTrie) TryDelete(key []byte) error {
	hk := t.hashKey(key)
	delete(t.getSecKeyCache(), common.BytesToHash(hk))
	return t.trie.TryDelete(hk)
}

// GetKey returns the plain key corresponding to a hashed key, if this
// process has seen it via TryUpdate.
func (t *SecureTrie) GetKey(shaKey []byte) []byte {
	if key, ok := t.getSecKeyCache()[common.BytesToHash(shaKey)]; ok {
		return key
	}
	return t.preimages[common.BytesToHash(shaKey)]
}

// Preimages returns every hash->plain-key pair recorded by TryUpdate so
// far, for callers that persist preimages alongside the trie.
func (t *SecureTrie) Preimages() map[common.Hash][]byte {
	out := make(map[common.Hash][]byte, len(t.secKeyCache)+len(t.preimages))
	for h, k := range t.preimages {
		out[h] = k
	}
	for h, k := range t.getSecKeyCache() {
		out[h] = k
	}
	return out
}

// SetPreimages seeds the hash->plain-key side table, typically from a
// persisted preimage store, so GetKey and key-space enumeration work
// after a restart.
func (t *SecureTrie) SetPreimages(preimages map[common.Hash][]byte) {
	for h, k := range preimages {
		t.preimages[h] = common.CopyBytes(k)
	}
}

// Commit writes all dirty nodes to the underlying Database overlay and
// returns the new root hash.
func (t *SecureTrie) Commit() (common.Hash, error) {
	return t.trie.Commit()
}

// Hash returns the current root hash without persisting.
func (t *SecureTrie) Hash() common.Hash { return t.trie.Hash() }

// VerifyIntegrity walks every node reachable from the current root,
// reporting ErrInvalidTrie if any is missing or malformed. Intended to
// run once right after re-opening the trie at a caller-supplied root.
func (t *SecureTrie) VerifyIntegrity() error { return t.trie.VerifyIntegrity() }

// NodeIterator walks the secure trie's hashed key space.
func (t *SecureTrie) NodeIterator(start []byte) *Iterator { return t.trie.NodeIterator(start) }

func (t *SecureTrie) hashKey(key []byte) []byte {
	h := crypto.Keccak256Hash(key)
	return h[:]
}

func (t *SecureTrie) getSecKeyCache() map[common.Hash][]byte {
	if t.secKeyCache == nil {
		t.secKeyCache = make(map[common.Hash][]byte)
	}
	return t.secKeyCache
}
