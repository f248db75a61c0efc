// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package utxostate implements the UTXO-set cache (component C):
// structurally identical to the account cache, but its trie's leaf value
// is a serialized VinSet rather than an account record.
package utxostate

import (
	"errors"

	lru "github.com/hashicorp/golang-lru"
	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/trie"
)

// ErrNotEnoughCash is returned by SubVins when fewer than the requested
// number of entries remain after the sentinel.
var ErrNotEnoughCash = errors.New("core/utxostate: not enough cash")

// hotCacheSize bounds the cross-block decoded-VinSet cache: unlike the
// per-block cache map (cleared on every CommitUTXO/Clear), this survives
// across blocks so a contract address touched every block doesn't pay the
// RLP-decode cost each time.
const hotCacheSize = 4096

type entry struct {
	vins  types.VinSet
	dirty bool
}

// UTXOCache is the trie-backed, lazily-populated cache mapping contract
// addresses to their ordered VinSet.
type UTXOCache struct {
	db       *trie.Database
	trie     *trie.SecureTrie
	cache    map[common.Address]*entry
	hotCache *lru.ARCCache
}

// New opens the UTXO cache rooted at root, sharing node storage with db
// (typically a distinct trie.Database instance from the account cache's,
// since the two tries' commits are coordinated but independent).
func New(root common.Hash, db *trie.Database) (*UTXOCache, error) {
	tr, err := trie.NewSecure(root, db)
	if err != nil {
		return nil, err
	}
	hot, err := lru.NewARC(hotCacheSize)
	if err != nil {
		return nil, err
	}
	return &UTXOCache{db: db, trie: tr, cache: make(map[common.Address]*entry), hotCache: hot}, nil
}

// EnsureCachedUTXO loads addr's VinSet from the trie into the cache if
// not already present. A genuinely absent address is left uncached
// (GetVins then reports an empty VinSet without fabricating an entry).
func (c *UTXOCache) EnsureCachedUTXO(addr common.Address) (*entry, error) {
	if e, ok := c.cache[addr]; ok {
		return e, nil
	}
	if v, ok := c.hotCache.Get(addr); ok {
		e := &entry{vins: v.(types.VinSet).Clone()}
		c.cache[addr] = e
		return e, nil
	}
	enc, err := c.trie.TryGet(addr.Bytes())
	if err != nil {
		return nil, err
	}
	if len(enc) == 0 {
		return nil, nil
	}
	vs, err := types.DecodeVinSet(enc)
	if err != nil {
		return nil, err
	}
	e := &entry{vins: vs}
	c.cache[addr] = e
	c.hotCache.Add(addr, vs.Clone())
	return e, nil
}

// GetVins returns addr's VinSet, or an empty one if absent.
func (c *UTXOCache) GetVins(addr common.Address) (types.VinSet, error) {
	e, err := c.EnsureCachedUTXO(addr)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}
	return e.vins, nil
}

// SetVins replaces addr's VinSet wholesale.
func (c *UTXOCache) SetVins(addr common.Address, vs types.VinSet) error {
	e, err := c.EnsureCachedUTXO(addr)
	if err != nil {
		return err
	}
	if e == nil {
		e = &entry{}
		c.cache[addr] = e
	}
	e.vins = vs
	e.dirty = true
	return nil
}

// AddVin appends one (outpoint, amount) entry to addr's VinSet.
func (c *UTXOCache) AddVin(addr common.Address, v types.VinEntry) error {
	e, err := c.EnsureCachedUTXO(addr)
	if err != nil {
		return err
	}
	if e == nil {
		e = &entry{}
		c.cache[addr] = e
	}
	e.vins = append(e.vins, v)
	e.dirty = true
	return nil
}

// AddVins appends every entry of vs to addr's VinSet, in order.
func (c *UTXOCache) AddVins(addr common.Address, vs types.VinSet) error {
	e, err := c.EnsureCachedUTXO(addr)
	if err != nil {
		return err
	}
	if e == nil {
		e = &entry{}
		c.cache[addr] = e
	}
	e.vins = append(e.vins, vs...)
	e.dirty = true
	return nil
}

// SubVins removes n entries from addr's VinSet, always erasing at index
// 1 (n times in a row) so the index-0 identity sentinel is preserved
// regardless of each removed entry's amount. Fails with ErrNotEnoughCash
// if addr is absent or holds fewer than n removable entries.
func (c *UTXOCache) SubVins(addr common.Address, n int) error {
	e, err := c.EnsureCachedUTXO(addr)
	if err != nil {
		return err
	}
	if e == nil || len(e.vins) < n {
		return ErrNotEnoughCash
	}
	for i := 0; i < n; i++ {
		if len(e.vins) < 2 {
			return ErrNotEnoughCash
		}
		e.vins = append(e.vins[:1], e.vins[2:]...)
	}
	e.dirty = true
	return nil
}

// VinsInUse reports whether addr has any cached or trie-resident VinSet.
func (c *UTXOCache) VinsInUse(addr common.Address) (bool, error) {
	e, err := c.EnsureCachedUTXO(addr)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// SelectOutputs walks addr's VinSet starting at index 1, accumulating
// amounts until the running sum is at least value, and returns the
// selected prefix plus the accumulated sum.
func SelectOutputs(vins types.VinSet, value int64) (selected types.VinSet, sum int64) {
	for i := 1; i < len(vins); i++ {
		sum += vins[i].Amount
		selected = append(selected, vins[i])
		if value <= sum {
			break
		}
	}
	return selected, sum
}

// CommitUTXO flushes every dirty entry to the UTXO trie: an address that
// isAlive reports false for (its owning account died this block) is
// removed outright; every other dirty address gets its VinSet
// RLP-serialized and written. It returns every address touched and the
// new UTXO-trie root, then clears the cache for the next block.
func (c *UTXOCache) CommitUTXO(isAlive func(common.Address) bool) (map[common.Address]struct{}, common.Hash, error) {
	touched := make(map[common.Address]struct{})
	for addr, e := range c.cache {
		if !e.dirty {
			continue
		}
		touched[addr] = struct{}{}
		if !isAlive(addr) {
			if err := c.trie.TryDelete(addr.Bytes()); err != nil {
				return nil, common.Hash{}, err
			}
			c.hotCache.Remove(addr)
			continue
		}
		enc, err := types.EncodeVinSet(e.vins)
		if err != nil {
			return nil, common.Hash{}, err
		}
		if err := c.trie.TryUpdate(addr.Bytes(), enc); err != nil {
			return nil, common.Hash{}, err
		}
		c.hotCache.Add(addr, e.vins.Clone())
	}
	root, err := c.trie.Commit()
	if err != nil {
		return nil, common.Hash{}, err
	}
	if err := c.db.Commit(); err != nil {
		return nil, common.Hash{}, err
	}
	c.cache = make(map[common.Address]*entry)
	return touched, root, nil
}

// Clear discards every cached entry without committing.
func (c *UTXOCache) Clear() {
	c.cache = make(map[common.Address]*entry)
}

// Evict drops addr's cache entry outright, discarding any uncommitted
// mutation without touching the trie. The executive does not call it:
// dead addresses leave the UTXO trie through CommitUTXO.
func (c *UTXOCache) Evict(addr common.Address) {
	delete(c.cache, addr)
	c.hotCache.Remove(addr)
}

// Root returns the UTXO trie's current root hash without committing.
func (c *UTXOCache) Root() common.Hash {
	return c.trie.Hash()
}

// SetRoot rebases the cache onto a different UTXO-trie root, the UTXO-side
// half of a reorg rewind. Any cached entries are discarded first.
func (c *UTXOCache) SetRoot(root common.Hash) error {
	tr, err := trie.NewSecure(root, c.db)
	if err != nil {
		return err
	}
	c.trie = tr
	c.cache = make(map[common.Address]*entry)
	c.hotCache.Purge()
	return nil
}

// VerifyIntegrity walks every node reachable from the current root,
// reporting trie.ErrInvalidTrie on the first dangling reference. Run it
// right after SetRoot.
func (c *UTXOCache) VerifyIntegrity() error {
	return c.trie.VerifyIntegrity()
}
