// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package state

import (
	"errors"
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/crypto"
	"github.com/qtum-network/gqtum/log"
	"github.com/qtum-network/gqtum/trie"
)

// codeCacheSize bounds the cross-block code-blob cache: code is
// content-addressed and immutable, so unlike the per-block object map it
// is safe to keep warm across the cache's per-block Commit/Clear cycle.
const codeCacheSize = 4096

// ErrNotEnoughCash is returned by SubBalance when the account cannot
// cover the requested debit.
var ErrNotEnoughCash = errors.New("core/state: not enough cash")

// CodeStore is the narrow code-blob persistence surface the account
// cache needs: keyed by code hash, content-addressed like a trie node.
type CodeStore interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
}

// AccountCache is the lazily-populated, trie-backed view of every
// account touched within a block (component B). It wraps a single
// Merkle-Patricia trie (the account trie) plus a per-account storage
// trie opened on demand, with a write-buffering overlay that only
// reaches the trie on Commit.
type AccountCache struct {
	db         *trie.Database
	accTrie    *trie.SecureTrie
	codeStore  CodeStore
	startNonce uint64

	objects map[common.Address]*stateObject
	touched map[common.Address]struct{}

	codeCache *lru.ARCCache

	log log.Logger
}

// New opens the account cache rooted at root, using db as the node store
// for both the account trie and every per-account storage trie, and
// codeStore for code blobs keyed by hash.
func New(root common.Hash, db *trie.Database, codeStore CodeStore, startNonce uint64) (*AccountCache, error) {
	tr, err := trie.NewSecure(root, db)
	if err != nil {
		return nil, err
	}
	codeCache, err := lru.NewARC(codeCacheSize)
	if err != nil {
		return nil, err
	}
	return &AccountCache{
		db:         db,
		accTrie:    tr,
		codeStore:  codeStore,
		startNonce: startNonce,
		objects:    make(map[common.Address]*stateObject),
		touched:    make(map[common.Address]struct{}),
		codeCache:  codeCache,
		log:        log.New("pkg", "core/state"),
	}, nil
}

// EnsureCached guarantees addr has a live entry in the cache. If absent
// from the trie and forceCreate is false, it is simply left absent
// (lookups then report the zero value). If requireCode is set, the
// account's code is loaded into its cache as a side effect.
func (c *AccountCache) EnsureCached(addr common.Address, requireCode, forceCreate bool) (*stateObject, error) {
	if obj, ok := c.objects[addr]; ok {
		if requireCode {
			if err := c.loadCode(obj); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	enc, err := c.accTrie.TryGet(addr.Bytes())
	if err != nil {
		return nil, err
	}
	var obj *stateObject
	if len(enc) == 0 {
		if !forceCreate {
			return nil, nil
		}
		obj = newStateObject(addr, *types.NewEmptyAccount(c.startNonce, trie.EmptyRoot, crypto.EmptySHA3), NormalCreation)
	} else {
		acc, err := types.DecodeAccount(enc)
		if err != nil {
			return nil, err
		}
		obj = newStateObject(addr, *acc, Unchanged)
	}
	c.objects[addr] = obj
	if requireCode {
		if err := c.loadCode(obj); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (c *AccountCache) loadCode(obj *stateObject) error {
	if obj.flag == FreshCode || obj.code != nil {
		return nil
	}
	if common.BytesToHash(obj.data.CodeHash) == crypto.EmptySHA3 {
		obj.code = []byte{}
		return nil
	}
	if v, ok := c.codeCache.Get(string(obj.data.CodeHash)); ok {
		obj.code = v.([]byte)
		return nil
	}
	code, err := c.codeStore.Get(obj.data.CodeHash)
	if err != nil {
		return err
	}
	c.codeCache.Add(string(obj.data.CodeHash), code)
	obj.code = code
	return nil
}

// Balance returns addr's balance, or zero if the account doesn't exist.
func (c *AccountCache) Balance(addr common.Address) (*big.Int, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return new(big.Int), nil
	}
	return obj.data.Balance, nil
}

// Nonce returns addr's nonce, or zero if the account doesn't exist.
func (c *AccountCache) Nonce(addr common.Address) (uint64, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return obj.data.Nonce, nil
}

// Code returns addr's bytecode, loading it on first access.
func (c *AccountCache) Code(addr common.Address) ([]byte, error) {
	obj, err := c.EnsureCached(addr, true, false)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.code, nil
}

// CodeHash returns addr's code hash, EmptySHA3 if the account has no code.
func (c *AccountCache) CodeHash(addr common.Address) (common.Hash, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return common.Hash{}, err
	}
	if obj == nil {
		return crypto.EmptySHA3, nil
	}
	return common.BytesToHash(obj.data.CodeHash), nil
}

// StorageRoot returns addr's storage-trie root.
func (c *AccountCache) StorageRoot(addr common.Address) (common.Hash, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return common.Hash{}, err
	}
	if obj == nil {
		return trie.EmptyRoot, nil
	}
	return obj.data.StorageRoot, nil
}

// Addresses enumerates every address with a live entry: all cached
// objects not scheduled for erasure, plus every trie-resident key whose
// preimage this process has seen (via its own writes or a seeded
// preimage table).
func (c *AccountCache) Addresses() ([]common.Address, error) {
	seen := make(map[common.Address]struct{})
	for addr, obj := range c.objects {
		if obj.flag != Dead {
			seen[addr] = struct{}{}
		}
	}
	it := c.accTrie.NodeIterator(nil)
	for it.Next() {
		if key := c.accTrie.GetKey(it.Key); key != nil {
			seen[common.BytesToAddress(key)] = struct{}{}
		}
	}
	if it.Err != nil {
		return nil, it.Err
	}
	out := make([]common.Address, 0, len(seen))
	for addr := range seen {
		out = append(out, addr)
	}
	return out, nil
}

// Preimages exposes the account trie's hash->address side table, for
// callers persisting preimages (rawdb.WritePreimages) so Addresses keeps
// working across restarts.
func (c *AccountCache) Preimages() map[common.Hash][]byte {
	return c.accTrie.Preimages()
}

// SeedPreimages installs persisted hash->address preimages, typically
// read back through rawdb.ReadPreimage on startup.
func (c *AccountCache) SeedPreimages(preimages map[common.Hash][]byte) {
	c.accTrie.SetPreimages(preimages)
}

// AddressInUse reports whether addr has a cached or trie-resident entry.
func (c *AccountCache) AddressInUse(addr common.Address) (bool, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return false, err
	}
	return obj != nil, nil
}

// AddressHasCode reports whether addr's code hash differs from the empty
// sentinel (or it has freshly-installed code pending commit).
func (c *AccountCache) AddressHasCode(addr common.Address) (bool, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return false, err
	}
	if obj == nil {
		return false, nil
	}
	return obj.flag == FreshCode || common.BytesToHash(obj.data.CodeHash) != crypto.EmptySHA3, nil
}

// AddBalance credits addr with v, materializing the account with
// NormalCreation state if it didn't already exist.
func (c *AccountCache) AddBalance(addr common.Address, v *big.Int) error {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return err
	}
	if obj == nil {
		if err := types.CheckUint256(v); err != nil {
			return err
		}
		obj = newStateObject(addr, *types.NewEmptyAccount(c.startNonce, trie.EmptyRoot, crypto.EmptySHA3), NormalCreation)
		obj.setBalance(new(big.Int).Set(v))
		c.objects[addr] = obj
		return nil
	}
	next := new(big.Int).Add(obj.data.Balance, v)
	if err := types.CheckUint256(next); err != nil {
		return err
	}
	obj.markDirty()
	obj.setBalance(next)
	return nil
}

// SubBalance debits addr by v, failing with ErrNotEnoughCash if the
// account is absent or underfunded.
func (c *AccountCache) SubBalance(addr common.Address, v *big.Int) error {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return err
	}
	if obj == nil || obj.data.Balance.Cmp(v) < 0 {
		return ErrNotEnoughCash
	}
	obj.markDirty()
	obj.setBalance(new(big.Int).Sub(obj.data.Balance, v))
	return nil
}

// NoteSending increments addr's nonce. If addr somehow doesn't exist
// (defensive: this should be impossible, since a transaction's sender
// must already have paid for gas on-chain), a placeholder account is
// installed with nonce = start_nonce + 1 and a warning is logged.
func (c *AccountCache) NoteSending(addr common.Address) error {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return err
	}
	if obj == nil {
		c.log.Warn("Sending from non-existent account, how did it pay gas?", "address", addr)
		obj = newStateObject(addr, *types.NewEmptyAccount(c.startNonce+1, trie.EmptyRoot, crypto.EmptySHA3), NormalCreation)
		c.objects[addr] = obj
		return nil
	}
	obj.markDirty()
	obj.data.Nonce++
	return nil
}

// NewContract allocates a fresh, collision-free random address, installs
// code under it, and returns the address. The account is created with
// Changed state carrying the given starting balance.
func (c *AccountCache) NewContract(balance *big.Int, code []byte) (common.Address, error) {
	codeHash := crypto.Keccak256Hash(code)
	if err := c.codeStore.Put(codeHash.Bytes(), code); err != nil {
		return common.Address{}, err
	}
	c.codeCache.Add(string(codeHash.Bytes()), code)
	for {
		addr, err := common.RandomAddress()
		if err != nil {
			return common.Address{}, err
		}
		existing, err := c.EnsureCached(addr, false, false)
		if err != nil {
			return common.Address{}, err
		}
		if existing != nil {
			continue
		}
		obj := newStateObject(addr, types.StateAccount{
			Nonce:       c.startNonce,
			Balance:     new(big.Int).Set(balance),
			StorageRoot: trie.EmptyRoot,
			CodeHash:    codeHash.Bytes(),
		}, Changed)
		obj.code = code
		c.objects[addr] = obj
		return addr, nil
	}
}

// SetCode installs code under addr, materializing the account if absent.
// The VM's creation path reaches it through vm.StateDB.SetCode to install
// a new contract's code; it also (re)installs code under an existing
// address.
func (c *AccountCache) SetCode(addr common.Address, code []byte) error {
	obj, err := c.EnsureCached(addr, false, true)
	if err != nil {
		return err
	}
	obj.markDirty()
	obj.flag = FreshCode
	obj.data.CodeHash = crypto.Keccak256Hash(code).Bytes()
	obj.code = code
	return nil
}

// GetState reads one storage slot of addr: the overlay first, falling
// back to (and memoizing from) the account's storage trie.
func (c *AccountCache) GetState(addr common.Address, key common.Hash) (common.Hash, error) {
	obj, err := c.EnsureCached(addr, false, false)
	if err != nil {
		return common.Hash{}, err
	}
	if obj == nil {
		return common.Hash{}, nil
	}
	if v, ok := obj.storageOverlay[key]; ok {
		return v, nil
	}
	st, err := c.openStorageTrie(obj)
	if err != nil {
		return common.Hash{}, err
	}
	enc, err := st.TryGet(key.Bytes())
	if err != nil {
		return common.Hash{}, err
	}
	var v common.Hash
	if len(enc) > 0 {
		v = common.BytesToHash(enc)
	}
	obj.storageOverlay[key] = v
	return v, nil
}

// SetState stages a pending write to one storage slot of addr, applied to
// the storage trie only on Commit.
func (c *AccountCache) SetState(addr common.Address, key, value common.Hash) error {
	obj, err := c.EnsureCached(addr, false, true)
	if err != nil {
		return err
	}
	obj.markDirty()
	obj.storageOverlay[key] = value
	return nil
}

// MarkDead flags addr for erasure from the trie on the next Commit.
func (c *AccountCache) MarkDead(addr common.Address) {
	if obj, ok := c.objects[addr]; ok {
		obj.flag = Dead
	}
}

// Evict drops addr's cache entry outright, discarding any uncommitted
// mutation without touching the trie. This is the executive's post-call
// purge of the sender and block author: their balance field is only ever
// a transient, VM-visible re-credit of value already settled on-chain via
// the UTXO layer, so discarding it is correct rather than lossy; the next
// transaction simply re-derives it.
func (c *AccountCache) Evict(addr common.Address) {
	delete(c.objects, addr)
}

// Root returns the account trie's current root hash without committing.
func (c *AccountCache) Root() common.Hash {
	return c.accTrie.Hash()
}

// SetRoot rebases the cache onto a different account-trie root — an O(1)
// pivot used to rewind to a prior block's recorded root on reorg. Any
// cached objects are discarded first; the caller should run
// VerifyIntegrity immediately afterward.
func (c *AccountCache) SetRoot(root common.Hash) error {
	tr, err := trie.NewSecure(root, c.db)
	if err != nil {
		return err
	}
	c.accTrie = tr
	c.objects = make(map[common.Address]*stateObject)
	return nil
}

// VerifyIntegrity walks every node reachable from the current root,
// reporting trie.ErrInvalidTrie on the first dangling reference. Run it
// right after SetRoot.
func (c *AccountCache) VerifyIntegrity() error {
	return c.accTrie.VerifyIntegrity()
}

func (c *AccountCache) openStorageTrie(obj *stateObject) (storageTrie, error) {
	if obj.storageTrie != nil {
		return obj.storageTrie, nil
	}
	st, err := trie.NewSecure(obj.data.StorageRoot, c.db)
	if err != nil {
		return nil, err
	}
	obj.storageTrie = st
	return st, nil
}

// Commit flushes every dirty entry to the account trie: Dead accounts are
// removed, everything else is re-encoded with its storage overlay
// drained into its storage trie first. It returns every address touched
// this block and the new account-trie root, then clears the cache for
// the next block.
func (c *AccountCache) Commit() (map[common.Address]struct{}, common.Hash, error) {
	touched := make(map[common.Address]struct{})
	for addr, obj := range c.objects {
		if obj.flag == Unchanged {
			continue
		}
		touched[addr] = struct{}{}
		if obj.flag == Dead {
			if err := c.accTrie.TryDelete(addr.Bytes()); err != nil {
				return nil, common.Hash{}, err
			}
			continue
		}
		if len(obj.storageOverlay) > 0 {
			st, err := c.openStorageTrie(obj)
			if err != nil {
				return nil, common.Hash{}, err
			}
			for k, v := range obj.storageOverlay {
				if v == (common.Hash{}) {
					if err := st.TryDelete(k.Bytes()); err != nil {
						return nil, common.Hash{}, err
					}
					continue
				}
				if err := st.TryUpdate(k.Bytes(), common.CopyBytes(v.Bytes())); err != nil {
					return nil, common.Hash{}, err
				}
			}
			newRoot, err := st.Commit()
			if err != nil {
				return nil, common.Hash{}, err
			}
			obj.data.StorageRoot = newRoot
			obj.storageOverlay = make(map[common.Hash]common.Hash)
		}
		if obj.flag == FreshCode || obj.flag == NormalCreation {
			if len(obj.code) > 0 {
				if err := c.codeStore.Put(obj.data.CodeHash, obj.code); err != nil {
					return nil, common.Hash{}, err
				}
				c.codeCache.Add(string(obj.data.CodeHash), obj.code)
			}
		}
		enc, err := types.EncodeAccount(&obj.data)
		if err != nil {
			return nil, common.Hash{}, err
		}
		if err := c.accTrie.TryUpdate(addr.Bytes(), enc); err != nil {
			return nil, common.Hash{}, err
		}
	}
	root, err := c.accTrie.Commit()
	if err != nil {
		return nil, common.Hash{}, err
	}
	if err := c.db.Commit(); err != nil {
		return nil, common.Hash{}, err
	}
	for addr := range touched {
		c.touched[addr] = struct{}{}
	}
	c.objects = make(map[common.Address]*stateObject)
	return touched, root, nil
}

// Clear discards every cached object without committing, as required on
// Permanence::Reverted or on InvalidTrie abort.
func (c *AccountCache) Clear() {
	c.objects = make(map[common.Address]*stateObject)
}
