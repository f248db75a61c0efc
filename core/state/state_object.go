// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package state implements the account cache: the lazily-populated,
// trie-backed view of every account touched within a block, with a
// storage overlay that buffers pending slot writes until commit.
package state

import (
	"math/big"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
)

// Flag is the account cache's dirty-state classification, never itself
// persisted: it governs what Commit does with the entry, not what gets
// written to the trie.
type Flag int

const (
	// Unchanged accounts were only read this block; Commit must skip
	// them entirely.
	Unchanged Flag = iota
	// Changed accounts had balance/nonce/storage mutated in place.
	Changed
	// NormalCreation accounts did not exist before this block and were
	// materialized by a balance credit or a forced ensure_cached.
	NormalCreation
	// FreshCode accounts just had code installed (contract creation).
	FreshCode
	// Dead accounts must be erased from the trie on commit.
	Dead
)

func (f Flag) String() string {
	switch f {
	case Unchanged:
		return "Unchanged"
	case Changed:
		return "Changed"
	case NormalCreation:
		return "NormalCreation"
	case FreshCode:
		return "FreshCode"
	case Dead:
		return "Dead"
	default:
		return "Invalid"
	}
}

// stateObject is the in-memory, mutable view of one account: the
// persisted 4-tuple plus everything kept off the trie until commit
// (code cache, storage overlay, dirty flag).
type stateObject struct {
	address common.Address
	data    types.StateAccount

	code []byte // nil until code() has been called at least once

	storageOverlay map[common.Hash]common.Hash
	storageTrie    storageTrie // lazily opened against data.StorageRoot

	flag Flag
}

// storageTrie is the narrow slice of *trie.SecureTrie the account cache
// needs, kept as an interface so tests can swap in a fake.
type storageTrie interface {
	TryGet(key []byte) ([]byte, error)
	TryUpdate(key, value []byte) error
	TryDelete(key []byte) error
	Commit() (common.Hash, error)
}

func newStateObject(addr common.Address, data types.StateAccount, flag Flag) *stateObject {
	return &stateObject{
		address:        addr,
		data:           data,
		storageOverlay: make(map[common.Hash]common.Hash),
		flag:           flag,
	}
}

func (s *stateObject) empty() bool {
	return s.data.Nonce == 0 && s.data.Balance.Sign() == 0 && len(s.data.CodeHash) == 0
}

func (s *stateObject) setBalance(amount *big.Int) {
	s.data.Balance = amount
}

func (s *stateObject) markDirty() {
	if s.flag == Unchanged {
		s.flag = Changed
	}
}
