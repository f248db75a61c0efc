// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package core

import (
	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/state"
	"github.com/qtum-network/gqtum/core/utxostate"
	"github.com/qtum-network/gqtum/trie"
)

// State is the coordinated pair of tries at the heart of the engine: the
// account cache and the UTXO-set cache, each over its own trie.Database,
// committed or cleared together so a block is only ever considered
// applied once both roots have landed.
type State struct {
	Accounts *state.AccountCache
	Vins     *utxostate.UTXOCache

	accDB  *trie.Database
	utxoDB *trie.Database
}

// New opens a State rooted at (stateRoot, utxoRoot): stateRoot/accDB back
// the account trie (and every per-account storage trie), utxoRoot/utxoDB
// back the UTXO trie. accDB and utxoDB are ordinarily distinct
// trie.Database instances so the two tries share neither keyspace nor
// overlay.
func New(stateRoot, utxoRoot common.Hash, accDB, utxoDB *trie.Database, codeStore state.CodeStore, startNonce uint64) (*State, error) {
	accounts, err := state.New(stateRoot, accDB, codeStore, startNonce)
	if err != nil {
		return nil, err
	}
	vins, err := utxostate.New(utxoRoot, utxoDB)
	if err != nil {
		return nil, err
	}
	return &State{Accounts: accounts, Vins: vins, accDB: accDB, utxoDB: utxoDB}, nil
}

// Roots returns the current (uncommitted) account-trie and UTXO-trie root
// hashes.
func (s *State) Roots() (stateRoot, utxoRoot common.Hash) {
	return s.Accounts.Root(), s.Vins.Root()
}

// SetRoot rewinds both tries to a prior block's recorded (stateRoot,
// utxoRoot) pair in one step, the reorg primitive, and verifies the
// structural integrity of both before any further reads.
func (s *State) SetRoot(stateRoot, utxoRoot common.Hash) error {
	if err := s.Accounts.SetRoot(stateRoot); err != nil {
		return err
	}
	if err := s.Vins.SetRoot(utxoRoot); err != nil {
		return err
	}
	if err := s.Accounts.VerifyIntegrity(); err != nil {
		return err
	}
	return s.Vins.VerifyIntegrity()
}

// CommitAll flushes the account cache to its trie, then the UTXO cache to
// its trie (an address the account commit erased is treated as dead for
// the UTXO commit too), and returns the new (stateRoot, utxoRoot) pair.
// Each underlying trie.Database.Commit writes through KV-backend batches
// (a single batch unless its staged nodes pass 16 MiB), so a failure on the second trie's commit cannot leave the
// account trie's batch partially applied; block-level atomicity across
// the two commits is the caller's responsibility (advance the canonical
// head only after both roots are returned).
func (s *State) CommitAll() (stateRoot, utxoRoot common.Hash, err error) {
	_, stateRoot, err = s.Accounts.Commit()
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	isAlive := func(addr common.Address) bool {
		inUse, _ := s.Accounts.AddressInUse(addr)
		return inUse
	}
	_, utxoRoot, err = s.Vins.CommitUTXO(isAlive)
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	return stateRoot, utxoRoot, nil
}

// Clear discards every cached mutation in both caches without committing,
// required on Permanence::Reverted or on a block-fatal abort.
func (s *State) Clear() {
	s.Accounts.Clear()
	s.Vins.Clear()
}
