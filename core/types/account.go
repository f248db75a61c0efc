// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import (
	"math/big"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/rlp"
)

// StateAccount is the consensus representation of one account as it is
// persisted in the account trie: the RLP 4-tuple (nonce, balance,
// storage_root, code_hash). Everything else an account carries at
// runtime — the code cache, the pending storage overlay, the dirty-state
// flag — lives only in the account cache's in-memory object.
type StateAccount struct {
	Nonce       uint64
	Balance     *big.Int
	StorageRoot common.Hash
	CodeHash    []byte
}

// NewEmptyAccount returns the zero-valued account record installed for a
// freshly created address: zero nonce, zero balance, the empty storage
// trie root, and the empty-code-hash sentinel.
func NewEmptyAccount(startNonce uint64, emptyRoot, emptyCodeHash common.Hash) *StateAccount {
	return &StateAccount{
		Nonce:       startNonce,
		Balance:     new(big.Int),
		StorageRoot: emptyRoot,
		CodeHash:    emptyCodeHash.Bytes(),
	}
}

// EncodeAccount RLP-encodes the account's 4-tuple for storage in the
// account trie.
func EncodeAccount(a *StateAccount) ([]byte, error) {
	return rlp.EncodeToBytes(a)
}

// DecodeAccount is the inverse of EncodeAccount.
func DecodeAccount(data []byte) (*StateAccount, error) {
	a := new(StateAccount)
	if err := rlp.DecodeBytes(data, a); err != nil {
		return nil, err
	}
	return a, nil
}
