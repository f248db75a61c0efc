// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package state

import (
	"math/big"
	"testing"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/crypto"
	"github.com/qtum-network/gqtum/qtumdb/memorydb"
	"github.com/qtum-network/gqtum/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *AccountCache {
	t.Helper()
	db := trie.NewDatabase(memorydb.New())
	c, err := New(common.Hash{}, db, memorydb.New(), 0)
	require.NoError(t, err)
	return c
}

func TestAddSubBalance(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")

	require.NoError(t, c.AddBalance(addr, big.NewInt(100)))
	bal, err := c.Balance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), bal)

	require.NoError(t, c.SubBalance(addr, big.NewInt(40)))
	bal, err = c.Balance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), bal)
}

func TestSubBalanceInsufficientFunds(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")

	require.NoError(t, c.AddBalance(addr, big.NewInt(10)))
	err := c.SubBalance(addr, big.NewInt(50))
	assert.ErrorIs(t, err, ErrNotEnoughCash)
}

func TestNoteSendingIncrementsNonce(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")

	require.NoError(t, c.AddBalance(addr, big.NewInt(1)))
	require.NoError(t, c.NoteSending(addr))
	require.NoError(t, c.NoteSending(addr))

	nonce, err := c.Nonce(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)
}

func TestNewContractInstallsCode(t *testing.T) {
	c := newTestCache(t)
	code := []byte{0x60, 0x00, 0x60, 0x00}

	addr, err := c.NewContract(big.NewInt(500), code)
	require.NoError(t, err)

	gotCode, err := c.Code(addr)
	require.NoError(t, err)
	assert.Equal(t, code, gotCode)

	bal, err := c.Balance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), bal)

	inUse, err := c.AddressInUse(addr)
	require.NoError(t, err)
	assert.True(t, inUse)
}

func TestCommitReopenRoundTrip(t *testing.T) {
	db := trie.NewDatabase(memorydb.New())
	codeStore := memorydb.New()
	c, err := New(common.Hash{}, db, codeStore, 0)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, c.AddBalance(addr, big.NewInt(777)))

	_, root, err := c.Commit()
	require.NoError(t, err)
	require.NotEqual(t, trie.EmptyRoot, root)

	reopened, err := New(root, db, codeStore, 0)
	require.NoError(t, err)

	bal, err := reopened.Balance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(777), bal)
}

func TestSetRootVerifyIntegrity(t *testing.T) {
	db := trie.NewDatabase(memorydb.New())
	codeStore := memorydb.New()
	c, err := New(common.Hash{}, db, codeStore, 0)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, c.AddBalance(addr, big.NewInt(1)))
	_, root, err := c.Commit()
	require.NoError(t, err)

	require.NoError(t, c.SetRoot(root))
	assert.NoError(t, c.VerifyIntegrity())
}

func TestAddressesEnumeratesCommittedAccounts(t *testing.T) {
	c := newTestCache(t)
	a := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	b := common.HexToAddress("0x1415161718191a1b1c1d1e1f2021222324252627")

	require.NoError(t, c.AddBalance(a, big.NewInt(1)))
	require.NoError(t, c.AddBalance(b, big.NewInt(2)))
	_, _, err := c.Commit()
	require.NoError(t, err)

	addrs, err := c.Addresses()
	require.NoError(t, err)
	assert.ElementsMatch(t, []common.Address{a, b}, addrs)
}

func TestCodeHashMatchesCode(t *testing.T) {
	c := newTestCache(t)
	code := []byte{0x60, 0x01, 0x60, 0x02}

	addr, err := c.NewContract(big.NewInt(0), code)
	require.NoError(t, err)

	hash, err := c.CodeHash(addr)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(code), hash)

	hasCode, err := c.AddressHasCode(addr)
	require.NoError(t, err)
	assert.True(t, hasCode)
}

func TestStorageOverlayRoundTrip(t *testing.T) {
	db := trie.NewDatabase(memorydb.New())
	codeStore := memorydb.New()
	c, err := New(common.Hash{}, db, codeStore, 0)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	key := common.HexToHash("0x01")
	val := common.HexToHash("0xff")

	require.NoError(t, c.SetState(addr, key, val))
	got, err := c.GetState(addr, key)
	require.NoError(t, err)
	assert.Equal(t, val, got)

	_, root, err := c.Commit()
	require.NoError(t, err)

	reopened, err := New(root, db, codeStore, 0)
	require.NoError(t, err)
	got, err = reopened.GetState(addr, key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
}

func TestStorageZeroWriteErasesSlot(t *testing.T) {
	db := trie.NewDatabase(memorydb.New())
	codeStore := memorydb.New()
	c, err := New(common.Hash{}, db, codeStore, 0)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	key := common.HexToHash("0x01")

	require.NoError(t, c.SetState(addr, key, common.HexToHash("0xff")))
	_, _, err = c.Commit()
	require.NoError(t, err)

	require.NoError(t, c.SetState(addr, key, common.Hash{}))
	_, _, err = c.Commit()
	require.NoError(t, err)

	rootAfter, err := c.StorageRoot(addr)
	require.NoError(t, err)
	assert.Equal(t, trie.EmptyRoot, rootAfter)
}

func TestMarkDeadErasesAccountOnCommit(t *testing.T) {
	db := trie.NewDatabase(memorydb.New())
	codeStore := memorydb.New()
	c, err := New(common.Hash{}, db, codeStore, 0)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, c.AddBalance(addr, big.NewInt(10)))
	_, _, err = c.Commit()
	require.NoError(t, err)

	// Touch to re-cache, then schedule erasure.
	require.NoError(t, c.SubBalance(addr, big.NewInt(10)))
	c.MarkDead(addr)
	_, _, err = c.Commit()
	require.NoError(t, err)

	inUse, err := c.AddressInUse(addr)
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestEvictDiscardsUncommittedMutation(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")

	require.NoError(t, c.AddBalance(addr, big.NewInt(1000)))
	c.Evict(addr)

	bal, err := c.Balance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), bal)
}
