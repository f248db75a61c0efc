// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"math/big"
	"testing"

	"github.com/qtum-network/gqtum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStateDB is a minimal in-memory StateDB sufficient to drive SimpleVM
// in isolation, without pulling in core/state's trie machinery.
type fakeStateDB struct {
	balances map[common.Address]*big.Int
	codes    map[common.Address][]byte
	nonces   map[common.Address]uint64
	next     byte
}

func newFakeStateDB() *fakeStateDB {
	return &fakeStateDB{
		balances: make(map[common.Address]*big.Int),
		codes:    make(map[common.Address][]byte),
		nonces:   make(map[common.Address]uint64),
	}
}

func (f *fakeStateDB) GetBalance(addr common.Address) (*big.Int, error) {
	if b, ok := f.balances[addr]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

func (f *fakeStateDB) AddBalance(addr common.Address, amount *big.Int) error {
	cur, _ := f.GetBalance(addr)
	f.balances[addr] = new(big.Int).Add(cur, amount)
	return nil
}

func (f *fakeStateDB) SubBalance(addr common.Address, amount *big.Int) error {
	cur, _ := f.GetBalance(addr)
	f.balances[addr] = new(big.Int).Sub(cur, amount)
	return nil
}

func (f *fakeStateDB) GetNonce(addr common.Address) (uint64, error) { return f.nonces[addr], nil }

func (f *fakeStateDB) SetNonce(addr common.Address, nonce uint64) error {
	f.nonces[addr] = nonce
	return nil
}

func (f *fakeStateDB) GetCode(addr common.Address) ([]byte, error) { return f.codes[addr], nil }

func (f *fakeStateDB) GetCodeHash(addr common.Address) (common.Hash, error) {
	return common.Hash{}, nil
}

func (f *fakeStateDB) SetCode(addr common.Address, code []byte) error {
	f.codes[addr] = code
	return nil
}

func (f *fakeStateDB) GetState(addr common.Address, key common.Hash) (common.Hash, error) {
	return common.Hash{}, nil
}

func (f *fakeStateDB) SetState(addr common.Address, key, value common.Hash) error { return nil }

func (f *fakeStateDB) AddressInUse(addr common.Address) (bool, error) {
	_, ok := f.balances[addr]
	return ok, nil
}

func (f *fakeStateDB) NewContract(balance *big.Int, code []byte) (common.Address, error) {
	f.next++
	addr := common.BytesToAddress([]byte{f.next})
	f.balances[addr] = new(big.Int).Set(balance)
	f.codes[addr] = code
	return addr, nil
}

func (f *fakeStateDB) AddLog(l *Log) {}

func TestSimpleVMContractCreation(t *testing.T) {
	sdb := newFakeStateDB()
	seal := NewSealEngine()
	vm := NewSimpleVM()

	contractAddr := common.Address{7}
	call := Call{Origin: common.Address{1}, Receiver: contractAddr, Create: true, Value: big.NewInt(100), Gas: 100000, GasPrice: big.NewInt(1), Input: []byte{0xde, 0xad}}
	require.NoError(t, sdb.AddBalance(call.Origin, big.NewInt(100)))
	require.NoError(t, vm.Initialize(call, sdb))
	done, err := vm.Execute(call, sdb, seal)
	require.NoError(t, err)
	assert.True(t, done)

	assert.Equal(t, contractAddr, vm.NewAddress())
	code, err := sdb.GetCode(contractAddr)
	require.NoError(t, err)
	assert.Equal(t, call.Input, code)

	transfers := seal.PendingTransfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, big.NewInt(100), transfers[0].Value)
	assert.Equal(t, contractAddr, transfers[0].To)
}

func TestSimpleVMPlainTransfer(t *testing.T) {
	sdb := newFakeStateDB()
	seal := NewSealEngine()
	vm := NewSimpleVM()

	receiver := common.Address{9}
	call := Call{Origin: common.Address{1}, Receiver: receiver, Value: big.NewInt(50), Gas: 100000, GasPrice: big.NewInt(1)}
	require.NoError(t, vm.Initialize(call, sdb))
	done, err := vm.Execute(call, sdb, seal)
	require.NoError(t, err)
	assert.True(t, done)

	transfers := seal.PendingTransfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, receiver, transfers[0].To)
}

func TestSimpleVMSelfDestruct(t *testing.T) {
	sdb := newFakeStateDB()
	receiver := common.Address{9}
	target := common.Address{3}
	require.NoError(t, sdb.AddBalance(receiver, big.NewInt(42)))

	seal := NewSealEngine()
	vm := NewSimpleVM()

	input := append([]byte{byte(OpSelfDestruct)}, target.Bytes()...)
	call := Call{Origin: common.Address{1}, Receiver: receiver, Value: big.NewInt(0), Gas: 100000, GasPrice: big.NewInt(1), Input: input}
	require.NoError(t, vm.Initialize(call, sdb))
	done, err := vm.Execute(call, sdb, seal)
	require.NoError(t, err)
	require.False(t, done)
	require.NoError(t, vm.Go(sdb, seal))

	dead := seal.DeadAddresses()
	require.Len(t, dead, 1)
	assert.Equal(t, receiver, dead[0])

	transfers := seal.PendingTransfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, target, transfers[0].To)
	assert.Equal(t, big.NewInt(42), transfers[0].Value)
}

func TestSimpleVMInsufficientGasRejected(t *testing.T) {
	sdb := newFakeStateDB()
	vm := NewSimpleVM()
	call := Call{Gas: 10}
	assert.ErrorIs(t, vm.Initialize(call, sdb), ErrExecutionReverted)
}
