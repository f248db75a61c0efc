// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package core

import (
	"math/big"
	"testing"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/core/vm"
	"github.com/qtum-network/gqtum/crypto"
	"github.com/qtum-network/gqtum/qtumdb/memorydb"
	"github.com/qtum-network/gqtum/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCommitReopenAgreesWithSnapshot applies a deposit and a contract
// creation, commits both tries, then opens a fresh State at the recorded
// root pair over the same backing stores and checks every balance and
// VinSet agrees with the pre-close view.
func TestCommitReopenAgreesWithSnapshot(t *testing.T) {
	accDB := trie.NewDatabase(memorydb.New())
	utxoDB := trie.NewDatabase(memorydb.New())
	codeStore := memorydb.New()
	s, err := New(common.Hash{}, common.Hash{}, accDB, utxoDB, codeStore, 0)
	require.NoError(t, err)
	exec := newTestExecutive(t, s)

	contractAddr := setupFundedContract(t, s, exec, 250)

	depositTo := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	depositHash := common.HexToHash("0x6666666666666666666666666666666666666666666666666666666666666f")
	deposit := types.NewTransaction(types.VersionDeposit, depositHash, 0, 0, common.Address{}, &depositTo, big.NewInt(123), 0, big.NewInt(0), nil)
	_, err = exec.Execute(EnvInfo{}, vm.NewSimpleVM(), deposit, Committed)
	require.NoError(t, err)

	stateRoot, utxoRoot := s.Roots()

	wantContractVins, err := s.Vins.GetVins(contractAddr)
	require.NoError(t, err)
	wantDepositVins, err := s.Vins.GetVins(depositTo)
	require.NoError(t, err)

	reopened, err := New(stateRoot, utxoRoot, accDB, utxoDB, codeStore, 0)
	require.NoError(t, err)

	bal, err := reopened.Accounts.Balance(contractAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(250), bal)

	bal, err = reopened.Accounts.Balance(depositTo)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(123), bal)

	gotContractVins, err := reopened.Vins.GetVins(contractAddr)
	require.NoError(t, err)
	assert.Equal(t, wantContractVins, gotContractVins)

	gotDepositVins, err := reopened.Vins.GetVins(depositTo)
	require.NoError(t, err)
	assert.Equal(t, wantDepositVins, gotDepositVins)
}

// TestSetRootRewindsBothTries commits two generations of state, then
// rewinds the live State to the first generation's recorded root pair and
// checks the second generation's mutations are no longer visible.
func TestSetRootRewindsBothTries(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	firstTo := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	firstHash := common.HexToHash("0x7777777777777777777777777777777777777777777777777777777777777a")
	first := types.NewTransaction(types.VersionDeposit, firstHash, 0, 0, common.Address{}, &firstTo, big.NewInt(5), 0, big.NewInt(0), nil)
	_, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), first, Committed)
	require.NoError(t, err)
	stateRoot, utxoRoot := s.Roots()

	secondTo := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	secondHash := common.HexToHash("0x8888888888888888888888888888888888888888888888888888888888888b")
	second := types.NewTransaction(types.VersionDeposit, secondHash, 0, 0, common.Address{}, &secondTo, big.NewInt(9), 0, big.NewInt(0), nil)
	_, err = exec.Execute(EnvInfo{}, vm.NewSimpleVM(), second, Committed)
	require.NoError(t, err)

	require.NoError(t, s.SetRoot(stateRoot, utxoRoot))

	bal, err := s.Accounts.Balance(secondTo)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), bal)

	vins, err := s.Vins.GetVins(secondTo)
	require.NoError(t, err)
	assert.Empty(t, vins)

	bal, err = s.Accounts.Balance(firstTo)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), bal)
}

// TestRevertLeavesRootsUntouched executes a transfer under the Reverted
// permanence: neither the state root nor the UTXO root may move.
func TestRevertLeavesRootsUntouched(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	c1 := setupFundedContract(t, s, exec, 100)
	rootBefore, utxoRootBefore := s.Roots()

	target := common.HexToAddress("0x9999999999999999999999999999999999999999")
	invokeHash := common.HexToHash("0x4444444444444444444444444444444444444444444444444444444444444d")
	input := append([]byte{byte(vm.OpTransfer)}, target.Bytes()...)
	caller := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	invoke := types.NewTransaction(types.VersionContractMin, invokeHash, 0, 1, caller, &c1, big.NewInt(30), 500000, big.NewInt(0), input)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), invoke, Reverted)
	require.NoError(t, err)
	assert.False(t, outcome.Receipt.Failed)

	rootAfter, utxoRootAfter := s.Roots()
	assert.Equal(t, rootBefore, rootAfter)
	assert.Equal(t, utxoRootBefore, utxoRootAfter)
}

// TestSynthesizedTransferConservesValue checks both halves of value
// conservation across a successful cross-contract transfer: the
// synthesized transaction's input amounts sum to its output amounts, and
// the balance moved off the source lands intact on the destination.
func TestSynthesizedTransferConservesValue(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	c1 := setupFundedContract(t, s, exec, 100)

	c2Hash := common.HexToHash("0x3333333333333333333333333333333333333333333333333333333333333c")
	c2Creation := types.NewTransaction(types.VersionContractMin, c2Hash, 0, 0, common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"), nil, big.NewInt(0), 500000, big.NewInt(0), []byte{byte(vm.OpStop)})
	_, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), c2Creation, Committed)
	require.NoError(t, err)
	c2 := crypto.QtumAddress(c2Hash, 0)

	invokeHash := common.HexToHash("0x4444444444444444444444444444444444444444444444444444444444444d")
	input := append([]byte{byte(vm.OpTransfer)}, c2.Bytes()...)
	caller := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	invoke := types.NewTransaction(types.VersionContractMin, invokeHash, 0, 1, caller, &c1, big.NewInt(30), 500000, big.NewInt(0), input)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), invoke, Committed)
	require.NoError(t, err)
	require.Len(t, outcome.Synthesized, 1)

	synth := outcome.Synthesized[0]
	var outSum int64
	for _, out := range synth.Vout {
		outSum += out.Value
	}
	assert.Equal(t, int64(100), outSum) // one 100-unit input, fully redistributed

	c1Bal, err := s.Accounts.Balance(c1)
	require.NoError(t, err)
	c2Bal, err := s.Accounts.Balance(c2)
	require.NoError(t, err)
	assert.Equal(t, int64(100), new(big.Int).Add(c1Bal, c2Bal).Int64())
}

// TestDeterministicCoinSelection runs the same transaction sequence
// against two independent fresh states and requires the synthesized
// transactions to come out byte-identical.
func TestDeterministicCoinSelection(t *testing.T) {
	run := func() *types.CTransaction {
		s := newTestState(t)
		exec := newTestExecutive(t, s)

		c1 := setupFundedContract(t, s, exec, 100)

		c2Hash := common.HexToHash("0x3333333333333333333333333333333333333333333333333333333333333c")
		c2Creation := types.NewTransaction(types.VersionContractMin, c2Hash, 0, 0, common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"), nil, big.NewInt(0), 500000, big.NewInt(0), []byte{byte(vm.OpStop)})
		_, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), c2Creation, Committed)
		require.NoError(t, err)
		c2 := crypto.QtumAddress(c2Hash, 0)

		invokeHash := common.HexToHash("0x4444444444444444444444444444444444444444444444444444444444444d")
		input := append([]byte{byte(vm.OpTransfer)}, c2.Bytes()...)
		caller := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
		invoke := types.NewTransaction(types.VersionContractMin, invokeHash, 0, 1, caller, &c1, big.NewInt(30), 500000, big.NewInt(0), input)

		outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), invoke, Committed)
		require.NoError(t, err)
		require.Len(t, outcome.Synthesized, 1)
		return outcome.Synthesized[0]
	}

	a, b := run(), run()
	assert.Equal(t, a, b)

	hashA, err := a.Hash()
	require.NoError(t, err)
	hashB, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)
}

// TestCommitAllDropsUTXOsOfDeadAccounts wires the two caches' commits
// together directly: an address the account cache erased must not
// survive in the UTXO trie either.
func TestCommitAllDropsUTXOsOfDeadAccounts(t *testing.T) {
	s := newTestState(t)

	addr := common.HexToAddress("0x1212121212121212121212121212121212121212")
	require.NoError(t, s.Accounts.AddBalance(addr, big.NewInt(1)))
	require.NoError(t, s.Vins.AddVin(addr, types.VinEntry{Outpoint: types.NewOutpoint(common.Hash{1}, 0), Amount: 1}))
	_, _, err := s.CommitAll()
	require.NoError(t, err)

	// Mark it dead and force its VinSet dirty, as the executive does for
	// self-destructed contracts.
	require.NoError(t, s.Accounts.SubBalance(addr, big.NewInt(1)))
	s.Accounts.MarkDead(addr)
	vins, err := s.Vins.GetVins(addr)
	require.NoError(t, err)
	require.NoError(t, s.Vins.SetVins(addr, vins))
	_, _, err = s.CommitAll()
	require.NoError(t, err)

	inUse, err := s.Accounts.AddressInUse(addr)
	require.NoError(t, err)
	assert.False(t, inUse)

	vins, err = s.Vins.GetVins(addr)
	require.NoError(t, err)
	assert.Empty(t, vins)
}
