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

func newTestState(t *testing.T) *State {
	t.Helper()
	accDB := trie.NewDatabase(memorydb.New())
	utxoDB := trie.NewDatabase(memorydb.New())
	s, err := New(common.Hash{}, common.Hash{}, accDB, utxoDB, memorydb.New(), 0)
	require.NoError(t, err)
	return s
}

func newTestExecutive(t *testing.T, s *State) *Executive {
	t.Helper()
	gp := GasPool(10_000_000)
	return NewExecutive(s, &gp)
}

// TestDepositCreditsBalanceAndVins covers a pure Version-0 value
// deposit: no VM invocation, the destination's balance and VinSet are
// credited directly.
func TestDepositCreditsBalanceAndVins(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	to := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	depositHash := common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111a")
	tx := types.NewTransaction(types.VersionDeposit, depositHash, 0, 0, common.Address{}, &to, big.NewInt(1000), 0, big.NewInt(0), nil)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), tx, Committed)
	require.NoError(t, err)
	assert.False(t, outcome.Receipt.Failed)

	bal, err := s.Accounts.Balance(to)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), bal)

	vins, err := s.Vins.GetVins(to)
	require.NoError(t, err)
	require.Len(t, vins, 1)
	assert.Equal(t, types.NewOutpoint(depositHash, 0), vins[0].Outpoint)
	assert.Equal(t, int64(1000), vins[0].Amount)
}

// TestContractCreationInstallsSentinel covers a Version-2
// contract-creation transaction with no endowment: the new account lands
// at the derived contract address carrying only the index-0 identity
// sentinel.
func TestContractCreationInstallsSentinel(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	creationHash := common.HexToHash("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeadbeef")
	origin := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	code := []byte{byte(vm.OpStop)}
	tx := types.NewTransaction(types.VersionContractMin, creationHash, 0, 0, origin, nil, big.NewInt(0), 500000, big.NewInt(0), code)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), tx, Committed)
	require.NoError(t, err)
	assert.False(t, outcome.Receipt.Failed)

	contractAddr := crypto.QtumAddress(creationHash, 0)
	inUse, err := s.Accounts.AddressInUse(contractAddr)
	require.NoError(t, err)
	assert.True(t, inUse)

	vins, err := s.Vins.GetVins(contractAddr)
	require.NoError(t, err)
	require.Len(t, vins, 1)
	assert.Equal(t, types.NewOutpoint(creationHash, 0), vins[0].Outpoint)
	assert.Equal(t, int64(0), vins[0].Amount)
}

// setupFundedContract runs a zero-value creation followed by a committed
// deposit, leaving a contract with both a sentinel and a spendable VinSet
// entry.
func setupFundedContract(t *testing.T, s *State, exec *Executive, deposit int64) common.Address {
	t.Helper()

	creationHash := common.HexToHash("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeadbeef")
	origin := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	creation := types.NewTransaction(types.VersionContractMin, creationHash, 0, 0, origin, nil, big.NewInt(0), 500000, big.NewInt(0), []byte{byte(vm.OpStop)})
	_, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), creation, Committed)
	require.NoError(t, err)
	contractAddr := crypto.QtumAddress(creationHash, 0)

	depositHash := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222b")
	fund := types.NewTransaction(types.VersionDeposit, depositHash, 0, 0, common.Address{}, &contractAddr, big.NewInt(deposit), 0, big.NewInt(0), nil)
	_, err = exec.Execute(EnvInfo{}, vm.NewSimpleVM(), fund, Committed)
	require.NoError(t, err)

	return contractAddr
}

// TestCrossContractTransferEmitsChange covers a live contract's own
// method moving part of its funded VinSet to a second live contract: the
// synthesized transaction carries one input and a receiver output plus a
// change output back to the caller.
func TestCrossContractTransferEmitsChange(t *testing.T) {
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

	env := EnvInfo{Author: common.HexToAddress("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")}
	outcome, err := exec.Execute(env, vm.NewSimpleVM(), invoke, Committed)
	require.NoError(t, err)
	assert.False(t, outcome.Receipt.Failed)
	require.Len(t, outcome.Synthesized, 1)

	synth := outcome.Synthesized[0]
	require.Len(t, synth.Vin, 1)
	require.Len(t, synth.Vout, 2)
	assert.Equal(t, int64(30), synth.Vout[0].Value)
	assert.Equal(t, int64(70), synth.Vout[1].Value)

	c1Vins, err := s.Vins.GetVins(c1)
	require.NoError(t, err)
	require.Len(t, c1Vins, 2)
	assert.Equal(t, int64(0), c1Vins[0].Amount)
	assert.Equal(t, int64(70), c1Vins[1].Amount)

	c2Vins, err := s.Vins.GetVins(c2)
	require.NoError(t, err)
	require.Len(t, c2Vins, 2)
	assert.Equal(t, int64(30), c2Vins[1].Amount)
}

// TestOutOfGasRefundsValueToSender covers a call whose gas limit falls
// below the transaction's own intrinsic-gas floor: the exception path
// fires before any VM work runs, so neither cache carries a stray
// mutation and a refund transaction pays the original value straight
// back to the sender.
func TestOutOfGasRefundsValueToSender(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	c1 := setupFundedContract(t, s, exec, 100)

	c2Hash := common.HexToHash("0x3333333333333333333333333333333333333333333333333333333333333c")
	c2Creation := types.NewTransaction(types.VersionContractMin, c2Hash, 0, 0, common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"), nil, big.NewInt(0), 500000, big.NewInt(0), []byte{byte(vm.OpStop)})
	_, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), c2Creation, Committed)
	require.NoError(t, err)
	c2 := crypto.QtumAddress(c2Hash, 0)
	rootBefore, utxoRootBefore := s.Roots()

	invokeHash := common.HexToHash("0x4444444444444444444444444444444444444444444444444444444444444d")
	input := append([]byte{byte(vm.OpTransfer)}, c2.Bytes()...)
	caller := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	const starvedGas = 1000 // below tx.IntrinsicGas() for any non-creation call
	invoke := types.NewTransaction(types.VersionContractMin, invokeHash, 0, 1, caller, &c1, big.NewInt(30), starvedGas, big.NewInt(0), input)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), invoke, Committed)
	require.NoError(t, err)
	assert.True(t, outcome.Receipt.Failed)
	assert.Equal(t, uint64(starvedGas), outcome.Receipt.GasUsed)
	assert.Equal(t, uint64(0), outcome.Result.GasRefunded)

	require.Len(t, outcome.Synthesized, 1)
	refund := outcome.Synthesized[0]
	require.Len(t, refund.Vout, 1)
	assert.Equal(t, int64(30), refund.Vout[0].Value)
	assert.Equal(t, types.ContractToPubkeyhashScript(caller), refund.Vout[0].ScriptPubKey)

	rootAfter, utxoRootAfter := s.Roots()
	assert.Equal(t, rootBefore, rootAfter)
	assert.Equal(t, utxoRootBefore, utxoRootAfter)
}

// TestTransferBeyondVinsAbortsCleanly covers a contract whose account
// balance exceeds what its VinSet can back: the transfer's synthesis has
// nothing to spend, so the transaction aborts with ErrOutputsExceedValue
// instead of silently letting the balance and the UTXO set drift apart —
// and the abort clears both caches, leaving the tries exactly as last
// committed for the next transaction on the same State.
func TestTransferBeyondVinsAbortsCleanly(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	creationHash := common.HexToHash("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeadbeef")
	origin := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	creation := types.NewTransaction(types.VersionContractMin, creationHash, 0, 0, origin, nil, big.NewInt(0), 500000, big.NewInt(0), []byte{byte(vm.OpStop)})
	_, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), creation, Committed)
	require.NoError(t, err)
	c1 := crypto.QtumAddress(creationHash, 0)

	// Credit a balance with no backing UTXO: the VinSet stays
	// sentinel-only, so any outgoing transfer is unspendable.
	require.NoError(t, s.Accounts.AddBalance(c1, big.NewInt(100)))
	_, _, err = s.CommitAll()
	require.NoError(t, err)
	rootBefore, utxoRootBefore := s.Roots()

	target := common.HexToAddress("0x9999999999999999999999999999999999999999")
	invokeHash := common.HexToHash("0x4444444444444444444444444444444444444444444444444444444444444d")
	input := append([]byte{byte(vm.OpTransfer)}, target.Bytes()...)
	caller := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	invoke := types.NewTransaction(types.VersionContractMin, invokeHash, 0, 1, caller, &c1, big.NewInt(30), 500000, big.NewInt(0), input)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), invoke, Committed)
	require.ErrorIs(t, err, ErrOutputsExceedValue)
	assert.Nil(t, outcome)

	rootAfter, utxoRootAfter := s.Roots()
	assert.Equal(t, rootBefore, rootAfter)
	assert.Equal(t, utxoRootBefore, utxoRootAfter)

	// No dirty residue: the committed balance and the sentinel-only
	// VinSet read back untouched.
	bal, err := s.Accounts.Balance(c1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), bal)

	vins, err := s.Vins.GetVins(c1)
	require.NoError(t, err)
	require.Len(t, vins, 1)
	assert.Equal(t, int64(0), vins[0].Amount)
}

// TestSelfDestructErasesAccountAndVins covers a live, already-committed
// contract self-destructing to a beneficiary: both its account and
// VinSet must be gone from their tries after commit, not merely evicted
// from cache.
func TestSelfDestructErasesAccountAndVins(t *testing.T) {
	s := newTestState(t)
	exec := newTestExecutive(t, s)

	c1 := setupFundedContract(t, s, exec, 500)

	beneficiary := common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")
	destructHash := common.HexToHash("0x5555555555555555555555555555555555555555555555555555555555555e")
	input := append([]byte{byte(vm.OpSelfDestruct)}, beneficiary.Bytes()...)
	caller := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	destruct := types.NewTransaction(types.VersionContractMin, destructHash, 0, 1, caller, &c1, big.NewInt(0), 500000, big.NewInt(0), input)

	outcome, err := exec.Execute(EnvInfo{}, vm.NewSimpleVM(), destruct, Committed)
	require.NoError(t, err)
	assert.False(t, outcome.Receipt.Failed)

	inUse, err := s.Accounts.AddressInUse(c1)
	require.NoError(t, err)
	assert.False(t, inUse)

	c1Vins, err := s.Vins.GetVins(c1)
	require.NoError(t, err)
	assert.Empty(t, c1Vins)

	beneficiaryVins, err := s.Vins.GetVins(beneficiary)
	require.NoError(t, err)
	require.Len(t, beneficiaryVins, 1)
	assert.Equal(t, int64(500), beneficiaryVins[0].Amount)

	require.Len(t, outcome.Synthesized, 1)
	assert.Equal(t, types.ContractToContractScript(beneficiary), outcome.Synthesized[0].Vout[0].ScriptPubKey)
}
