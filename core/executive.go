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

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/core/vm"
	"github.com/qtum-network/gqtum/log"
)

// Permanence selects what the executive does with both caches once a
// transaction's VM work is done.
type Permanence int

const (
	// Committed flushes both caches to their tries.
	Committed Permanence = iota
	// Reverted discards both caches without committing.
	Reverted
)

// EnvInfo is the per-block environment the executive needs beyond the
// transaction itself: who mined/sealed the block, and how much gas the
// block has burned so far (folded into the receipt's cumulative-gas
// field).
type EnvInfo struct {
	Author  common.Address
	GasUsed uint64
}

// ExecutionResult is the VM-facing half of one transaction's outcome.
type ExecutionResult struct {
	GasRefunded uint64
}

// ExecutionOutcome bundles everything Execute returns: the VM result, the
// block-level receipt, and every synthesized Bitcoin-format transaction
// the pending transfers materialized.
type ExecutionOutcome struct {
	Result      ExecutionResult
	Receipt     *types.Receipt
	Synthesized []*types.CTransaction
}

// Executive drives exactly one transaction end to end against a *State:
// sender debit, VM invocation, gas accounting, exception rollback, and
// synthesized-transaction emission.
type Executive struct {
	state *State
	gp    *GasPool
	log   log.Logger
}

// NewExecutive returns an Executive bound to state and drawing from the
// block-level gas pool gp.
func NewExecutive(state *State, gp *GasPool) *Executive {
	return &Executive{state: state, gp: gp, log: log.New("pkg", "core")}
}

// Execute runs tx against e's State using machine as the VM. The
// transaction's version selects the processing path: 0 is a pure deposit,
// 1 deposits then executes when it carries value, 2+ always takes the
// contract path.
//
// A non-nil error aborts the whole block: both caches are cleared before
// returning, so no partial mutation — a half-applied VM balance change, a
// consumed VinSet prefix — can leak into a later Execute call on the
// same State.
func (e *Executive) Execute(env EnvInfo, machine vm.VM, tx *types.Transaction, perm Permanence) (outcome *ExecutionOutcome, err error) {
	defer func() {
		if err != nil {
			e.state.Clear()
		}
	}()
	if tx.Version == types.VersionDeposit {
		return e.depositOnly(env, tx, perm)
	}
	if tx.Version == types.VersionDepositAndExecute && tx.Value.Sign() > 0 {
		if tx.To == nil {
			return nil, ErrNonceMismatch
		}
		outpoint := types.NewOutpoint(tx.HashWith(), tx.VoutNumber())
		if err := e.state.Vins.AddVin(*tx.To, types.VinEntry{Outpoint: outpoint, Amount: tx.Value.Int64()}); err != nil {
			return nil, err
		}
		if err := e.state.Accounts.AddBalance(*tx.To, tx.Value); err != nil {
			return nil, err
		}
	}
	return e.contractPath(env, machine, tx, perm)
}

// depositOnly handles Version 0: a pure value deposit with no VM
// invocation at all.
func (e *Executive) depositOnly(env EnvInfo, tx *types.Transaction, perm Permanence) (*ExecutionOutcome, error) {
	if tx.To == nil {
		return nil, ErrNonceMismatch
	}
	outpoint := types.NewOutpoint(tx.HashWith(), tx.VoutNumber())
	if err := e.state.Vins.AddVin(*tx.To, types.VinEntry{Outpoint: outpoint, Amount: tx.Value.Int64()}); err != nil {
		return nil, err
	}
	if err := e.state.Accounts.AddBalance(*tx.To, tx.Value); err != nil {
		return nil, err
	}

	var stateRoot common.Hash
	if perm == Committed {
		sr, _, err := e.state.CommitAll()
		if err != nil {
			return nil, err
		}
		stateRoot = sr
	} else {
		e.state.Clear()
		stateRoot = e.state.Accounts.Root()
	}
	receipt := types.NewSuccessReceipt(stateRoot, 0, env.GasUsed, nil)
	return &ExecutionOutcome{Receipt: receipt}, nil
}

// contractPath drives the VM for a Version-1-with-value or Version-2+
// transaction.
func (e *Executive) contractPath(env EnvInfo, machine vm.VM, tx *types.Transaction, perm Permanence) (*ExecutionOutcome, error) {
	// Step 1: pre-credit the sender with gas*gasPrice + endowment. The
	// caller has already paid for both on-chain via the UTXO layer; this
	// re-credit exists purely so the VM's own balance checks see funds to
	// spend, and is discarded (never committed) once this call concludes.
	precredit := new(big.Int).Mul(new(big.Int).SetUint64(tx.Gas), tx.GasPrice)
	precredit.Add(precredit, tx.Value)
	if err := e.state.Accounts.AddBalance(tx.From, precredit); err != nil {
		return nil, err
	}

	// Step 2. Only genuine SELFDESTRUCT targets land in the seal's
	// DeadAddresses; the sender/author cache purge below is a distinct,
	// cache-only concern and never touches either trie.
	seal := vm.NewSealEngine()

	call := vm.Call{
		Origin:   tx.From,
		Create:   tx.IsContractCreation(),
		Value:    tx.Value,
		Gas:      tx.Gas,
		GasPrice: tx.GasPrice,
		Input:    tx.Data,
	}

	// Step 4: contract-creation address derivation and identity sentinel.
	var contractAddr common.Address
	if tx.IsContractCreation() {
		contractAddr = tx.ContractAddress()
		call.Receiver = contractAddr
		sentinel := types.VinEntry{Outpoint: types.NewOutpoint(tx.HashWith(), tx.VoutNumber()), Amount: 0}
		if err := e.state.Vins.AddVin(contractAddr, sentinel); err != nil {
			return nil, err
		}
	} else {
		call.Receiver = *tx.To
	}

	sdb := newStateDBAdapter(e.state)

	// Step 3: admission checks. Intrinsic gas is checked here, ahead of
	// the VM's own Initialize (signature/nonce/flat-cost checks), since
	// it is purely a function of the transaction and not something any
	// particular VM implementation should have to reimplement.
	if tx.Gas < tx.IntrinsicGas() {
		return e.exceptionPath(env, tx)
	}
	if err := e.gp.SubGas(tx.Gas); err != nil {
		return e.exceptionPath(env, tx)
	}
	if err := machine.Initialize(call, sdb); err != nil {
		return e.exceptionPath(env, tx)
	}
	if err := e.state.Accounts.NoteSending(tx.From); err != nil {
		return nil, err
	}

	// Step 5: drive the VM.
	done, err := machine.Execute(call, sdb, seal)
	if err == nil && !done {
		err = machine.Go(sdb, seal)
	}
	if err == nil {
		err = machine.Finalize()
	}

	// Step 6a: the sender's and author's account-cache balance is only
	// ever a transient, VM-visible re-credit of value already settled
	// on-chain via the UTXO layer (Step 1's precredit); discard it from
	// the account cache alone, win or lose. Their VinSets are real
	// on-chain data and are never touched here.
	e.state.Accounts.Evict(tx.From)
	e.state.Accounts.Evict(env.Author)

	// Step 6b: every address the VM genuinely SELFDESTRUCTed gets
	// scheduled for real removal from both tries at the next commit,
	// rather than merely discarded from cache.
	for _, addr := range seal.DeadAddresses() {
		e.state.Accounts.MarkDead(addr)
		vins, verr := e.state.Vins.GetVins(addr)
		if verr != nil {
			return nil, verr
		}
		if err := e.state.Vins.SetVins(addr, vins); err != nil {
			return nil, err
		}
	}

	// Step 7: route any VM exception to the exception path, which clears
	// every remaining dirty object so nothing a failed call touched can
	// survive into the next transaction.
	if err != nil {
		e.log.Warn("transaction execution exception", "err", err)
		return e.exceptionPath(env, tx)
	}

	// Step 8: drain pending transfers into synthesized transactions.
	var synthesized []*types.CTransaction
	transfers := seal.PendingTransfers()
	skipFirst := tx.Version == types.VersionDepositAndExecute && tx.Value.Sign() > 0
	for i, tr := range transfers {
		if tr.Value.Sign() <= 0 {
			continue
		}
		if skipFirst && i == 0 {
			continue
		}
		ctx, err := e.synthesize(env, tr.From, tr.To, tr.Value)
		if err != nil {
			return nil, err
		}
		if ctx != nil {
			synthesized = append(synthesized, ctx)
		}
	}

	// Step 8b: return unspent gas to the block's pool.
	e.gp.AddGas(machine.Gas())

	// Step 9: commit or revert both tries together.
	var stateRoot common.Hash
	if perm == Reverted {
		e.state.Clear()
		stateRoot = e.state.Accounts.Root()
	} else {
		sr, _, err := e.state.CommitAll()
		if err != nil {
			return nil, err
		}
		stateRoot = sr
	}

	receipt := types.NewSuccessReceipt(stateRoot, machine.GasUsed(), env.GasUsed+machine.GasUsed(), toTypeLogs(machine.Logs()))
	return &ExecutionOutcome{
		Result:      ExecutionResult{GasRefunded: machine.Gas()},
		Receipt:     receipt,
		Synthesized: synthesized,
	}, nil
}

// exceptionPath handles any admission failure or VM exception: it
// discards every uncommitted mutation this transaction made, no matter
// how far into VM execution the failure occurred, and for a transaction
// that carried non-zero value it synthesizes a refund transaction paying
// that value straight back to the sender.
func (e *Executive) exceptionPath(env EnvInfo, tx *types.Transaction) (*ExecutionOutcome, error) {
	e.state.Clear()

	var synthesized []*types.CTransaction
	if tx.Value.Sign() != 0 {
		refund := &types.CTransaction{
			Version: 1,
			Vin: []types.CTxIn{{
				PrevOut:  types.NewOutpoint(tx.HashWith(), tx.VoutNumber()),
				ScriptSig: types.TxHashScript(),
			}},
			Vout: []types.CTxOut{{
				Value:        tx.Value.Int64(),
				ScriptPubKey: types.ContractToPubkeyhashScript(tx.From),
			}},
		}
		synthesized = append(synthesized, refund)
	}

	receipt := types.NewExceptionReceipt(e.state.Accounts.Root(), tx.Gas, env.GasUsed+tx.Gas)
	return &ExecutionOutcome{Receipt: receipt, Synthesized: synthesized}, nil
}

func toTypeLogs(logs []*vm.Log) []*types.Log {
	if len(logs) == 0 {
		return nil
	}
	out := make([]*types.Log, len(logs))
	for i, l := range logs {
		out[i] = &types.Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
	}
	return out
}
