// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package vm defines the boundary between the executive and the
// contract-execution engine: the StateDB surface the VM reads and
// writes through, the SealEngine scratchpad that accumulates value
// transfers and dead addresses during a call, and the VM interface
// itself. SimpleVM is a minimal implementation sufficient to drive
// the executive end to end; a production opcode interpreter is an
// external collaborator satisfying the same interface.
package vm

import (
	"errors"
	"math/big"

	"github.com/qtum-network/gqtum/common"
)

// ErrInsufficientBalance is returned by a value-moving opcode whose
// source account cannot cover the transfer.
var ErrInsufficientBalance = errors.New("core/vm: insufficient balance for transfer")

// ErrExecutionReverted is returned by calls the VM declines to carry
// out, including every codepath SimpleVM does not implement.
var ErrExecutionReverted = errors.New("core/vm: execution reverted")

// StateDB is the read/write surface the VM calls back into. It is
// satisfied by an adapter over core/state.AccountCache plus whatever
// core/utxostate bookkeeping the adapter chooses to expose alongside
// it; the VM itself never touches a trie directly.
type StateDB interface {
	GetBalance(addr common.Address) (*big.Int, error)
	AddBalance(addr common.Address, amount *big.Int) error
	SubBalance(addr common.Address, amount *big.Int) error

	GetNonce(addr common.Address) (uint64, error)
	SetNonce(addr common.Address, nonce uint64) error

	GetCode(addr common.Address) ([]byte, error)
	GetCodeHash(addr common.Address) (common.Hash, error)
	SetCode(addr common.Address, code []byte) error

	GetState(addr common.Address, key common.Hash) (common.Hash, error)
	SetState(addr common.Address, key, value common.Hash) error

	AddressInUse(addr common.Address) (bool, error)

	// NewContract allocates a fresh address for a contract-creation call
	// and installs the given code and starting balance under it.
	NewContract(balance *big.Int, code []byte) (common.Address, error)

	// AddLog records one event to be bubbled into the transaction's
	// receipt.
	AddLog(log *Log)
}

// Log is one event the VM emits during execution.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Transfer is one pending value movement recorded by the VM during
// execution, drained by the executive after Finalize to synthesize
// the corresponding on-chain transaction.
type Transfer struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// SealEngine is the per-call scratchpad the executive hands the VM:
// pendingTransfers accumulates value movements for later
// materialization into synthesized transactions, and deadAddresses
// collects accounts the executive erases from both tries at the next
// commit. When the call ends in an exception, the executive's state
// Clear drops them along with the rest of the call's changes.
type SealEngine struct {
	pendingTransfers []Transfer
	deadAddresses    map[common.Address]struct{}
}

// NewSealEngine returns a scratchpad seeded with any alwaysDead
// addresses. The executive passes none, so only addresses the VM marks
// with MarkDead end up in DeadAddresses.
func NewSealEngine(alwaysDead ...common.Address) *SealEngine {
	se := &SealEngine{deadAddresses: make(map[common.Address]struct{})}
	for _, a := range alwaysDead {
		se.deadAddresses[a] = struct{}{}
	}
	return se
}

// RecordTransfer appends one pending value movement. A zero value is
// recorded like any other; the executive is responsible for skipping
// zero-value transfers when draining.
func (se *SealEngine) RecordTransfer(from, to common.Address, value *big.Int) {
	se.pendingTransfers = append(se.pendingTransfers, Transfer{From: from, To: to, Value: new(big.Int).Set(value)})
}

// MarkDead adds addr to the set the executive erases from both tries
// once this call has finished successfully.
func (se *SealEngine) MarkDead(addr common.Address) {
	se.deadAddresses[addr] = struct{}{}
}

// PendingTransfers returns every transfer recorded so far, in order.
func (se *SealEngine) PendingTransfers() []Transfer {
	return se.pendingTransfers
}

// DeadAddresses returns every address marked dead so far.
func (se *SealEngine) DeadAddresses() []common.Address {
	out := make([]common.Address, 0, len(se.deadAddresses))
	for a := range se.deadAddresses {
		out = append(out, a)
	}
	return out
}

// Call is the message the executive hands the VM to drive: a single
// contract invocation or creation.
type Call struct {
	Origin   common.Address
	Receiver common.Address // for a creation, the new contract's address
	Create   bool           // true selects contract creation
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Input    []byte
}

// VM is the contract-execution engine the executive drives through
// its four-step protocol: Initialize validates the call against the
// state it's about to touch, Execute performs any short-circuit path
// (plain transfer, precompile), Go runs the opcode loop proper when
// Execute didn't already conclude the call, and Finalize settles gas
// accounting; the logs and new-contract address are then read through
// Logs and NewAddress.
type VM interface {
	// Initialize performs the signature/nonce/intrinsic-gas admission
	// checks. A non-nil error takes the executive straight to the
	// exception path.
	Initialize(call Call, state StateDB) error

	// Execute attempts the call without entering the opcode loop
	// (covers plain value transfers and precompiles). done is true if
	// Execute concluded the call and Go should not run.
	Execute(call Call, state StateDB, seal *SealEngine) (done bool, err error)

	// Go runs the opcode interpreter proper, called only when Execute
	// reported !done.
	Go(state StateDB, seal *SealEngine) error

	// Finalize settles gas accounting for the call just driven.
	Finalize() error

	// Gas returns the gas remaining after the last Initialize/Execute/Go
	// cycle.
	Gas() uint64

	// GasUsed returns the gas consumed by the call just driven.
	GasUsed() uint64

	// Logs returns every log emitted by the call just driven.
	Logs() []*Log

	// NewAddress returns the address a just-concluded contract-creation
	// call installed its code under, or the zero address if the call
	// was not a creation.
	NewAddress() common.Address
}
