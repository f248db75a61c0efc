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
	"github.com/qtum-network/gqtum/core/vm"
)

// stateDBAdapter satisfies vm.StateDB over a *State, the seam the VM's
// opcode interpreter reads and writes through without ever touching a
// trie directly.
type stateDBAdapter struct {
	state *State
	logs  []*vm.Log
}

func newStateDBAdapter(s *State) *stateDBAdapter {
	return &stateDBAdapter{state: s}
}

func (a *stateDBAdapter) GetBalance(addr common.Address) (*big.Int, error) {
	return a.state.Accounts.Balance(addr)
}

func (a *stateDBAdapter) AddBalance(addr common.Address, amount *big.Int) error {
	return a.state.Accounts.AddBalance(addr, amount)
}

func (a *stateDBAdapter) SubBalance(addr common.Address, amount *big.Int) error {
	return a.state.Accounts.SubBalance(addr, amount)
}

func (a *stateDBAdapter) GetNonce(addr common.Address) (uint64, error) {
	return a.state.Accounts.Nonce(addr)
}

func (a *stateDBAdapter) SetNonce(addr common.Address, nonce uint64) error {
	// The account cache only ever advances a nonce through NoteSending;
	// a VM call that needs to bump it (e.g. CREATE from within a
	// contract) goes through the same single increment entry point.
	for {
		n, err := a.state.Accounts.Nonce(addr)
		if err != nil {
			return err
		}
		if n >= nonce {
			return nil
		}
		if err := a.state.Accounts.NoteSending(addr); err != nil {
			return err
		}
	}
}

func (a *stateDBAdapter) GetCode(addr common.Address) ([]byte, error) {
	return a.state.Accounts.Code(addr)
}

func (a *stateDBAdapter) GetCodeHash(addr common.Address) (common.Hash, error) {
	return a.state.Accounts.CodeHash(addr)
}

func (a *stateDBAdapter) SetCode(addr common.Address, code []byte) error {
	return a.state.Accounts.SetCode(addr, code)
}

func (a *stateDBAdapter) GetState(addr common.Address, key common.Hash) (common.Hash, error) {
	return a.state.Accounts.GetState(addr, key)
}

func (a *stateDBAdapter) SetState(addr common.Address, key, value common.Hash) error {
	return a.state.Accounts.SetState(addr, key, value)
}

func (a *stateDBAdapter) AddressInUse(addr common.Address) (bool, error) {
	return a.state.Accounts.AddressInUse(addr)
}

func (a *stateDBAdapter) NewContract(balance *big.Int, code []byte) (common.Address, error) {
	return a.state.Accounts.NewContract(balance, code)
}

func (a *stateDBAdapter) AddLog(l *vm.Log) {
	a.logs = append(a.logs, l)
}
