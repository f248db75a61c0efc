// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"github.com/qtum-network/gqtum/common"
)

// Opcode is the minimal instruction set SimpleVM's interpreter loop
// understands, sufficient to exercise the executive's full collaborator
// protocol without depending on an external contract-execution engine.
type Opcode byte

const (
	// OpStop ends execution normally.
	OpStop Opcode = iota
	// OpTransfer moves Call.Value from the call's current account to the
	// address pushed immediately after it in Input.
	OpTransfer
	// OpLog emits a zero-topic log carrying the remainder of Input as
	// data.
	OpLog
	// OpSelfDestruct marks the call's receiver dead and records a
	// transfer of its whole balance to the address pushed immediately
	// after it in Input.
	OpSelfDestruct
)

const simpleVMGasPerOp = 200

// SimpleVM is a reference VM implementation: a tiny fixed-opcode
// interpreter over Call.Input, just expressive enough to drive every path
// the executive's contractPath exercises (plain transfers, logging,
// self-destruction), standing in for a production opcode engine that
// satisfies the same VM interface.
type SimpleVM struct {
	call    Call
	gas     uint64
	gasUsed uint64
	logs    []*Log
	newAddr common.Address
}

// NewSimpleVM returns an idle SimpleVM.
func NewSimpleVM() *SimpleVM {
	return &SimpleVM{}
}

// Initialize checks that the call's gas limit covers at least one
// interpreter step (simpleVMGasPerOp) and
// primes the interpreter's working gas counter.
func (vm *SimpleVM) Initialize(call Call, state StateDB) error {
	if call.Gas < simpleVMGasPerOp {
		return ErrExecutionReverted
	}
	vm.call = call
	vm.gas = call.Gas
	vm.gasUsed = 0
	vm.logs = nil
	vm.newAddr = common.Address{}
	return nil
}

// Execute handles contract creation directly (no opcode loop needed: the
// "contract" is simply installed with call.Input as its code at the
// receiver address the executive derived) and plain value transfers with
// empty input; any other call falls through to Go.
func (vm *SimpleVM) Execute(call Call, state StateDB, seal *SealEngine) (bool, error) {
	if call.Create {
		if err := state.SetCode(call.Receiver, call.Input); err != nil {
			return false, err
		}
		vm.newAddr = call.Receiver
		if call.Value.Sign() > 0 {
			if err := state.SubBalance(call.Origin, call.Value); err != nil {
				return false, err
			}
			if err := state.AddBalance(call.Receiver, call.Value); err != nil {
				return false, err
			}
			seal.RecordTransfer(call.Origin, call.Receiver, call.Value)
		}
		return true, vm.chargeGas(simpleVMGasPerOp)
	}
	if len(call.Input) == 0 {
		if call.Value.Sign() > 0 {
			if err := state.SubBalance(call.Origin, call.Value); err != nil {
				return false, err
			}
			if err := state.AddBalance(call.Receiver, call.Value); err != nil {
				return false, err
			}
			seal.RecordTransfer(call.Origin, call.Receiver, call.Value)
		}
		return true, vm.chargeGas(simpleVMGasPerOp)
	}
	return false, nil
}

// Go interprets call.Input as a flat sequence of (opcode, address?) and
// (opcode, data) instructions, one per byte plus its operand.
func (vm *SimpleVM) Go(state StateDB, seal *SealEngine) error {
	input := vm.call.Input
	for len(input) > 0 {
		op := Opcode(input[0])
		input = input[1:]
		if err := vm.chargeGas(simpleVMGasPerOp); err != nil {
			return err
		}
		switch op {
		case OpStop:
			return nil
		case OpTransfer:
			if len(input) < common.AddressLength {
				return ErrExecutionReverted
			}
			to := common.BytesToAddress(input[:common.AddressLength])
			input = input[common.AddressLength:]
			if err := state.SubBalance(vm.call.Receiver, vm.call.Value); err != nil {
				return ErrInsufficientBalance
			}
			if err := state.AddBalance(to, vm.call.Value); err != nil {
				return err
			}
			seal.RecordTransfer(vm.call.Receiver, to, vm.call.Value)
		case OpLog:
			vm.logs = append(vm.logs, &Log{Address: vm.call.Receiver, Data: append([]byte(nil), input...)})
			input = nil
		case OpSelfDestruct:
			if len(input) < common.AddressLength {
				return ErrExecutionReverted
			}
			to := common.BytesToAddress(input[:common.AddressLength])
			input = input[common.AddressLength:]
			balance, err := state.GetBalance(vm.call.Receiver)
			if err != nil {
				return err
			}
			if balance.Sign() > 0 {
				if err := state.SubBalance(vm.call.Receiver, balance); err != nil {
					return err
				}
				if err := state.AddBalance(to, balance); err != nil {
					return err
				}
				seal.RecordTransfer(vm.call.Receiver, to, balance)
			}
			seal.MarkDead(vm.call.Receiver)
		default:
			return ErrExecutionReverted
		}
	}
	return nil
}

// Finalize is a no-op for SimpleVM: all gas accounting already happened
// in chargeGas as each step ran.
func (vm *SimpleVM) Finalize() error {
	return nil
}

// Gas returns the gas remaining after the last Initialize/Execute/Go
// cycle.
func (vm *SimpleVM) Gas() uint64 { return vm.gas }

// GasUsed returns the gas consumed by the call just driven.
func (vm *SimpleVM) GasUsed() uint64 { return vm.gasUsed }

// Logs returns every log emitted by the call just driven.
func (vm *SimpleVM) Logs() []*Log { return vm.logs }

// NewAddress returns the address installed by the last contract-creation
// call, or the zero address otherwise.
func (vm *SimpleVM) NewAddress() common.Address { return vm.newAddr }

func (vm *SimpleVM) chargeGas(amount uint64) error {
	if vm.gas < amount {
		vm.gas = 0
		return ErrExecutionReverted
	}
	vm.gas -= amount
	vm.gasUsed += amount
	return nil
}

var _ VM = (*SimpleVM)(nil)
