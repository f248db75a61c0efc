// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import "github.com/qtum-network/gqtum/common"

// Log is one event emitted by the VM during execution, bubbled up into
// the transaction's receipt verbatim.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt records the outcome of executing one transaction: the
// post-state root, cumulative gas spent within the block, and any logs
// the VM emitted.
type Receipt struct {
	StateRoot     common.Hash
	GasUsed       uint64
	CumulativeGas uint64
	Logs          []*Log
	Failed        bool
}

// NewSuccessReceipt builds a receipt for a transaction that reached
// finalize() without an exception.
func NewSuccessReceipt(stateRoot common.Hash, gasUsed, cumulativeGas uint64, logs []*Log) *Receipt {
	return &Receipt{StateRoot: stateRoot, GasUsed: gasUsed, CumulativeGas: cumulativeGas, Logs: logs}
}

// NewExceptionReceipt builds the receipt the exception path always
// returns: gas_refunded = 0, empty logs, gas_used = the transaction's
// full gas limit.
func NewExceptionReceipt(stateRoot common.Hash, gasLimit, cumulativeGas uint64) *Receipt {
	return &Receipt{StateRoot: stateRoot, GasUsed: gasLimit, CumulativeGas: cumulativeGas, Failed: true}
}
