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
	"github.com/qtum-network/gqtum/crypto"
	"github.com/qtum-network/gqtum/rlp"
)

// Version selects the executive's processing path for one transaction.
type Version uint32

const (
	// VersionDeposit is a pure value deposit: no VM invocation at all.
	VersionDeposit Version = 0
	// VersionDepositAndExecute deposits value, then falls through to the
	// contract path when value is non-zero.
	VersionDepositAndExecute Version = 1
	// VersionContractMin is the smallest version number that always takes
	// the contract path regardless of value.
	VersionContractMin Version = 2
)

// Transaction is the executive's incoming message: either a plain value
// deposit (Version 0) or a contract invocation/creation (Version 1+).
type Transaction struct {
	Version  Version
	Nonce    uint64
	From     common.Address
	To       *common.Address // nil selects contract creation
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Data     []byte

	// hash and vout identify the originating outpoint; they are not part
	// of the transaction's own consensus hash, only of the UTXO it
	// deposits against.
	hash common.Hash
	vout uint32
}

// NewTransaction builds a Transaction whose originating outpoint is
// (hash, vout) — the txid/vout_index this message's value deposit (if
// any) and any new contract address are derived from.
func NewTransaction(version Version, hash common.Hash, vout uint32, nonce uint64, from common.Address, to *common.Address, value *big.Int, gas uint64, gasPrice *big.Int, data []byte) *Transaction {
	if value == nil {
		value = new(big.Int)
	}
	if gasPrice == nil {
		gasPrice = new(big.Int)
	}
	return &Transaction{
		Version:  version,
		Nonce:    nonce,
		From:     from,
		To:       to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
		hash:     hash,
		vout:     vout,
	}
}

// HashWith returns the outpoint txid this transaction's deposit and any
// contract-creation address derivation is anchored on.
func (tx *Transaction) HashWith() common.Hash { return tx.hash }

// VoutNumber returns the output index within HashWith() that funds this
// transaction.
func (tx *Transaction) VoutNumber() uint32 { return tx.vout }

// IsContractCreation reports whether this transaction creates a new
// contract (no destination address given).
func (tx *Transaction) IsContractCreation() bool { return tx.To == nil }

// ContractAddress derives the address a contract-creation transaction's
// new account will live at: RIPEMD160(SHA256(txid || vout_index)).
func (tx *Transaction) ContractAddress() common.Address {
	return crypto.QtumAddress(tx.hash, tx.vout)
}

// IntrinsicGas is a minimal fixed + per-byte accounting, standing in for
// the VM's own gas schedule at the point the executive needs a floor to
// validate against before driving execution.
func (tx *Transaction) IntrinsicGas() uint64 {
	const txGas = 21000
	const txGasContractCreation = 53000
	const txDataNonZeroGas = 68
	const txDataZeroGas = 4

	gas := txGas
	if tx.IsContractCreation() {
		gas = txGasContractCreation
	}
	for _, b := range tx.Data {
		if b == 0 {
			gas += txDataZeroGas
		} else {
			gas += txDataNonZeroGas
		}
	}
	return uint64(gas)
}

type rlpTransaction struct {
	Version  uint64
	Nonce    uint64
	From     common.Address
	To       common.Address
	HasTo    bool
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Data     []byte
	Hash     common.Hash
	Vout     uint64
}

// EncodeTransaction RLP-encodes tx for wire transmission/storage.
func EncodeTransaction(tx *Transaction) ([]byte, error) {
	r := rlpTransaction{
		Version:  uint64(tx.Version),
		Nonce:    tx.Nonce,
		From:     tx.From,
		Value:    tx.Value,
		Gas:      tx.Gas,
		GasPrice: tx.GasPrice,
		Data:     tx.Data,
		Hash:     tx.hash,
		Vout:     uint64(tx.vout),
	}
	if tx.To != nil {
		r.To = *tx.To
		r.HasTo = true
	}
	return rlp.EncodeToBytes(r)
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(data []byte) (*Transaction, error) {
	var r rlpTransaction
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	tx := &Transaction{
		Version:  Version(r.Version),
		Nonce:    r.Nonce,
		From:     r.From,
		Value:    r.Value,
		Gas:      r.Gas,
		GasPrice: r.GasPrice,
		Data:     r.Data,
		hash:     r.Hash,
		vout:     uint32(r.Vout),
	}
	if r.HasTo {
		to := r.To
		tx.To = &to
	}
	return tx, nil
}
