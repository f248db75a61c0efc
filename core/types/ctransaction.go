// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import (
	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/crypto"
	"github.com/qtum-network/gqtum/rlp"
)

// Opcode is a single byte of a CScript program.
type Opcode byte

// The subset of script opcodes the executive's synthesized transactions
// are built from.
const (
	OP_0           Opcode = 0x00
	OP_1           Opcode = 0x51
	OP_DUP         Opcode = 0x76
	OP_HASH160     Opcode = 0xa9
	OP_EQUALVERIFY Opcode = 0x88
	OP_CHECKSIG    Opcode = 0xac
	OP_TXHASH      Opcode = 0xb4
	// OP_EXEC_ASSIGN is Qtum's contract-call sigil: it marks a script
	// pubkey as handing its output's value to a contract address rather
	// than a pubkey hash.
	OP_EXEC_ASSIGN Opcode = 0xc3
)

// CScript is a Bitcoin-style script program: opcodes interleaved with
// pushed data, built here only from the fixed templates the executive
// needs (never parsed).
type CScript []byte

func newScript() *scriptBuilder { return &scriptBuilder{} }

type scriptBuilder struct{ buf CScript }

func (b *scriptBuilder) op(op Opcode) *scriptBuilder {
	b.buf = append(b.buf, byte(op))
	return b
}

func (b *scriptBuilder) data(d []byte) *scriptBuilder {
	b.buf = append(b.buf, byte(len(d)))
	b.buf = append(b.buf, d...)
	return b
}

func (b *scriptBuilder) script() CScript { return b.buf }

// TxHashScript builds the OP_TXHASH spending script used by every CTxIn
// the executive synthesizes: the input is authorized purely by referring
// back to the account/UTXO caches' record of the outpoint, not by a
// signature.
func TxHashScript() CScript {
	return newScript().op(OP_TXHASH).script()
}

// ContractToContractScript builds the `OP_0 OP_0 OP_0 OP_1 <addr>
// OP_EXEC_ASSIGN` output template used when the receiver is a live
// contract distinct from the sender and the block author.
func ContractToContractScript(receiver common.Address) CScript {
	return newScript().op(OP_0).op(OP_0).op(OP_0).op(OP_1).data(receiver.Bytes()).op(OP_EXEC_ASSIGN).script()
}

// ContractToPubkeyhashScript builds the standard
// `OP_DUP OP_HASH160 <addr> OP_EQUALVERIFY OP_CHECKSIG` pay-to-pubkey-hash
// template used for every other receiver, including refunds.
func ContractToPubkeyhashScript(receiver common.Address) CScript {
	return newScript().op(OP_DUP).op(OP_HASH160).data(receiver.Bytes()).op(OP_EQUALVERIFY).op(OP_CHECKSIG).script()
}

// IsPayToPubkeyHash reports whether s is exactly the
// OP_DUP OP_HASH160 <addr> OP_EQUALVERIFY OP_CHECKSIG template
// ContractToPubkeyhashScript produces.
func (s CScript) IsPayToPubkeyHash() bool {
	return len(s) == 25 &&
		Opcode(s[0]) == OP_DUP &&
		Opcode(s[1]) == OP_HASH160 &&
		s[2] == common.AddressLength &&
		Opcode(s[23]) == OP_EQUALVERIFY &&
		Opcode(s[24]) == OP_CHECKSIG
}

// CTxIn is one Bitcoin-format transaction input: a reference to a prior
// outpoint plus the unlocking script.
type CTxIn struct {
	PrevOut  Outpoint
	ScriptSig CScript
	Sequence uint32
}

// CTxOut is one Bitcoin-format transaction output: a coin value plus the
// locking script that governs how it can later be spent.
type CTxOut struct {
	Value        int64
	ScriptPubKey CScript
}

// CTransaction is the Bitcoin-shaped transaction the executive
// synthesizes from the VM's pending transfers, settleable by ordinary
// script verification outside the engine.
type CTransaction struct {
	Version  int32
	Vin      []CTxIn
	Vout     []CTxOut
	LockTime uint32
}

type rlpCTxIn struct {
	PrevOutTxid  common.Hash
	PrevOutVout  uint64
	ScriptSig    []byte
	Sequence     uint64
}

type rlpCTxOut struct {
	Value        uint64
	ScriptPubKey []byte
}

type rlpCTransaction struct {
	Version  uint64
	Vin      []rlpCTxIn
	Vout     []rlpCTxOut
	LockTime uint64
}

// Hash returns the transaction's consensus hash (RLP+Keccak256 stand-in
// for the reference double-SHA256 txid, sufficient to uniquely key the
// synthesized transaction within this engine's own bookkeeping). Output
// values are serialized as unsigned, matching the coin-amount convention
// the executive's own construction code guarantees (never negative).
func (tx *CTransaction) Hash() (common.Hash, error) {
	r := rlpCTransaction{
		Version:  uint64(tx.Version),
		LockTime: uint64(tx.LockTime),
	}
	for _, in := range tx.Vin {
		r.Vin = append(r.Vin, rlpCTxIn{
			PrevOutTxid: in.PrevOut.Txid,
			PrevOutVout: uint64(in.PrevOut.VoutIndex),
			ScriptSig:   in.ScriptSig,
			Sequence:    uint64(in.Sequence),
		})
	}
	for _, out := range tx.Vout {
		r.Vout = append(r.Vout, rlpCTxOut{Value: uint64(out.Value), ScriptPubKey: out.ScriptPubKey})
	}
	enc, err := rlp.EncodeToBytes(r)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}
