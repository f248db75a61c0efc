// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package types holds the wire- and trie-level value types shared across
// the engine: outpoints and VinSets (the UTXO side), account records (the
// account side), and the Bitcoin-shaped transaction/header types that
// carry them on the wire.
package types

import (
	"math/big"

	"github.com/qtum-network/gqtum/common"
)

// Outpoint identifies one unspent transaction output: the hash of the
// transaction that created it, plus the index of the output within that
// transaction.
type Outpoint struct {
	Txid      common.Hash
	VoutIndex uint32
}

// NewOutpoint returns the Outpoint (txid, vout).
func NewOutpoint(txid common.Hash, vout uint32) Outpoint {
	return Outpoint{Txid: txid, VoutIndex: vout}
}

// U256 returns u256(txid) + vout_index, the key used to tie-break
// sort_outpoints when two entries share the same amount.
func (o Outpoint) U256() *big.Int {
	sum := new(big.Int).SetBytes(o.Txid.Bytes())
	return sum.Add(sum, new(big.Int).SetUint64(uint64(o.VoutIndex)))
}

// VinEntry is one (outpoint, amount) pair of a VinSet.
type VinEntry struct {
	Outpoint Outpoint
	Amount   int64
}

// VinSet is the ordered sequence of (outpoint, amount) pairs backing one
// contract address's balance. Index 0 is, by convention, a permanent
// zero-value identity sentinel inserted at contract creation; it is never
// consumed by SubVins.
type VinSet []VinEntry

// Clone returns an independent copy of vs.
func (vs VinSet) Clone() VinSet {
	cp := make(VinSet, len(vs))
	copy(cp, vs)
	return cp
}

// Sum returns the sum of every entry's amount, sentinel included.
func (vs VinSet) Sum() int64 {
	var total int64
	for _, e := range vs {
		total += e.Amount
	}
	return total
}

// rlpVinEntry and rlpOutpoint mirror VinEntry/Outpoint in a form the rlp
// package can encode/decode directly (VoutIndex/Amount as uint64 so they
// round-trip through the unsigned-integer RLP rules).
type rlpOutpoint struct {
	Txid      common.Hash
	VoutIndex uint64
}

type rlpVinEntry struct {
	Outpoint rlpOutpoint
	Amount   uint64
	Negative bool
}

func toRLPEntry(e VinEntry) rlpVinEntry {
	amt := e.Amount
	neg := amt < 0
	if neg {
		amt = -amt
	}
	return rlpVinEntry{
		Outpoint: rlpOutpoint{Txid: e.Outpoint.Txid, VoutIndex: uint64(e.Outpoint.VoutIndex)},
		Amount:   uint64(amt),
		Negative: neg,
	}
}

func fromRLPEntry(r rlpVinEntry) VinEntry {
	amt := int64(r.Amount)
	if r.Negative {
		amt = -amt
	}
	return VinEntry{
		Outpoint: Outpoint{Txid: r.Outpoint.Txid, VoutIndex: uint32(r.Outpoint.VoutIndex)},
		Amount:   amt,
	}
}
