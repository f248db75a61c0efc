// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/qtum-network/gqtum/common"
)

// Header is the block header, bit-exact on the wire:
//
//	version (i32) | prev_hash (32B) | merkle_root (32B) | time (u32) |
//	bits (u32) | nonce (u32) |
//	[ when not hashing: block_sig (var), is_stake (u8),
//	  prev_stake_outpoint (36B), stake_time (u32) ] |
//	state_root (32B) | utxo_root (32B)
//
// state_root and utxo_root are this engine's outputs: every other field
// is produced and consumed by the surrounding node.
type Header struct {
	Version    int32
	PrevHash   common.Hash
	MerkleRoot common.Hash
	Time       uint32
	Bits       uint32
	Nonce      uint32

	// Proof-of-stake fields, present only in the full (non-hashing) wire
	// encoding.
	BlockSig          []byte
	IsStake           bool
	PrevStakeOutpoint Outpoint
	StakeTime         uint32

	StateRoot common.Hash
	UtxoRoot  common.Hash
}

// SerializeForHash writes the portion of the header that is covered by
// the block's proof-of-work/proof-of-stake hash: every field up to and
// including Nonce, followed directly by StateRoot/UtxoRoot. The
// stake-specific fields are never part of the hashed preimage.
func (h *Header) SerializeForHash() []byte {
	var buf bytes.Buffer
	var tmp [4]byte

	binary.LittleEndian.PutUint32(tmp[:], uint32(h.Version))
	buf.Write(tmp[:])
	buf.Write(h.PrevHash.Bytes())
	buf.Write(h.MerkleRoot.Bytes())
	binary.LittleEndian.PutUint32(tmp[:], h.Time)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], h.Bits)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], h.Nonce)
	buf.Write(tmp[:])
	buf.Write(h.StateRoot.Bytes())
	buf.Write(h.UtxoRoot.Bytes())
	return buf.Bytes()
}

// Serialize writes the full wire encoding, including the proof-of-stake
// fields omitted from the hashed preimage.
func (h *Header) Serialize() []byte {
	var buf bytes.Buffer
	var tmp [4]byte

	binary.LittleEndian.PutUint32(tmp[:], uint32(h.Version))
	buf.Write(tmp[:])
	buf.Write(h.PrevHash.Bytes())
	buf.Write(h.MerkleRoot.Bytes())
	binary.LittleEndian.PutUint32(tmp[:], h.Time)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], h.Bits)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], h.Nonce)
	buf.Write(tmp[:])

	writeVarBytes(&buf, h.BlockSig)
	if h.IsStake {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(h.PrevStakeOutpoint.Txid.Bytes())
	binary.LittleEndian.PutUint32(tmp[:], h.PrevStakeOutpoint.VoutIndex)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], h.StakeTime)
	buf.Write(tmp[:])

	buf.Write(h.StateRoot.Bytes())
	buf.Write(h.UtxoRoot.Bytes())
	return buf.Bytes()
}

func writeVarBytes(buf *bytes.Buffer, b []byte) {
	writeVarInt(buf, uint64(len(b)))
	buf.Write(b)
}

// writeVarInt writes a Bitcoin-style CompactSize integer.
func writeVarInt(buf *bytes.Buffer, n uint64) {
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(n))
		buf.Write(tmp[:])
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(n))
		buf.Write(tmp[:])
	default:
		buf.WriteByte(0xff)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], n)
		buf.Write(tmp[:])
	}
}

// String implements fmt.Stringer for log output.
func (h *Header) String() string {
	return fmt.Sprintf("Header{prev=%s state=%s utxo=%s}", h.PrevHash, h.StateRoot, h.UtxoRoot)
}
