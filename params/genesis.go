// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package params

import (
	"math/big"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/crypto"
	"github.com/qtum-network/gqtum/trie"
)

// Coin is the smallest-unit scaling factor genesis's coinbase output is
// denominated in.
const Coin = 100000000

// genesisTimestamp is the literal string every network's genesis coinbase
// scriptSig carries, the Bitcoin-style "proof this wasn't pre-mined
// yesterday" anchor.
const genesisTimestamp = "The Times 03/Jan/2009 Chancellor on brink of second bailout for banks"

// genesisPubkey is the hardcoded output pubkey hash every network's
// genesis coinbase pays its 50-coin reward to.
var genesisPubkey = common.HexToAddress("0x0000000000000000000000000000000000000000")

// Genesis describes one network's genesis block: the header fields fixed
// ahead of mining/grinding, plus the coinbase transaction the block's
// merkle_root is computed over.
type Genesis struct {
	Version   int32
	Time      uint32
	Bits      uint32
	Nonce     uint32
	Coinbase  *types.CTransaction
}

// CreateGenesisBlock builds the standard single-coinbase-transaction
// genesis block for one network: scriptSig carries genesisTimestamp, the
// sole output pays reward to genesisPubkey, and both of the engine's own
// roots start out as the empty-trie root, SHA3(RLP("")).
func CreateGenesisBlock(bits uint32, nonce uint32, version int32, time uint32, reward int64) *Genesis {
	coinbase := &types.CTransaction{
		Version: version,
		Vin: []types.CTxIn{{
			PrevOut:   types.NewOutpoint(common.Hash{}, 0xffffffff),
			ScriptSig: append(types.CScript(nil), genesisTimestamp...),
		}},
		Vout: []types.CTxOut{{
			Value:        reward,
			ScriptPubKey: types.ContractToPubkeyhashScript(genesisPubkey),
		}},
	}
	return &Genesis{Version: version, Time: time, Bits: bits, Nonce: nonce, Coinbase: coinbase}
}

// Header assembles g's block header: merkle_root is the coinbase
// transaction's own hash (a one-transaction block's merkle tree is just
// that transaction), and both state_root/utxo_root are the empty-trie
// root, since genesis commits no account or UTXO mutation of its own.
func (g *Genesis) Header() (*types.Header, error) {
	txid, err := g.Coinbase.Hash()
	if err != nil {
		return nil, err
	}
	return &types.Header{
		Version:    g.Version,
		PrevHash:   common.Hash{},
		MerkleRoot: txid,
		Time:       g.Time,
		Bits:       g.Bits,
		Nonce:      g.Nonce,
		StateRoot:  trie.EmptyRoot,
		UtxoRoot:   trie.EmptyRoot,
	}, nil
}

// Hash returns the SHA256d hash of g's header, the block hash every
// network's hardcoded genesis nonce was originally ground to satisfy.
func (g *Genesis) Hash() (common.Hash, error) {
	h, err := g.Header()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Sha256d(h.SerializeForHash()), nil
}

// meetsTarget reports whether hash, interpreted as a big-endian unsigned
// integer, is at or below target — the proof-of-work acceptance rule.
func meetsTarget(hash common.Hash, target *big.Int) bool {
	return new(big.Int).SetBytes(hash.Bytes()).Cmp(target) <= 0
}

// MakeItGenesis grinds g's nonce (and, failing an exhaustive nonce sweep,
// its time) until SHA256d(header) <= target(g.Bits), used whenever a
// network's consensus constants change and its hardcoded genesis no
// longer satisfies its own proof-of-work limit.
func MakeItGenesis(g *Genesis, powLimit *big.Int) error {
	target := CompactToBig(g.Bits)
	if target.Cmp(powLimit) > 0 {
		target = powLimit
	}
	for {
		for nonce := uint32(0); ; nonce++ {
			g.Nonce = nonce
			hash, err := g.Hash()
			if err != nil {
				return err
			}
			if meetsTarget(hash, target) {
				return nil
			}
			if nonce == ^uint32(0) {
				break
			}
		}
		g.Time++
	}
}

// CompactToBig expands a Bitcoin-style compact difficulty representation
// (the nBits wire encoding) into its full big.Int target value.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := compact >> 24

	var result *big.Int
	if exponent <= 3 {
		result = big.NewInt(int64(mantissa >> (8 * (3 - exponent))))
	} else {
		result = new(big.Int).Lsh(big.NewInt(int64(mantissa)), uint(8*(exponent-3)))
	}
	if compact&0x00800000 != 0 {
		result.Neg(result)
	}
	return result
}
