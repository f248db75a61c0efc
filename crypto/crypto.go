// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package crypto wraps the hash primitives the engine needs: Keccak256 for
// secure trie keying and RLP-adjacent hashing, and SHA256+RIPEMD160 for
// Bitcoin-style contract-address derivation.
package crypto

import (
	"crypto/sha256"

	"github.com/qtum-network/gqtum/common"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for bit-exact qtum address derivation
	"golang.org/x/crypto/sha3"
)

// EmptySHA3 is the Keccak256 hash of the empty byte string; the sentinel
// code-hash for accounts that have never held code.
var EmptySHA3 = Keccak256Hash(nil)

func init() {
	common.SetAddressHasher(func(data []byte) common.Hash { return Keccak256Hash(data) })
}

// Keccak256 computes the Keccak256 hash (as used throughout Ethereum-family
// tries) of the concatenation of the given byte slices.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash computes Keccak256 and returns it as a common.Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h common.Hash
	d.Sum(h[:0])
	return h
}

// Sha256 computes the plain (single round) SHA256 digest of data.
func Sha256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Sha256d computes the double SHA256 digest of data, the hash Bitcoin-
// family headers and transactions are identified by.
func Sha256d(data []byte) common.Hash {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return common.Hash(second)
}

// Ripemd160 computes the RIPEMD160 digest of data.
func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// QtumAddress derives a new contract address from the originating
// transaction's outpoint: RIPEMD160(SHA256(txid || vout_index_as_byte)).
//
// vout is encoded as a single byte; a creating transaction's output
// index is always small.
func QtumAddress(txid common.Hash, vout uint32) common.Address {
	buf := make([]byte, 0, common.HashLength+1)
	buf = append(buf, txid.Bytes()...)
	buf = append(buf, byte(vout))
	return common.BytesToAddress(Ripemd160(Sha256(buf)))
}
