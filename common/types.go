// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gqtum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package common holds the fixed-size primitives (addresses, hashes) that
// every other package in the engine builds on.
package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// HashLength is the expected length of the state/utxo trie root and of
	// 256-bit storage keys/values.
	HashLength = 32
	// AddressLength is the expected length of an account address.
	AddressLength = 20
)

// Hash represents a 32-byte value.
type Hash [HashLength]byte

// BytesToHash sets b to the rightmost HashLength bytes of b (left-truncated
// or left-padded as needed).
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash parses a hex string (with or without 0x prefix) into a Hash.
func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

// BigToHash sets the hash to the big-endian byte representation of b.
func BigToHash(b *big.Int) Hash { return BytesToHash(b.Bytes()) }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// SetBytes sets the hash to the value of b, right-aligned, truncating from
// the left if b is longer than HashLength.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

func (h Hash) IsZero() bool { return h == Hash{} }

// Address represents the 20-byte address of an account.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) IsZero() bool { return a == Address{} }

// addressHasher computes the Keccak256-based "secure key" used to index an address
// in the account trie. Defined here (rather than in crypto, to avoid an
// import cycle) via a function variable wired up by crypto.init.
var addressHasher func([]byte) Hash

// SetAddressHasher is called once by package crypto to supply the secure
// keying function used by tries keyed on Address.
func SetAddressHasher(f func([]byte) Hash) { addressHasher = f }

// SecureKey returns the secure-trie key for this address.
func (a Address) SecureKey() Hash {
	if addressHasher == nil {
		panic("common: address hasher not initialized; import package crypto")
	}
	return addressHasher(a[:])
}

// RandomAddress draws a cryptographically random 20-byte address. Used by
// the account cache when allocating a fresh contract address.
func RandomAddress() (Address, error) {
	var a Address
	if _, err := rand.Read(a[:]); err != nil {
		return Address{}, fmt.Errorf("common: failed to read random bytes: %w", err)
	}
	return a, nil
}

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// FromHex decodes a hex string, tolerating a leading 0x/0X and an odd
// number of digits (which it left-pads with a zero nibble).
func FromHex(s string) []byte {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
