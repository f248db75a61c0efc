// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package crypto

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/qtum-network/gqtum/common"
)

// ErrInvalidSignature is returned by RecoverSender when the signature does
// not verify against any recoverable public key.
var ErrInvalidSignature = errors.New("crypto: invalid secp256k1 signature")

// RecoverSender recovers the 20-byte address that produced sig over hash,
// using the same compact-signature recovery scheme as the surrounding
// Bitcoin-family node's message signing. Backs the signature admission
// check a VM implementation performs in Initialize.
func RecoverSender(hash common.Hash, sig []byte) (common.Address, error) {
	pub, _, err := ecdsa.RecoverCompact(sig, hash.Bytes())
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return PubkeyToAddress(pub), nil
}

// PubkeyToAddress derives the 20-byte pay-to-pubkey-hash style address for
// pub: RIPEMD160(SHA256(serialized-compressed-pubkey)), the Bitcoin-family
// convention this engine's synthesized transactions already assume for
// every ContractToPubkeyhash output.
func PubkeyToAddress(pub *btcec.PublicKey) common.Address {
	return common.BytesToAddress(Ripemd160(Sha256(pub.SerializeCompressed())))
}
