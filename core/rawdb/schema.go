// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package rawdb implements the key-value access layer and the on-disk
// path scheme sitting underneath the engine's two tries: code blobs and
// secure-trie preimages, each under its own key-prefix namespace.
package rawdb

import "github.com/qtum-network/gqtum/common"

// databaseVersion is bumped whenever the on-disk layout changes
// incompatibly; it is folded into the persisted path so an old store is
// never opened by a new layout and silently misread.
const databaseVersion = 1

var (
	codePrefix     = []byte("c") // codePrefix + code hash -> account code
	preimagePrefix = []byte("secure-key-") // preimagePrefix + hash -> preimage
)

func codeKey(hash common.Hash) []byte {
	return append(append([]byte{}, codePrefix...), hash.Bytes()...)
}

func preimageKey(hash common.Hash) []byte {
	return append(append([]byte{}, preimagePrefix...), hash.Bytes()...)
}
