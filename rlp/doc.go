// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package rlp implements the subset of Ethereum's Recursive Length Prefix
// encoding the engine needs: byte strings, unsigned integers, and ordered
// lists (including nested lists and structs encoded as lists of their
// fields). It backs both trie node encoding and the account/VinSet value
// encoding described in the state and utxostate packages.
package rlp
