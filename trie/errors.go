// Copyright 2017 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package trie

import (
	"errors"
	"fmt"

	"github.com/qtum-network/gqtum/common"
)

// MissingNodeError is returned by the trie functions (TryGet, TryUpdate,
// TryDelete) when a required node is not present in the local database. It
// carries enough information for a caller to request the node from a peer.
type MissingNodeError struct {
	Owner    common.Hash // which of {account trie, utxo trie} this node belongs to
	NodeHash common.Hash // hash of the missing node
	Path     []byte      // hex-encoded path to the missing node
	err      error       // underlying lookup error, if any
}

// Unwrap returns the concrete lookup error, if the node was simply absent
// rather than corrupt.
func (err *MissingNodeError) Unwrap() error { return err.err }

func (err *MissingNodeError) Error() string {
	if err.Owner == (common.Hash{}) {
		return fmt.Sprintf("missing trie node %x (path %x) %v", err.NodeHash, err.Path, err.err)
	}
	return fmt.Sprintf("missing trie node %x (owner %x) (path %x) %v", err.NodeHash, err.Owner, err.Path, err.err)
}

// Block-fatal failure kinds: a block whose trie work hits any of these is
// abandoned with both overlays dropped uncommitted, never retried against
// a single offending transaction.
var (
	// ErrNotEnoughAvailableSpace is reported when the backing store has
	// less than minFreeSpace of headroom left to absorb a commit batch.
	ErrNotEnoughAvailableSpace = errors.New("trie: not enough available space in backing store")
	// ErrDatabaseAlreadyOpen is reported when the backing store's open()
	// call finds another process already holding its lock.
	ErrDatabaseAlreadyOpen = errors.New("trie: database already open (lock held)")
	// ErrInvalidTrie is reported by VerifyIntegrity when a structural scan
	// finds a node reachable from the root that resolves to nothing, or a
	// node referenced by hash that decodes to something other than a
	// well-formed branch/extension/leaf.
	ErrInvalidTrie = errors.New("trie: structural verification failed")
)

// minFreeSpaceBytes is the headroom required before a write is attempted
// against the backing store.
const minFreeSpaceBytes = 1024

// CheckAvailableSpace reports ErrNotEnoughAvailableSpace if free (bytes
// of headroom the backing store reports) falls below the 1 KiB floor
// required before accepting further writes.
func CheckAvailableSpace(free int64) error {
	if free >= 0 && free < minFreeSpaceBytes {
		return ErrNotEnoughAvailableSpace
	}
	return nil
}
