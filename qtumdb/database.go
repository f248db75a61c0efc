// Copyright 2018 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package qtumdb defines the key-value store interfaces the persisted
// account trie, UTXO trie, and code/header storage are built on, plus
// in-memory and LevelDB-backed implementations.
package qtumdb

import "io"

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing data store.
type KeyValueWriter interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// KeyValueStater wraps the Stat method of a backing data store.
type KeyValueStater interface {
	Stat(property string) (string, error)
}

// Compacter wraps the Compact method of a backing data store.
type Compacter interface {
	Compact(start []byte, limit []byte) error
}

// KeyValueStore contains all the methods required to allow handling different
// key-value data stores backing the engine's persisted state.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	KeyValueStater
	Compacter
	Batcher
	Iteratee
	io.Closer
}

// Batch is a write-only operation accumulator that is committed atomically
// to its parent database once Write is called.
type Batch interface {
	KeyValueWriter

	// ValueSize retrieves the amount of data queued up for writing.
	ValueSize() int

	// Write flushes any accumulated data to disk.
	Write() error

	// Reset resets the batch for reuse.
	Reset()

	// Replay replays the batch contents.
	Replay(w KeyValueWriter) error
}

// Batcher wraps the NewBatch method of a backing data store.
type Batcher interface {
	NewBatch() Batch
}

// Iterator iterates over a database's key/value pairs in ascending order.
type Iterator interface {
	Next() bool
	Error() error
	Key() []byte
	Value() []byte
	Release()
}

// Iteratee wraps the NewIterator method of a backing data store.
type Iteratee interface {
	NewIterator(prefix []byte, start []byte) Iterator
}

// Snapshot is a frozen, read-only view of the store at the moment it was
// taken, unaffected by later writes. Release must be called when done.
type Snapshot interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Release()
}

// Snapshotter wraps the NewSnapshot method of a backing data store.
type Snapshotter interface {
	NewSnapshot() (Snapshot, error)
}
