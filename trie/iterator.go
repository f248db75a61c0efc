// Copyright 2015 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package trie

// Iterator walks a trie's key/value pairs in ascending key order via
// depth-first traversal. AccountCache.Addresses uses it to enumerate the
// committed accounts.
type Iterator struct {
	trie  *Trie
	stack []iteratorState
	Key   []byte
	Value []byte
	Err   error

	started bool
}

type iteratorState struct {
	node   node
	child  int
	prefix []byte // accumulated hex-nibble path down to (not including) node
}

func newIterator(t *Trie, start []byte) *Iterator {
	return &Iterator{trie: t}
}

// Next advances the iterator to the following key/value pair, returning
// false once the trie is exhausted.
func (it *Iterator) Next() bool {
	if !it.started {
		it.started = true
		it.stack = append(it.stack, iteratorState{node: it.trie.root, child: -1})
	}
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		switch n := top.node.(type) {
		case nil:
			it.stack = it.stack[:len(it.stack)-1]
		case valueNode:
			it.Value = []byte(n)
			it.Key = hexToKeybytes(top.prefix)
			it.stack = it.stack[:len(it.stack)-1]
			return true
		case *shortNode:
			if top.child == -1 {
				top.child = 0
				childPrefix := append(append([]byte(nil), top.prefix...), n.Key...)
				it.stack = append(it.stack, iteratorState{node: n.Val, child: -1, prefix: childPrefix})
				continue
			}
			it.stack = it.stack[:len(it.stack)-1]
		case *fullNode:
			top.child++
			if top.child > 16 {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}
			child := n.Children[top.child]
			if child == nil {
				continue
			}
			childPrefix := append(append([]byte(nil), top.prefix...), byte(top.child))
			it.stack = append(it.stack, iteratorState{node: child, child: -1, prefix: childPrefix})
		case hashNode:
			resolved, err := it.trie.resolveHash(n, top.prefix)
			if err != nil {
				it.Err = err
				return false
			}
			top.node = resolved
		default:
			it.stack = it.stack[:len(it.stack)-1]
		}
	}
	return false
}
