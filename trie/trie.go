// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package trie implements the authenticated Merkle-Patricia trie used by
// both the account state cache and the UTXO-set cache. Two independent
// Trie instances, each with its own Database overlay, are committed back
// to back for every block so their roots can be folded into the header.
package trie

import (
	"bytes"
	"fmt"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/crypto"
)

// EmptyRoot is the known root hash of an empty trie, i.e. SHA3(RLP("")).
var EmptyRoot = common.BytesToHash([]byte{0x56, 0xe8, 0x1f, 0x17, 0x1b, 0xcc, 0x55, 0xa6, 0xff, 0x83, 0x45, 0xe6, 0x92, 0xc0, 0xf8, 0x6e, 0x5b, 0x48, 0xe0, 0x1b, 0x99, 0x6c, 0xad, 0xc0, 0x01, 0x62, 0x2f, 0xb5, 0xe3, 0x63, 0xb4, 0x21})

// Trie is a Merkle-Patricia trie mapping arbitrary byte keys to arbitrary
// byte values, with a root hash that authenticates its entire contents.
type Trie struct {
	db   *Database
	root node
}

// New opens a trie rooted at root in db. A zero root opens a fresh, empty
// trie.
func New(root common.Hash, db *Database) (*Trie, error) {
	t := &Trie{db: db}
	if root != (common.Hash{}) && root != EmptyRoot {
		rootnode, err := t.resolveHash(root[:], nil)
		if err != nil {
			return nil, err
		}
		t.root = rootnode
	}
	return t, nil
}

// Get returns the value stored at key, or nil if no such key exists.
func (t *Trie) Get(key []byte) []byte {
	res, err := t.TryGet(key)
	if err != nil {
		return nil
	}
	return res
}

// TryGet returns the value stored at key, or a MissingNodeError if a
// needed node could not be resolved.
func (t *Trie) TryGet(key []byte) ([]byte, error) {
	value, newroot, didResolve, err := t.tryGet(t.root, keybytesToHex(key), 0)
	if err == nil && didResolve {
		t.root = newroot
	}
	return value, err
}

func (t *Trie) tryGet(origNode node, key []byte, pos int) (value []byte, newnode node, didResolve bool, err error) {
	switch n := origNode.(type) {
	case nil:
		return nil, nil, false, nil
	case valueNode:
		return n, n, false, nil
	case *shortNode:
		if len(key)-pos < len(n.Key) || !bytes.Equal(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		value, newnode, didResolve, err = t.tryGet(n.Val, key, pos+len(n.Key))
		if err == nil && didResolve {
			n = n.copy()
			n.Val = newnode
		}
		return value, n, didResolve, err
	case *fullNode:
		value, newnode, didResolve, err = t.tryGet(n.Children[key[pos]], key, pos+1)
		if err == nil && didResolve {
			n = n.copy()
			n.Children[key[pos]] = newnode
		}
		return value, n, didResolve, err
	case hashNode:
		child, err := t.resolveHash(n, key[:pos])
		if err != nil {
			return nil, n, true, err
		}
		value, newnode, _, err := t.tryGet(child, key, pos)
		return value, newnode, true, err
	default:
		panic(fmt.Sprintf("trie: unexpected node type %T", origNode))
	}
}

// Update associates key with value, replacing any existing value.
// A nil or zero-length value deletes the key.
func (t *Trie) Update(key, value []byte) { _ = t.TryUpdate(key, value) }

// TryUpdate associates key with value in the trie, replacing any existing
// value. A zero-length value deletes the key instead.
func (t *Trie) TryUpdate(key, value []byte) error {
	k := keybytesToHex(key)
	if len(value) != 0 {
		_, n, err := t.insert(t.root, k, valueNode(value))
		if err != nil {
			return err
		}
		t.root = n
		return nil
	}
	_, n, err := t.delete(t.root, k)
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) insert(n node, key []byte, value node) (bool, node, error) {
	if len(key) == 0 {
		if v, ok := n.(valueNode); ok {
			return !bytes.Equal(v, value.(valueNode)), value, nil
		}
		return true, value, nil
	}
	switch n := n.(type) {
	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen == len(n.Key) {
			dirty, nn, err := t.insert(n.Val, key[matchlen:], value)
			if !dirty || err != nil {
				return false, n, err
			}
			return true, &shortNode{n.Key, nn, nodeFlag{dirty: true}}, nil
		}
		branch := &fullNode{flags: nodeFlag{dirty: true}}
		var err error
		_, branch.Children[n.Key[matchlen]], err = t.insert(nil, n.Key[matchlen+1:], n.Val)
		if err != nil {
			return false, nil, err
		}
		_, branch.Children[key[matchlen]], err = t.insert(nil, key[matchlen+1:], value)
		if err != nil {
			return false, nil, err
		}
		if matchlen == 0 {
			return true, branch, nil
		}
		return true, &shortNode{key[:matchlen], branch, nodeFlag{dirty: true}}, nil
	case *fullNode:
		dirty, nn, err := t.insert(n.Children[key[0]], key[1:], value)
		if !dirty || err != nil {
			return false, n, err
		}
		n = n.copy()
		n.flags.dirty = true
		n.Children[key[0]] = nn
		return true, n, nil
	case nil:
		return true, &shortNode{append([]byte(nil), key...), value, nodeFlag{dirty: true}}, nil
	case hashNode:
		rn, err := t.resolveHash(n, key)
		if err != nil {
			return false, nil, err
		}
		dirty, nn, err := t.insert(rn, key, value)
		if !dirty || err != nil {
			return false, rn, err
		}
		return true, nn, nil
	default:
		panic(fmt.Sprintf("trie: unexpected node type %T", n))
	}
}

// Delete removes any value associated with key.
func (t *Trie) Delete(key []byte) { _ = t.TryDelete(key) }

// TryDelete removes any value associated with key.
func (t *Trie) TryDelete(key []byte) error {
	k := keybytesToHex(key)
	_, n, err := t.delete(t.root, k)
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) delete(n node, key []byte) (bool, node, error) {
	switch n := n.(type) {
	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen < len(n.Key) {
			return false, n, nil
		}
		if matchlen == len(key) {
			return true, nil, nil
		}
		dirty, child, err := t.delete(n.Val, key[len(n.Key):])
		if !dirty || err != nil {
			return false, n, err
		}
		switch child := child.(type) {
		case *shortNode:
			return true, &shortNode{concat(n.Key, child.Key...), child.Val, nodeFlag{dirty: true}}, nil
		default:
			return true, &shortNode{n.Key, child, nodeFlag{dirty: true}}, nil
		}
	case *fullNode:
		dirty, nn, err := t.delete(n.Children[key[0]], key[1:])
		if !dirty || err != nil {
			return false, n, err
		}
		n = n.copy()
		n.flags.dirty = true
		n.Children[key[0]] = nn

		pos := -1
		for i, cld := range &n.Children {
			if cld != nil {
				if pos == -1 {
					pos = i
				} else {
					pos = -2
					break
				}
			}
		}
		if pos >= 0 {
			if pos != 16 {
				cnode, err := t.resolve(n.Children[pos], key)
				if err != nil {
					return false, nil, err
				}
				if cnode, ok := cnode.(*shortNode); ok {
					k := append([]byte{byte(pos)}, cnode.Key...)
					return true, &shortNode{k, cnode.Val, nodeFlag{dirty: true}}, nil
				}
			}
			return true, &shortNode{[]byte{byte(pos)}, n.Children[pos], nodeFlag{dirty: true}}, nil
		}
		return true, n, nil
	case valueNode:
		return true, nil, nil
	case nil:
		return false, nil, nil
	case hashNode:
		rn, err := t.resolveHash(n, key)
		if err != nil {
			return false, nil, err
		}
		dirty, nn, err := t.delete(rn, key)
		if !dirty || err != nil {
			return false, rn, err
		}
		return true, nn, nil
	default:
		panic(fmt.Sprintf("trie: unexpected node type %T", n))
	}
}

func concat(s1 []byte, s2 ...byte) []byte {
	r := make([]byte, len(s1)+len(s2))
	copy(r, s1)
	copy(r[len(s1):], s2)
	return r
}

func (t *Trie) resolve(n node, prefix []byte) (node, error) {
	if n, ok := n.(hashNode); ok {
		return t.resolveHash(n, prefix)
	}
	return n, nil
}

func (t *Trie) resolveHash(n hashNode, prefix []byte) (node, error) {
	hash := common.BytesToHash(n)
	blob, err := t.db.Node(hash)
	if err != nil || blob == nil {
		return nil, &MissingNodeError{NodeHash: hash, Path: prefix, err: err}
	}
	return decodeNode(n, blob)
}

// Hash returns the root hash of the trie, rehashing dirty nodes without
// writing them to the underlying database. Call Commit to persist.
func (t *Trie) Hash() common.Hash {
	if t.root == nil {
		return EmptyRoot
	}
	h := newHasher()
	hashed, cached := h.hash(t.root, true)
	t.root = cached
	hn, ok := hashed.(hashNode)
	if !ok {
		enc, _ := encodeNode(hashed)
		return common.BytesToHash(crypto.Keccak256(enc))
	}
	return common.BytesToHash(hn)
}

// Commit hashes the trie and writes every dirty node into the underlying
// Database's overlay, returning the new root hash. The caller must still
// call db.Commit to flush the overlay to disk.
func (t *Trie) Commit() (common.Hash, error) {
	if t.root == nil {
		return EmptyRoot, nil
	}
	h := newHasher()
	hashed, cached := h.hash(t.root, true)
	if err := t.commitNode(cached); err != nil {
		return common.Hash{}, err
	}
	t.root = cached
	if hn, ok := hashed.(hashNode); ok {
		return common.BytesToHash(hn), nil
	}
	enc, _ := encodeNode(hashed)
	return common.BytesToHash(crypto.Keccak256(enc)), nil
}

func (t *Trie) commitNode(n node) error {
	switch n := n.(type) {
	case *shortNode:
		if err := t.commitChild(n.Val); err != nil {
			return err
		}
		if n.flags.hash != nil {
			enc, err := encodeNode(n)
			if err != nil {
				return err
			}
			t.db.insert(common.BytesToHash(n.flags.hash), enc)
		}
		return nil
	case *fullNode:
		for _, c := range n.Children {
			if err := t.commitChild(c); err != nil {
				return err
			}
		}
		if n.flags.hash != nil {
			enc, err := encodeNode(n)
			if err != nil {
				return err
			}
			t.db.insert(common.BytesToHash(n.flags.hash), enc)
		}
		return nil
	default:
		return nil
	}
}

func (t *Trie) commitChild(n node) error {
	switch n := n.(type) {
	case *shortNode, *fullNode:
		return t.commitNode(n)
	default:
		return nil
	}
}

// Root returns the current root hash as a byte slice; like Hash, it
// rehashes any dirty nodes to compute it.
func (t *Trie) Root() []byte {
	return t.Hash().Bytes()
}

// NodeIterator returns an iterator that walks every key/value pair of the
// trie in key order. startKey is ignored: iteration always begins at the
// smallest key.
func (t *Trie) NodeIterator(startKey []byte) *Iterator {
	return newIterator(t, startKey)
}

// VerifyIntegrity walks every node reachable from the root, resolving
// every hash reference against the backing database, and reports
// ErrInvalidTrie (wrapping the first dangling reference found) if any
// node cannot be resolved. Intended to run after reopening the trie at a
// caller-supplied root.
func (t *Trie) VerifyIntegrity() error {
	return t.verifyNode(t.root, nil)
}

func (t *Trie) verifyNode(n node, prefix []byte) error {
	switch n := n.(type) {
	case nil, valueNode:
		return nil
	case hashNode:
		resolved, err := t.resolveHash(n, prefix)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTrie, err)
		}
		return t.verifyNode(resolved, prefix)
	case *shortNode:
		return t.verifyNode(n.Val, append(prefix, n.Key...))
	case *fullNode:
		for i, child := range n.Children {
			if child == nil {
				continue
			}
			childPrefix := prefix
			if i < 16 {
				childPrefix = append(append([]byte{}, prefix...), byte(i))
			}
			if err := t.verifyNode(child, childPrefix); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unrecognized node type %T", ErrInvalidTrie, n)
	}
}
