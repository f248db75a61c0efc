// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package trie

import (
	"fmt"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/rlp"
)

// node is the in-memory representation of one trie node. The concrete
// types are fullNode (a 16-ary branch plus value slot), shortNode (an
// extension or leaf holding a compacted nibble path), hashNode (a pointer
// to a child stored only by its hash) and valueNode (a raw leaf value).
type node interface {
	fstring(string) string
	cache() (hashNode, bool)
}

type (
	fullNode struct {
		Children [17]node
		flags    nodeFlag
	}
	shortNode struct {
		Key   []byte
		Val   node
		flags nodeFlag
	}
	hashNode  []byte
	valueNode []byte
)

// nodeFlag tracks caching and dirtiness metadata for a node that isn't
// persisted as part of the node's own RLP encoding.
type nodeFlag struct {
	hash  hashNode
	dirty bool
}

func (n *fullNode) copy() *fullNode   { c := *n; return &c }
func (n *shortNode) copy() *shortNode { c := *n; return &c }

func (n *fullNode) cache() (hashNode, bool)  { return n.flags.hash, n.flags.dirty }
func (n *shortNode) cache() (hashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n hashNode) cache() (hashNode, bool)   { return nil, true }
func (n valueNode) cache() (hashNode, bool)  { return nil, true }

func (n *fullNode) fstring(ind string) string {
	resp := fmt.Sprintf("[\n%s  ", ind)
	for i, node := range &n.Children {
		if node == nil {
			resp += fmt.Sprintf("%s: <nil> ", indices[i])
			continue
		}
		resp += fmt.Sprintf("%s: %v", indices[i], node.fstring(ind+"  "))
	}
	return resp + fmt.Sprintf("\n%s] ", ind)
}
func (n *shortNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v} ", n.Key, n.Val.fstring(ind+"  "))
}
func (n hashNode) fstring(ind string) string  { return fmt.Sprintf("<%x> ", []byte(n)) }
func (n valueNode) fstring(ind string) string { return fmt.Sprintf("%x ", []byte(n)) }

var indices = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f", "[17]"}

// encodeNode produces a node's RLP wire shape: a 2-element list for short
// nodes, a 17-element list for full nodes.
func encodeNode(n node) ([]byte, error) {
	switch n := n.(type) {
	case *fullNode:
		var items []interface{}
		for _, c := range n.Children {
			items = append(items, encodeChild(c))
		}
		return rlp.EncodeToBytes(rawList(items))
	case *shortNode:
		return rlp.EncodeToBytes(rawList([]interface{}{hexToCompact(n.Key), encodeChild(n.Val)}))
	case hashNode:
		return rlp.EncodeToBytes([]byte(n))
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	case nil:
		return rlp.EncodeToBytes([]byte(nil))
	default:
		return nil, fmt.Errorf("trie: unsupported node type %T", n)
	}
}

// encodeChild returns the RLP-encodable representation of a child slot:
// raw bytes for hash/value nodes, the child's computed hash when the
// hasher already replaced it out-of-line, or the full sub-node encoding
// embedded verbatim when it is smaller than a hash.
func encodeChild(n node) interface{} {
	switch n := n.(type) {
	case nil:
		return []byte(nil)
	case hashNode:
		return []byte(n)
	case valueNode:
		return []byte(n)
	default:
		if hn, _ := n.cache(); hn != nil {
			return []byte(hn)
		}
		enc, err := encodeNode(n)
		if err != nil {
			panic(err)
		}
		return rlp.Raw(enc)
	}
}

// rawList marks a slice as already being the ordered element list of an
// RLP list, rather than a value to recurse into.
type rawList []interface{}

func decodeNode(hash, buf []byte) (node, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("trie: decodeNode: empty buffer")
	}
	items, rest, err := rlp.SplitList(buf)
	if err != nil {
		return decodeValueOrHash(buf)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trie: decodeNode: trailing data after node")
	}
	switch len(items) {
	case 2:
		return decodeShort(hash, items)
	case 17:
		return decodeFull(hash, items)
	default:
		return nil, fmt.Errorf("trie: invalid node list length %d", len(items))
	}
}

func decodeValueOrHash(buf []byte) (node, error) {
	content, _, err := rlp.SplitString(buf)
	if err != nil {
		return nil, err
	}
	if len(content) == common.HashLength {
		return hashNode(common.CopyBytes(content)), nil
	}
	return valueNode(common.CopyBytes(content)), nil
}

func decodeShort(hash []byte, items [][]byte) (node, error) {
	kbuf, _, err := rlp.SplitString(items[0])
	if err != nil {
		return nil, err
	}
	key := compactToHex(kbuf)
	if hasTerm(key) {
		val, _, err := rlp.SplitString(items[1])
		if err != nil {
			return nil, err
		}
		return &shortNode{Key: key, Val: valueNode(common.CopyBytes(val)), flags: nodeFlag{hash: hash}}, nil
	}
	child, err := decodeRef(items[1])
	if err != nil {
		return nil, err
	}
	return &shortNode{Key: key, Val: child, flags: nodeFlag{hash: hash}}, nil
}

func decodeFull(hash []byte, items [][]byte) (*fullNode, error) {
	n := &fullNode{flags: nodeFlag{hash: hash}}
	for i := 0; i < 16; i++ {
		child, err := decodeRef(items[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	valItem, _, err := rlp.SplitString(items[16])
	if err == nil && len(valItem) > 0 {
		n.Children[16] = valueNode(common.CopyBytes(valItem))
	}
	return n, nil
}

func decodeRef(buf []byte) (node, error) {
	content, _, err := rlp.SplitString(buf)
	if err == nil {
		if len(content) == 0 {
			return nil, nil
		}
		if len(content) == common.HashLength {
			return hashNode(common.CopyBytes(content)), nil
		}
		return valueNode(common.CopyBytes(content)), nil
	}
	if err == rlp.ErrExpectedString {
		return decodeNode(nil, buf)
	}
	return nil, err
}
