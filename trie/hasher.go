// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package trie

import "github.com/qtum-network/gqtum/crypto"

// hasher turns an in-memory node tree into its committed form: every child
// pointer whose encoding is 32 bytes or longer becomes a hashNode (shorter
// children stay embedded in their parent), and the returned node carries its own
// computed hash in its flags so Commit doesn't need to recompute it.
type hasher struct {
	tmp []byte
}

func newHasher() *hasher { return &hasher{} }

// hash descends into n, hashing children first (bottom-up), and returns
// the hashNode reference plus the (possibly replaced) cached node carrying
// its computed hash in its flags. dirty nodes are always rehashed; clean
// ones reuse their cached hash.
func (h *hasher) hash(n node, force bool) (hashed, cached node) {
	if n == nil {
		return nil, nil
	}
	hashv, dirty := n.cache()
	if hashv != nil && !dirty {
		return hashv, n
	}
	switch n := n.(type) {
	case *shortNode:
		collapsed, cached := h.hashShortNodeChildren(n)
		hashed := h.computeHash(collapsed, force)
		if hn, ok := hashed.(hashNode); ok {
			cached.flags.hash = hn
			return hn, cached
		}
		cached.flags.hash = nil
		return hashed, cached
	case *fullNode:
		collapsed, cached := h.hashFullNodeChildren(n)
		hashed := h.computeHash(collapsed, force)
		if hn, ok := hashed.(hashNode); ok {
			cached.flags.hash = hn
			return hn, cached
		}
		cached.flags.hash = nil
		return hashed, cached
	default:
		return n, n
	}
}

// hashShortNodeChildren replaces the child subtree with its hash reference
// in the collapsed copy; key compaction happens inside encodeNode so the
// collapsed and cached forms stay byte-identical when re-encoded at commit.
func (h *hasher) hashShortNodeChildren(n *shortNode) (collapsed, cached *shortNode) {
	collapsed, cached = n.copy(), n.copy()
	collapsed.flags = nodeFlag{}
	cached.Key = append([]byte(nil), n.Key...)
	if _, ok := n.Val.(valueNode); !ok {
		collapsed.Val, cached.Val = h.hash(n.Val, false)
	}
	return collapsed, cached
}

func (h *hasher) hashFullNodeChildren(n *fullNode) (collapsed, cached *fullNode) {
	cached = n.copy()
	collapsed = n.copy()
	collapsed.flags = nodeFlag{}
	for i := 0; i < 16; i++ {
		if n.Children[i] != nil {
			collapsed.Children[i], cached.Children[i] = h.hash(n.Children[i], false)
		}
	}
	return collapsed, cached
}

// computeHash RLP-encodes the (already collapsed) node and hashes it with
// Keccak256. A node whose encoding is shorter than a hash is returned as
// is, so its parent embeds it inline; force (used for the root) hashes it
// regardless of size.
func (h *hasher) computeHash(n node, force bool) node {
	enc, err := encodeNode(n)
	if err != nil {
		panic(err)
	}
	if len(enc) < 32 && !force {
		return n
	}
	return hashNode(crypto.Keccak256(enc))
}
