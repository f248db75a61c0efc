// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import (
	"sort"

	"github.com/qtum-network/gqtum/rlp"
)

// EncodeVinSet RLP-encodes vs as a list of entries, each holding the
// outpoint (txid, vout_index), a negative-sign flag and the amount's
// magnitude; this is the form persisted as the UTXO trie's leaf value.
func EncodeVinSet(vs VinSet) ([]byte, error) {
	out := make([]rlpVinEntry, len(vs))
	for i, e := range vs {
		out[i] = toRLPEntry(e)
	}
	return rlp.EncodeToBytes(out)
}

// DecodeVinSet is the inverse of EncodeVinSet.
func DecodeVinSet(data []byte) (VinSet, error) {
	var raw []rlpVinEntry
	if err := rlp.DecodeBytes(data, &raw); err != nil {
		return nil, err
	}
	vs := make(VinSet, len(raw))
	for i, r := range raw {
		vs[i] = fromRLPEntry(r)
	}
	return vs, nil
}

// sortableVinSet imposes the total order used by SortOutpoints: primary
// key amount DESC, tie-break by u256(txid)+vout_index ASC.
type sortableVinSet VinSet

func (s sortableVinSet) Len() int      { return len(s) }
func (s sortableVinSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s sortableVinSet) Less(i, j int) bool {
	if s[i].Amount != s[j].Amount {
		return s[i].Amount > s[j].Amount
	}
	return s[i].Outpoint.U256().Cmp(s[j].Outpoint.U256()) < 0
}

// SortOutpoints reorders a copy of vs by amount DESC, then by
// u256(txid)+vout_index ASC, and returns it. The identity sentinel at
// index 0 participates in the sort like any other entry: callers that
// must preserve its position sort only vs[1:].
func SortOutpoints(vs VinSet) VinSet {
	cp := vs.Clone()
	sort.Stable(sortableVinSet(cp))
	return cp
}
