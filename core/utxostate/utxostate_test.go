// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package utxostate

import (
	"testing"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/qtumdb/memorydb"
	"github.com/qtum-network/gqtum/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *UTXOCache {
	t.Helper()
	db := trie.NewDatabase(memorydb.New())
	c, err := New(common.Hash{}, db)
	require.NoError(t, err)
	return c
}

func sentinel() types.VinEntry {
	return types.VinEntry{Outpoint: types.NewOutpoint(common.Hash{}, 0), Amount: 0}
}

func TestAddVinPreservesOrder(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	require.NoError(t, c.AddVin(addr, sentinel()))
	require.NoError(t, c.AddVin(addr, types.VinEntry{Outpoint: types.NewOutpoint(common.Hash{1}, 0), Amount: 10}))
	require.NoError(t, c.AddVin(addr, types.VinEntry{Outpoint: types.NewOutpoint(common.Hash{2}, 0), Amount: 20}))

	vins, err := c.GetVins(addr)
	require.NoError(t, err)
	require.Len(t, vins, 3)
	assert.Equal(t, int64(0), vins[0].Amount)
	assert.Equal(t, int64(10), vins[1].Amount)
	assert.Equal(t, int64(20), vins[2].Amount)
}

func TestSubVinsPreservesSentinel(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	require.NoError(t, c.AddVin(addr, sentinel()))
	require.NoError(t, c.AddVin(addr, types.VinEntry{Outpoint: types.NewOutpoint(common.Hash{1}, 0), Amount: 10}))
	require.NoError(t, c.AddVin(addr, types.VinEntry{Outpoint: types.NewOutpoint(common.Hash{2}, 0), Amount: 20}))

	require.NoError(t, c.SubVins(addr, 1))

	vins, err := c.GetVins(addr)
	require.NoError(t, err)
	require.Len(t, vins, 2)
	assert.Equal(t, int64(0), vins[0].Amount)
	assert.Equal(t, int64(20), vins[1].Amount)
}

func TestSubVinsNotEnoughCash(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	require.NoError(t, c.AddVin(addr, sentinel()))
	err := c.SubVins(addr, 1)
	assert.ErrorIs(t, err, ErrNotEnoughCash)
}

func TestSelectOutputsSkipsSentinel(t *testing.T) {
	vins := types.VinSet{
		{Outpoint: types.NewOutpoint(common.Hash{}, 0), Amount: 0},
		{Outpoint: types.NewOutpoint(common.Hash{1}, 0), Amount: 30},
		{Outpoint: types.NewOutpoint(common.Hash{2}, 0), Amount: 40},
	}

	selected, sum := SelectOutputs(vins, 50)
	assert.Equal(t, int64(70), sum)
	require.Len(t, selected, 2)
	assert.Equal(t, int64(30), selected[0].Amount)
}

func TestSortOutpointsAmountDescending(t *testing.T) {
	vins := types.VinSet{
		{Outpoint: types.NewOutpoint(common.Hash{1}, 0), Amount: 10},
		{Outpoint: types.NewOutpoint(common.Hash{2}, 0), Amount: 50},
		{Outpoint: types.NewOutpoint(common.Hash{3}, 0), Amount: 30},
	}

	sorted := types.SortOutpoints(vins)
	assert.Equal(t, int64(50), sorted[0].Amount)
	assert.Equal(t, int64(30), sorted[1].Amount)
	assert.Equal(t, int64(10), sorted[2].Amount)
}

func TestSortOutpointsTiebreakByU256(t *testing.T) {
	low := types.NewOutpoint(common.Hash{0x01}, 0)
	high := types.NewOutpoint(common.Hash{0x02}, 0)

	vins := types.VinSet{
		{Outpoint: high, Amount: 10},
		{Outpoint: low, Amount: 10},
	}

	sorted := types.SortOutpoints(vins)
	assert.Equal(t, low, sorted[0].Outpoint)
	assert.Equal(t, high, sorted[1].Outpoint)
}

func TestCommitUTXORemovesDeadAddress(t *testing.T) {
	c := newTestCache(t)
	alive := common.HexToAddress("0x1111111111111111111111111111111111111111")
	dead := common.HexToAddress("0x2222222222222222222222222222222222222222")

	require.NoError(t, c.AddVin(alive, sentinel()))
	require.NoError(t, c.AddVin(dead, sentinel()))

	isAlive := func(addr common.Address) bool { return addr == alive }
	_, _, err := c.CommitUTXO(isAlive)
	require.NoError(t, err)

	vins, err := c.GetVins(dead)
	require.NoError(t, err)
	assert.Empty(t, vins)

	vins, err = c.GetVins(alive)
	require.NoError(t, err)
	assert.Len(t, vins, 1)
}

func TestEvictDiscardsUncommittedEntry(t *testing.T) {
	c := newTestCache(t)
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	require.NoError(t, c.AddVin(addr, sentinel()))
	c.Evict(addr)

	vins, err := c.GetVins(addr)
	require.NoError(t, err)
	assert.Empty(t, vins)
}
