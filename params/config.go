// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package params holds the per-network constant bundle: message-start
// magic, address prefixes, proof-of-work limits and retargeting
// constants, seed/checkpoint data, and the genesis-block recipe each
// network is anchored on. The bundle is passed by reference into every
// constructor that needs it; there is no process-global selected network.
package params

import (
	"math/big"

	"github.com/qtum-network/gqtum/common"
)

// Base58Prefixes indexes the address-encoding version bytes a network
// uses, mirroring Bitcoin/Qtum's base58Prefixes table.
type Base58Prefixes struct {
	PubkeyAddress uint8
	ScriptAddress uint8
	SecretKey     uint8
	ExtPubkey     [4]byte
	ExtSecretKey  [4]byte
}

// ChainConfig bundles every per-network constant the engine and the
// surrounding node need: wire magic, address prefixes, consensus limits,
// and peer-discovery data.
type ChainConfig struct {
	Name string

	// MessageStart is the four magic bytes prefixing every P2P message
	// on this network.
	MessageStart [4]byte
	DefaultPort  uint16

	Prefixes Base58Prefixes

	// PowLimit and PosLimit are the loosest difficulty targets this
	// network's proof-of-work/proof-of-stake headers may ever claim.
	PowLimit *big.Int
	PosLimit *big.Int

	TargetSpacing          uint32 // seconds between blocks, target
	TargetTimespan         uint32 // seconds per retarget window
	MinerConfirmationWindow uint32
	RuleChangeActivationThreshold uint32

	// DeploymentBits names the soft-fork version bits this network has
	// allocated, by proposal name.
	DeploymentBits map[string]uint8

	FixedSeeds []string
	DNSSeeds   []string

	// Checkpoints maps a block height to the header hash the network
	// has socially agreed is canonical at that height.
	Checkpoints map[uint32]common.Hash

	LastPOWBlock   uint32
	PruningHorizon uint32
}

// DeploymentBit looks up name in cfg's soft-fork bit table.
func (cfg *ChainConfig) DeploymentBit(name string) (uint8, bool) {
	bit, ok := cfg.DeploymentBits[name]
	return bit, ok
}
