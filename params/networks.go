// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package params

import (
	"math/big"

	"github.com/qtum-network/gqtum/common"
)

// mainPowLimitBits/testPowLimitBits/regtestPowLimitBits are the compact
// nBits encodings of each network's loosest allowed target; PosLimit
// reuses the same value.
const (
	mainPowLimitBits = 0x1d00ffff
	testPowLimitBits = 0x1d00ffff
	regtestPowLimitBits = 0x207fffff
)

func limitFromBits(bits uint32) *big.Int { return CompactToBig(bits) }

// MainNetParams is the production Qtum-style network.
var MainNetParams = &ChainConfig{
	Name:         "main",
	MessageStart: [4]byte{0xf1, 0xc8, 0xd2, 0xfd},
	DefaultPort:  3888,
	Prefixes: Base58Prefixes{
		PubkeyAddress: 58, // 'Q'
		ScriptAddress: 50,
		SecretKey:     128 + 58,
		ExtPubkey:     [4]byte{0x04, 0x88, 0xb2, 0x1e},
		ExtSecretKey:  [4]byte{0x04, 0x88, 0xad, 0xe4},
	},
	PowLimit:                      limitFromBits(mainPowLimitBits),
	PosLimit:                      limitFromBits(mainPowLimitBits),
	TargetSpacing:                 150,
	TargetTimespan:                16 * 60,
	MinerConfirmationWindow:       2016,
	RuleChangeActivationThreshold: 1916,
	DeploymentBits: map[string]uint8{
		"csv":      0,
		"segwit":   1,
		"taproot":  2,
	},
	FixedSeeds:     []string{},
	DNSSeeds:       []string{"dnsseed.qtum.info", "dnsseed.qtum.org"},
	Checkpoints:    map[uint32]common.Hash{},
	LastPOWBlock:   5000,
	PruningHorizon: 288,
}

// TestNetParams is the public test network: looser difficulty, distinct
// address prefixes so test and main addresses can never collide.
var TestNetParams = &ChainConfig{
	Name:         "test",
	MessageStart: [4]byte{0x0d, 0x22, 0x15, 0x06},
	DefaultPort:  13888,
	Prefixes: Base58Prefixes{
		PubkeyAddress: 120, // 'q'
		ScriptAddress: 110,
		SecretKey:     239,
		ExtPubkey:     [4]byte{0x04, 0x35, 0x87, 0xcf},
		ExtSecretKey:  [4]byte{0x04, 0x35, 0x83, 0x94},
	},
	PowLimit:                      limitFromBits(testPowLimitBits),
	PosLimit:                      limitFromBits(testPowLimitBits),
	TargetSpacing:                 150,
	TargetTimespan:                16 * 60,
	MinerConfirmationWindow:       2016,
	RuleChangeActivationThreshold: 1512,
	DeploymentBits: map[string]uint8{
		"csv":     0,
		"segwit":  1,
		"taproot": 2,
	},
	FixedSeeds:     []string{},
	DNSSeeds:       []string{"testnet-dnsseed.qtum.info"},
	Checkpoints:    map[uint32]common.Hash{},
	LastPOWBlock:   5000,
	PruningHorizon: 288,
}

// RegtestParams is the local regression-test network: no real proof-of-
// work difficulty, no peer discovery, soft forks always active.
var RegtestParams = &ChainConfig{
	Name:         "regtest",
	MessageStart: [4]byte{0xfa, 0xbf, 0xb5, 0xda},
	DefaultPort:  23888,
	Prefixes: Base58Prefixes{
		PubkeyAddress: 120,
		ScriptAddress: 110,
		SecretKey:     239,
		ExtPubkey:     [4]byte{0x04, 0x35, 0x87, 0xcf},
		ExtSecretKey:  [4]byte{0x04, 0x35, 0x83, 0x94},
	},
	PowLimit:                      limitFromBits(regtestPowLimitBits),
	PosLimit:                      limitFromBits(regtestPowLimitBits),
	TargetSpacing:                 150,
	TargetTimespan:                16 * 60,
	MinerConfirmationWindow:       144,
	RuleChangeActivationThreshold: 108,
	DeploymentBits: map[string]uint8{
		"csv":     0,
		"segwit":  1,
		"taproot": 2,
	},
	FixedSeeds:     nil,
	DNSSeeds:       nil,
	Checkpoints:    map[uint32]common.Hash{},
	LastPOWBlock:   0,
	PruningHorizon: 144,
}

// MainnetGenesis, TestnetGenesis and RegtestGenesis are each network's
// genesis block: version 1, timestamp 1231006505 (main) or 1296688602
// (test and regtest), and a
// nonce intended to satisfy that network's PowLimit. Any caller that
// changes a consensus constant above, or that cannot otherwise trust the
// hardcoded nonce, should run MakeItGenesis to re-derive it before use.
var (
	MainnetGenesis  = CreateGenesisBlock(mainPowLimitBits, 2081282638, 1, 1231006505, 50*Coin)
	TestnetGenesis  = CreateGenesisBlock(testPowLimitBits, 414098458, 1, 1296688602, 50*Coin)
	RegtestGenesis  = CreateGenesisBlock(regtestPowLimitBits, 0, 1, 1296688602, 50*Coin)
)
