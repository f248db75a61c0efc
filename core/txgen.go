// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package core

import (
	"errors"
	"math/big"

	"github.com/qtum-network/gqtum/common"
	"github.com/qtum-network/gqtum/core/types"
	"github.com/qtum-network/gqtum/core/utxostate"
)

// ErrOutputsExceedValue is returned when a contract's VinSet cannot cover
// a pending transfer even after SelectOutputs walks the whole set.
var ErrOutputsExceedValue = errors.New("core: insufficient VinSet balance for transfer")

// synthesize materializes one pending value transfer as a Bitcoin-format
// transaction: the sender's VinSet funds the inputs, the receiver gets a
// new outpoint sized to the transfer, and any excess selected value
// returns to the sender as a change output.
func (e *Executive) synthesize(env EnvInfo, from, to common.Address, value *big.Int) (*types.CTransaction, error) {
	if value.Sign() <= 0 {
		return nil, nil
	}
	amount := value.Int64()

	vins, err := e.state.Vins.GetVins(from)
	if err != nil {
		return nil, err
	}
	selected, sum := utxostate.SelectOutputs(vins, amount)
	if sum < amount {
		return nil, ErrOutputsExceedValue
	}

	// The output template keys on addressInUse(receiver) — any account
	// the account cache has materialized, not specifically one carrying
	// code — rather than a code-hash check.
	receiverInUse, err := e.state.Accounts.AddressInUse(to)
	if err != nil {
		return nil, err
	}

	ctx := &types.CTransaction{Version: 1}
	ctx.Vin = createInputs(selected)
	ctx.Vout = createOutputs(env, from, to, amount, sum, receiverInUse)

	if err := e.state.Vins.SubVins(from, len(selected)); err != nil {
		return nil, err
	}

	txid, err := ctx.Hash()
	if err != nil {
		return nil, err
	}
	// savedVinToAccount: the receiver output only gets tracked back into a
	// VinSet when it is the contract-to-contract template — a plain
	// pay-to-pubkey-hash output pays an address this engine doesn't keep a
	// VinSet for.
	if !ctx.Vout[0].ScriptPubKey.IsPayToPubkeyHash() {
		entry := types.VinEntry{Outpoint: types.NewOutpoint(txid, 0), Amount: ctx.Vout[0].Value}
		if err := e.state.Vins.AddVin(to, entry); err != nil {
			return nil, err
		}
	}
	if len(ctx.Vout) > 1 {
		entry := types.VinEntry{Outpoint: types.NewOutpoint(txid, 1), Amount: ctx.Vout[1].Value}
		if err := e.state.Vins.AddVin(from, entry); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// createInputs wraps each selected VinSet entry as a CTxIn, authorized by
// the OP_TXHASH sentinel script rather than a signature: the executive,
// not an external signer, is the sole author of these inputs.
func createInputs(selected types.VinSet) []types.CTxIn {
	ins := make([]types.CTxIn, len(selected))
	for i, v := range selected {
		ins[i] = types.CTxIn{PrevOut: v.Outpoint, ScriptSig: types.TxHashScript()}
	}
	return ins
}

// createOutputs builds the receiver output (contract-to-contract script
// when to is a materialized account distinct from the sender and block
// author, otherwise the standard pay-to-pubkey-hash template) plus a
// change output — always contract-to-contract, back to the sender itself
// — for any value SelectOutputs collected beyond what the transfer
// needed.
func createOutputs(env EnvInfo, from, to common.Address, amount, sum int64, receiverInUse bool) []types.CTxOut {
	outs := make([]types.CTxOut, 0, 2)
	script := types.ContractToPubkeyhashScript(to)
	if receiverInUse && to != env.Author && to != from {
		script = types.ContractToContractScript(to)
	}
	outs = append(outs, types.CTxOut{Value: amount, ScriptPubKey: script})
	if change := sum - amount; change > 0 {
		outs = append(outs, types.CTxOut{Value: change, ScriptPubKey: types.ContractToContractScript(from)})
	}
	return outs
}
