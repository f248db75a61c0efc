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
	"fmt"
)

// ErrGasLimitReached is returned by GasPool.SubGas when the block's
// remaining gas budget cannot cover the requested amount.
var ErrGasLimitReached = errors.New("core: gas limit reached")

// GasPool tracks the block-level gas budget the executive draws from,
// one transaction at a time: a plain uint64 counter guarded by Sub/Add,
// since the executive does its own balance bookkeeping.
type GasPool uint64

// AddGas makes gas available for the block to spend, typically on refund.
func (gp *GasPool) AddGas(gas uint64) *GasPool {
	if uint64(*gp) > ^uint64(0)-gas {
		panic("core: gas pool pushed above uint64")
	}
	*(*uint64)(gp) += gas
	return gp
}

// SubGas deducts the given amount from the pool if enough gas remains.
func (gp *GasPool) SubGas(amount uint64) error {
	if uint64(*gp) < amount {
		return fmt.Errorf("%w: have %d, want %d", ErrGasLimitReached, *gp, amount)
	}
	*(*uint64)(gp) -= amount
	return nil
}

// Gas returns the amount of gas remaining in the pool.
func (gp *GasPool) Gas() uint64 {
	return uint64(*gp)
}

func (gp *GasPool) String() string {
	return fmt.Sprintf("%d", uint64(*gp))
}
