// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrBalanceOverflow is returned by CheckUint256 when a value no longer
// fits the unsigned 256-bit bound on balances.
var ErrBalanceOverflow = errors.New("core/types: value overflows uint256")

// CheckUint256 reports ErrBalanceOverflow if v does not fit in 256 bits.
// The account cache's balance arithmetic runs on *big.Int for
// convenience, but every mutation must still respect the fixed-width
// bound the trie encoding and the wire format both assume.
func CheckUint256(v *big.Int) error {
	if v.Sign() < 0 {
		return ErrBalanceOverflow
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return ErrBalanceOverflow
	}
	return nil
}
