// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package core implements the executive (component D): the single-
// transaction driver that debits the sender, invokes the VM, accounts for
// gas, and on return either commits or reverts the coordinated pair of
// tries and, for every non-zero pending transfer, synthesizes a
// Bitcoin-format transaction that materializes it on-chain.
package core

import "errors"

// ErrIntrinsicGas names the failure of a transaction whose gas limit is
// below the floor IntrinsicGas computes for it. The executive does not
// return it: it routes that case straight to the exception path.
var ErrIntrinsicGas = errors.New("core: intrinsic gas exceeds gas limit")

// ErrNonceMismatch is returned when a transaction's nonce doesn't match
// the sender's current account nonce.
var ErrNonceMismatch = errors.New("core: transaction nonce mismatch")

// ErrInvalidAccountStartNonce names a write that disagrees with the start
// nonce this engine's State was opened with. No function in this module
// returns it.
var ErrInvalidAccountStartNonce = errors.New("core: invalid account start nonce")
